package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/npillmayer/otf/ot"
	"github.com/npillmayer/otf/otquery"
	"github.com/pterm/pterm"
)

// --- Font level -------------------------------------------------------

// infoOp prints a short report about the current font.
func infoOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	kind := otquery.FontType(intp.font)
	if kind == "" {
		kind = "unknown"
	}
	names := otquery.NameInfo(intp.font)
	metrics := otquery.FontMetrics(intp.font)
	glyphs := "?"
	if maxp, ok := otquery.MaxPInfo(intp.font); ok {
		glyphs = strconv.Itoa(int(maxp.NumGlyphs))
	}
	rows := [][]string{
		{"Field", "Value"},
		{"type", kind},
		{"family", names["family"]},
		{"subfamily", names["subfamily"]},
		{"version", names["version"]},
		{"tables", strconv.Itoa(len(intp.font.TableTags()))},
		{"glyphs", glyphs},
		{"units per em", fmt.Sprintf("%d", metrics.UnitsPerEm)},
		{"ascent", fmt.Sprintf("%d", metrics.Ascent)},
		{"descent", fmt.Sprintf("%d", metrics.Descent)},
		{"layout tables", fmt.Sprintf("%v", otquery.LayoutTables(intp.font))},
	}
	return renderTable(rows), false
}

// errorsOp reports the findings collected while parsing the current font.
func errorsOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	errs := intp.font.Errors()
	warns := intp.font.Warnings()
	if len(errs) == 0 && len(warns) == 0 {
		pterm.Info.Println("font parsed without findings")
		return nil, false
	}
	rows := [][]string{{"Severity", "Table", "Issue"}}
	for _, e := range errs {
		rows = append(rows, []string{e.Severity.String(), tagOrDash(e.Table), e.Issue})
	}
	for _, w := range warns {
		rows = append(rows, []string{"warning", tagOrDash(w.Table), w.Issue})
	}
	return renderTable(rows), false
}

// --- Table directory --------------------------------------------------

// tablesOp lists the table directory with extents and checksum status.
func tablesOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	rows := [][]string{{"Tag", "Offset", "Length", "Checksum", "Status"}}
	for _, rec := range intp.font.TableRecords() {
		status := "ok"
		if !intp.font.ChecksumValid(rec.Tag) {
			status = "MISMATCH"
		}
		rows = append(rows, []string{
			rec.Tag.String(),
			strconv.FormatUint(uint64(rec.Offset), 10),
			strconv.FormatUint(uint64(rec.Length), 10),
			fmt.Sprintf("0x%08X", rec.Checksum),
			status,
		})
	}
	return renderTable(rows), false
}

// tableOp prints directory information about a single table, e.g.
// table:head or table:OS/2 (os2 works as well).
func tableOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	arg, ok := op.hasArg()
	if !ok {
		return errors.New("missing table tag, e.g. table:head"), false
	}
	tag := tagForArg(arg)
	rec, ok := intp.font.TableRecord(tag)
	if !ok {
		return fmt.Errorf("font has no table '%s'", tag), false
	}
	status := "ok"
	if !intp.font.ChecksumValid(rec.Tag) {
		status = "MISMATCH"
	}
	view := typedName(intp.font.Table(tag))
	if view == "" {
		view = "generic bytes"
	}
	rows := [][]string{
		{"Field", "Value"},
		{"tag", rec.Tag.String()},
		{"offset", strconv.FormatUint(uint64(rec.Offset), 10)},
		{"length", strconv.FormatUint(uint64(rec.Length), 10)},
		{"checksum", fmt.Sprintf("0x%08X (%s)", rec.Checksum, status)},
		{"view", view},
	}
	return renderTable(rows), false
}

// --- Typed table dumps ------------------------------------------------

// headOp dumps table 'head'.
func headOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	info, ok := otquery.HeadInfo(intp.font)
	if !ok {
		return errors.New("font has no usable head table"), false
	}
	rows := [][]string{
		{"Field", "Value"},
		{"version", fmt.Sprintf("%d.%d", info.MajorVersion, info.MinorVersion)},
		{"fontRevision", fixed1616(int64(info.FontRevision))},
		{"checkSumAdjustment", fmt.Sprintf("0x%08X", info.CheckSumAdjustment)},
		{"magicNumber", fmt.Sprintf("0x%08X", info.MagicNumber)},
		{"flags", fmt.Sprintf("0b%016b", info.Flags)},
		{"unitsPerEm", fmt.Sprintf("%d", info.UnitsPerEm)},
		{"created", longDateTime(info.Created)},
		{"modified", longDateTime(info.Modified)},
		{"xMin", fmt.Sprintf("%d", info.XMin)},
		{"yMin", fmt.Sprintf("%d", info.YMin)},
		{"xMax", fmt.Sprintf("%d", info.XMax)},
		{"yMax", fmt.Sprintf("%d", info.YMax)},
		{"macStyle", fmt.Sprintf("0b%016b", info.MacStyle)},
		{"lowestRecPPEM", fmt.Sprintf("%d", info.LowestRecPPEM)},
		{"fontDirectionHint", fmt.Sprintf("%d", info.FontDirectionHint)},
		{"indexToLocFormat", fmt.Sprintf("%d", info.IndexToLocFormat)},
		{"glyphDataFormat", fmt.Sprintf("%d", info.GlyphDataFormat)},
	}
	return renderTable(rows), false
}

// maxpOp dumps table 'maxp', including the TrueType profile for
// version 1.0 tables.
func maxpOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	info, ok := otquery.MaxPInfo(intp.font)
	if !ok {
		return errors.New("font has no usable maxp table"), false
	}
	rows := [][]string{
		{"Field", "Value"},
		{"version", fixed1616(int64(info.VersionFixed))},
		{"numGlyphs", fmt.Sprintf("%d", info.NumGlyphs)},
	}
	if info.HasExtendedProfile {
		rows = append(rows,
			[]string{"maxPoints", fmt.Sprintf("%d", info.MaxPoints)},
			[]string{"maxContours", fmt.Sprintf("%d", info.MaxContours)},
			[]string{"maxCompositePoints", fmt.Sprintf("%d", info.MaxCompositePoints)},
			[]string{"maxCompositeContours", fmt.Sprintf("%d", info.MaxCompositeContours)},
			[]string{"maxZones", fmt.Sprintf("%d", info.MaxZones)},
			[]string{"maxTwilightPoints", fmt.Sprintf("%d", info.MaxTwilightPoints)},
			[]string{"maxStorage", fmt.Sprintf("%d", info.MaxStorage)},
			[]string{"maxFunctionDefs", fmt.Sprintf("%d", info.MaxFunctionDefs)},
			[]string{"maxInstructionDefs", fmt.Sprintf("%d", info.MaxInstructionDefs)},
			[]string{"maxStackElements", fmt.Sprintf("%d", info.MaxStackElements)},
			[]string{"maxSizeOfInstructions", fmt.Sprintf("%d", info.MaxSizeOfInstructions)},
			[]string{"maxComponentElements", fmt.Sprintf("%d", info.MaxComponentElements)},
			[]string{"maxComponentDepth", fmt.Sprintf("%d", info.MaxComponentDepth)},
		)
	}
	return renderTable(rows), false
}

// os2Op dumps table 'OS/2', respecting the version of the table.
func os2Op(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	os2 := intp.font.OS2Metrics()
	if os2 == nil {
		return errors.New("font has no OS/2 table"), false
	}
	v0 := os2.V0()
	rows := [][]string{
		{"Field", "Value"},
		{"version", fmt.Sprintf("%d", os2.Version)},
		{"xAvgCharWidth", fmt.Sprintf("%d", v0.XAvgCharWidth)},
		{"usWeightClass", fmt.Sprintf("%d", v0.USWeightClass)},
		{"usWidthClass", fmt.Sprintf("%d", v0.USWidthClass)},
		{"fsType", fmt.Sprintf("0x%04X", v0.FSType)},
		{"sFamilyClass", fmt.Sprintf("%d", v0.SFamilyClass)},
		{"panose", fmt.Sprintf("% X", v0.Panose[:])},
		{"ulUnicodeRange", fmt.Sprintf("%08X %08X %08X %08X", v0.ULUnicodeRange[0],
			v0.ULUnicodeRange[1], v0.ULUnicodeRange[2], v0.ULUnicodeRange[3])},
		{"achVendID", v0.AchVendID.String()},
		{"fsSelection", fsSelectionString(v0.FSSelection)},
		{"usFirstCharIndex", fmt.Sprintf("U+%04X", v0.USFirstCharIndex)},
		{"usLastCharIndex", fmt.Sprintf("U+%04X", v0.USLastCharIndex)},
		{"sTypoAscender", fmt.Sprintf("%d", v0.STypoAscender)},
		{"sTypoDescender", fmt.Sprintf("%d", v0.STypoDescender)},
		{"sTypoLineGap", fmt.Sprintf("%d", v0.STypoLineGap)},
		{"usWinAscent", fmt.Sprintf("%d", v0.USWinAscent)},
		{"usWinDescent", fmt.Sprintf("%d", v0.USWinDescent)},
	}
	if v1, ok := os2.V1().Unwrap(); ok {
		rows = append(rows, []string{"ulCodePageRange",
			fmt.Sprintf("%08X %08X", v1.ULCodePageRange[0], v1.ULCodePageRange[1])})
	}
	if v4, ok := os2.V4().Unwrap(); ok {
		rows = append(rows,
			[]string{"sxHeight", fmt.Sprintf("%d", v4.SxHeight)},
			[]string{"sCapHeight", fmt.Sprintf("%d", v4.SCapHeight)},
			[]string{"usDefaultChar", fmt.Sprintf("U+%04X", v4.USDefaultChar)},
			[]string{"usBreakChar", fmt.Sprintf("U+%04X", v4.USBreakChar)},
			[]string{"usMaxContext", fmt.Sprintf("%d", v4.USMaxContext)},
		)
	}
	if v5, ok := os2.V5().Unwrap(); ok {
		rows = append(rows,
			[]string{"usLowerOpticalPointSize", fmt.Sprintf("%d", v5.USLowerOpticalPointSize)},
			[]string{"usUpperOpticalPointSize", fmt.Sprintf("%d", v5.USUpperOpticalPointSize)},
		)
	}
	return renderTable(rows), false
}

// postOp dumps table 'post'. With an argument it resolves a single glyph:
// a number is read as a glyph ID to find the name for, anything else as a
// glyph name to find the glyph ID for.
func postOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	post := intp.font.PostScriptInfo()
	if post == nil {
		return errors.New("font has no post table"), false
	}
	if arg, ok := op.hasArg(); ok {
		if gid, err := strconv.Atoi(arg); err == nil {
			name, ok := post.GlyphName(ot.GlyphIndex(gid))
			if !ok {
				return fmt.Errorf("no glyph name for glyph ID %d", gid), false
			}
			pterm.Printf("glyph %d is named %q\n", gid, name)
			return nil, false
		}
		gid, ok := post.GlyphForName(arg)
		if !ok {
			return fmt.Errorf("no glyph named %q", arg), false
		}
		pterm.Printf("glyph %q has glyph ID %d\n", arg, gid)
		return nil, false
	}
	rows := [][]string{
		{"Field", "Value"},
		{"version", fixed1616(int64(post.Version))},
		{"italicAngle", fixed1616(int64(post.ItalicAngle))},
		{"underlinePosition", fmt.Sprintf("%d", post.UnderlinePosition)},
		{"underlineThickness", fmt.Sprintf("%d", post.UnderlineThickness)},
		{"isFixedPitch", strconv.FormatBool(post.IsFixedPitch != 0)},
		{"glyph names", strconv.FormatBool(post.HasGlyphNames())},
		{"numGlyphs", strconv.Itoa(post.NumGlyphs())},
	}
	return renderTable(rows), false
}

// nameOp dumps the decoded naming table. 'name:records' prints the raw
// record inventory instead.
func nameOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	names := intp.font.Names()
	if names == nil {
		return errors.New("font has no name table"), false
	}
	if op.arg == "records" {
		rows := [][]string{{"Platform", "Encoding", "Language", "NameID", "Bytes"}}
		for _, rec := range names.Records() {
			str, _ := names.StringBytes(rec)
			rows = append(rows, []string{
				strconv.Itoa(int(rec.PlatformID)),
				strconv.Itoa(int(rec.EncodingID)),
				fmt.Sprintf("0x%04X", rec.LanguageID),
				strconv.Itoa(int(rec.NameID)),
				strconv.Itoa(len(str)),
			})
		}
		return renderTable(rows), false
	}
	if !op.noArg() {
		return fmt.Errorf("unknown name sub-command %q, try name:records", op.arg), false
	}
	rows := [][]string{{"NameID", "Value"}}
	for id, value := range otquery.NamesRange(intp.font) {
		rows = append(rows, []string{strconv.Itoa(int(id)), value})
	}
	return renderTable(rows), false
}

// --- Character and glyph lookups --------------------------------------

// cmapOp lists the encoding records of table 'cmap'. With an argument it
// looks up the glyph for a code-point, e.g. cmap:A or cmap:U+0041.
func cmapOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	cmap := intp.font.CMap
	if cmap == nil {
		return errors.New("font has no cmap table"), false
	}
	if arg, ok := op.hasArg(); ok {
		r, err := parseCodepoint(arg)
		if err != nil {
			return err, false
		}
		gid := cmap.Lookup(r)
		pterm.Printf("U+%04X %q maps to glyph ID %d\n", r, r, gid)
		return nil, false
	}
	rows := [][]string{{"Platform", "Encoding", "Format", "Language"}}
	for _, rec := range cmap.EncodingRecords() {
		lang := "-"
		if l, ok := rec.Language.Unwrap(); ok {
			lang = strconv.FormatUint(uint64(l), 10)
		}
		rows = append(rows, []string{
			strconv.Itoa(int(rec.PlatformID)),
			strconv.Itoa(int(rec.EncodingID)),
			strconv.Itoa(int(rec.Format)),
			lang,
		})
	}
	return renderTable(rows), false
}

// glyphOp prints the metrics of a glyph, e.g. glyph:36. The glyph may
// also be given as a character or code-point, which is routed through
// the cmap lookup first.
func glyphOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	arg, ok := op.hasArg()
	if !ok {
		return errors.New("missing glyph, e.g. glyph:36 or glyph:A"), false
	}
	gid, err := intp.glyphForArg(arg)
	if err != nil {
		return err, false
	}
	metrics := otquery.GlyphMetrics(intp.font, gid)
	rows := [][]string{
		{"Field", "Value"},
		{"glyph ID", strconv.Itoa(int(gid))},
	}
	if post := intp.font.PostScriptInfo(); post != nil {
		if name, ok := post.GlyphName(gid); ok {
			rows = append(rows, []string{"name", name})
		}
	}
	if r := otquery.CodePointForGlyph(intp.font, gid); r != 0 {
		rows = append(rows, []string{"code-point", fmt.Sprintf("U+%04X %q", r, r)})
	}
	rows = append(rows,
		[]string{"advance", fmt.Sprintf("%d", metrics.Advance)},
		[]string{"left side bearing", fmt.Sprintf("%d", metrics.LSB)},
		[]string{"right side bearing", fmt.Sprintf("%d", metrics.RSB)},
	)
	if metrics.BBox.IsEmpty() {
		rows = append(rows, []string{"bounding box", "(empty, no outline)"})
	} else {
		rows = append(rows, []string{"bounding box", fmt.Sprintf("(%d,%d) (%d,%d)",
			metrics.BBox.MinX, metrics.BBox.MinY, metrics.BBox.MaxX, metrics.BBox.MaxY)})
	}
	return renderTable(rows), false
}

// kernOp prints the kerning distance of a glyph pair, e.g. kern:36:56 or
// kern:A:V. Only pair kerning from table 'kern' is consulted.
func kernOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	if op.arg == "" || op.format == "" {
		return errors.New("need two glyphs, e.g. kern:36:56"), false
	}
	left, err := intp.glyphForArg(op.arg)
	if err != nil {
		return err, false
	}
	right, err := intp.glyphForArg(op.format)
	if err != nil {
		return err, false
	}
	dist := otquery.Kerning(intp.font, left, right)
	pterm.Printf("kerning of pair (%d, %d) is %d font units\n", left, right, dist)
	return nil, false
}

// glyphForArg reads a glyph reference: a decimal number is a glyph ID,
// anything else is taken as a character and routed through the cmap.
func (intp *Intp) glyphForArg(arg string) (ot.GlyphIndex, error) {
	if gid, err := strconv.Atoi(arg); err == nil {
		return ot.GlyphIndex(gid), nil
	}
	r, err := parseCodepoint(arg)
	if err != nil {
		return 0, err
	}
	gid := otquery.GlyphIndex(intp.font, r)
	if gid == 0 {
		return 0, fmt.Errorf("font has no glyph for U+%04X", r)
	}
	return gid, nil
}
