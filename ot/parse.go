package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"iter"
	"math"
)

// Code comments often will cite passages from the
// OpenType specification version 1.8.4;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Version tags discriminating the flavour of a font file, plus wire-format
// constants which have to match the OpenType specification exactly.
const (
	sfntVersionTrueType  = 0x00010000 // OpenType fonts with TrueType outlines
	sfntVersionCFF       = 0x4f54544f // 'OTTO': OpenType fonts with CFF data
	sfntVersionAppleTrue = 0x74727565 // 'true': Apple spec TrueType fonts
	sfntVersionAppleTyp1 = 0x74797031 // 'typ1': Apple spec PostScript-in-sfnt
	ttcVersionTag        = 0x74746366 // 'ttcf': font collections
	dsigTableTag         = 0x44534947 // 'DSIG': digital signature record of a collection
	headMagicNumber      = 0x5f0f3cf5 // fixed magic number in every head table
)

// Maximum reasonable counts for OpenType table structures.
// These limits prevent malicious fonts from claiming unreasonably large counts
// that could lead to excessive memory allocation or out-of-bounds reads.
const (
	MaxTableCount        = 512   // Tables per font: typically < 30
	MaxGlyphCount        = 65536 // Glyph IDs are uint16; larger computed IDs have no glyph
	MaxCMapSubtableCount = 100   // cmap encoding records: typically < 10
	MaxNameRecordCount   = 10000 // name records: typically < 100
	MaxKernSubtableCount = 64    // kern sub-tables: usually exactly 1
	MaxCollectionFonts   = 512   // fonts per collection: typically < 20
)

// ---------------------------------------------------------------------------

// Checked arithmetic operations to prevent integer overflow

// checkedMulInt checks for overflow in multiplication of two integers
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 && b > 0 && a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if a < 0 && b < 0 && a < math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if (a < 0 && b > 0 && a < math.MinInt/b) || (a > 0 && b < 0 && b < math.MinInt/a) {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddInt checks for overflow in addition of two integers
func checkedAddInt(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	if b < 0 && a < math.MinInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// checkedMulUint32 checks for overflow in multiplication of two uint32 values
func checkedMulUint32(a, b uint32) (uint32, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxUint32/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddUint32 checks for overflow in addition of two uint32 values
func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// ---------------------------------------------------------------------------

// FontFileKind discriminates the container format of a font file: a single
// font, with TrueType or CFF outlines, or a collection of fonts.
type FontFileKind int

const (
	FileKindUnknown    FontFileKind = iota // no recognizable sfnt version tag
	FileKindTrueType                       // single font with TrueType outlines
	FileKindCFF                            // single font with CFF outlines
	FileKindCollection                     // font collection
)

func (kind FontFileKind) String() string {
	switch kind {
	case FileKindTrueType:
		return "TrueType"
	case FileKindCFF:
		return "CFF"
	case FileKindCollection:
		return "Collection"
	}
	return "Unknown"
}

// ParseFontFile reads the leading version tag of a font file and tells single
// fonts apart from font collections. sfnt versions 0x00010000, 'true' and
// 'typ1' signal a font with TrueType outlines, 'OTTO' a font with CFF data,
// 'ttcf' a font collection. Any other leading tag is not a parseable font
// file.
func ParseFontFile(file []byte) (FontFileKind, error) {
	version, err := binarySegm(file).u32(0)
	if err != nil {
		return FileKindUnknown, FontError{Kind: KindTruncated, Section: "Header",
			Issue: "missing sfnt version tag", Severity: SeverityCritical}
	}
	switch version {
	case sfntVersionTrueType, sfntVersionAppleTrue, sfntVersionAppleTyp1:
		return FileKindTrueType, nil
	case sfntVersionCFF:
		return FileKindCFF, nil
	case ttcVersionTag:
		return FileKindCollection, nil
	}
	return FileKindUnknown, FontError{Kind: KindUnsupportedFormat, Section: "Header",
		Issue: fmt.Sprintf("font type not supported: %x", version), Severity: SeverityCritical}
}

// Parse parses a single OpenType font from a byte slice.
// An ot.Font needs ongoing access to the font's byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
//
// Defects local to a single table do not abort parsing: the table's directory
// entry is kept, an error or warning is collected into the returned Font (see
// Font.Errors), and the walk continues with the next table. Structural defects
// of the table directory itself are fatal. For font collection files ('ttcf'),
// use ParseCollection.
func Parse(font []byte) (*Font, error) {
	kind, err := ParseFontFile(font)
	if err != nil {
		return nil, err
	}
	if kind == FileKindCollection {
		return nil, FontError{Kind: KindUnsupportedFormat, Section: "Header",
			Issue: "file is a font collection; use ParseCollection", Severity: SeverityCritical}
	}
	return parseFont(font, 0)
}

// parseFont parses the font whose offset table starts at byte offset base.
// Table record offsets count from the start of the file, for collection
// members as well.
func parseFont(font []byte, base uint32) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	src := binarySegm(font)
	ec := &errorCollector{}
	hdr, err := src.view(int(base), 12)
	if err != nil {
		return nil, ec.addError(KindTruncated, 0, "Header",
			fmt.Sprintf("offset table at %d incomplete", base), SeverityCritical, base)
	}
	h := FontHeader{}
	if err := binary.Read(bytes.NewReader(hdr), binary.BigEndian, &h); err != nil {
		return nil, ec.addError(KindTruncated, 0, "Header", err.Error(), SeverityCritical, base)
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	switch h.FontType {
	case sfntVersionTrueType, sfntVersionAppleTrue, sfntVersionAppleTyp1, sfntVersionCFF:
	case ttcVersionTag:
		return nil, ec.addError(KindUnsupportedFormat, 0, "Header",
			"nested font collection", SeverityCritical, base)
	default:
		return nil, ec.addError(KindUnsupportedFormat, 0, "Header",
			fmt.Sprintf("font type not supported: %x", h.FontType), SeverityCritical, base)
	}
	if h.TableCount > MaxTableCount {
		return nil, ec.addError(KindMalformedInvariant, 0, "TableRecords",
			fmt.Sprintf("unreasonable table count %d", h.TableCount), SeverityCritical, base)
	}
	otf := &Font{Header: &h, data: src, tables: make(map[Tag]Table)}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	tableRecordsSize, err := checkedMulInt(16, int(h.TableCount))
	if err != nil {
		return nil, ec.addError(KindOutOfBounds, 0, "TableRecords",
			fmt.Sprintf("table count too large: %v", err), SeverityCritical, base)
	}
	recordsStart, err := checkedAddInt(int(base), 12)
	if err != nil {
		return nil, ec.addError(KindOutOfBounds, 0, "TableRecords",
			fmt.Sprintf("offset table position: %v", err), SeverityCritical, base)
	}
	buf, err := src.view(recordsStart, tableRecordsSize)
	if err != nil {
		return nil, ec.addError(KindTruncated, 0, "TableRecords",
			"table record entries", SeverityCritical, uint32(recordsStart))
	}
	otf.records = make([]TableRecord, 0, h.TableCount)
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		rec := TableRecord{
			Tag:      MakeTag(b),
			Checksum: u32(b[4:8]),
			Offset:   u32(b[8:12]),
			Length:   u32(b[12:16]),
		}
		if rec.Tag < prevTag {
			return nil, ec.addError(KindMalformedInvariant, rec.Tag, "TableRecords",
				"table directory not sorted by tag", SeverityCritical, uint32(recordsStart))
		}
		prevTag = rec.Tag
		otf.records = append(otf.records, rec)
		seg, err := resolveTableSegment(src, rec, ec)
		if err != nil {
			continue // error has been collected; keep the record, skip the table
		}
		if t, err := parseTable(rec, seg, ec); err == nil && t != nil {
			otf.tables[rec.Tag] = t
		} else {
			// decode failed (error collected); keep the raw bytes accessible
			otf.tables[rec.Tag] = newTable(rec.Tag, seg, rec.Offset, rec.Length)
		}
	}
	extractTableShortcuts(otf, ec)
	validateCrossTableConsistency(otf, ec)
	connectTables(otf, ec)
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	return otf, nil
}

// resolveTableSegment returns the unpadded logical byte segment for a table
// record. The record's padded extent, offset + length + padding, has to fit
// into the buffer; the padding to the next 4-byte word boundary never exceeds
// 3 bytes. A record with length 0 resolves to an empty segment, which is
// trivially valid. Defects are collected per record, so that callers keep the
// record, skip the table, and continue the directory walk.
func resolveTableSegment(src binarySegm, rec TableRecord, ec *errorCollector) (binarySegm, error) {
	if rec.Offset&3 != 0 { // "all tables must begin on four byte boundries"
		return nil, ec.addError(KindMalformedInvariant, rec.Tag, "Offset",
			"table offset not 4-byte aligned", SeverityMajor, rec.Offset)
	}
	end, err := checkedAddUint32(rec.Offset, rec.Length)
	if err != nil {
		return nil, ec.addError(KindOutOfBounds, rec.Tag, "Bounds",
			fmt.Sprintf("extent calculation: %v", err), SeverityCritical, rec.Offset)
	}
	limit, err := checkedAddUint32(end, rec.Length%4)
	if err != nil {
		return nil, ec.addError(KindOutOfBounds, rec.Tag, "Bounds",
			fmt.Sprintf("padded extent calculation: %v", err), SeverityCritical, rec.Offset)
	}
	if int64(limit) > int64(len(src)) {
		return nil, ec.addError(KindOutOfBounds, rec.Tag, "Bounds",
			fmt.Sprintf("padded extent [%d:%d] exceeds font size %d", rec.Offset, limit, len(src)),
			SeverityCritical, rec.Offset)
	}
	return src[rec.Offset:end], nil
}

// parseTable decodes a single table from its resolved byte segment. The
// dispatch by tag is a closed switch; tables without a structural decoder are
// kept as opaque generic tables, which is not an error.
func parseTable(rec TableRecord, b binarySegm, ec *errorCollector) (Table, error) {
	t, offset, size := rec.Tag, rec.Offset, rec.Length
	switch t {
	case T("cmap"):
		return parseCMap(t, b, offset, size, ec)
	case T("head"):
		return parseHead(t, b, offset, size, ec)
	case T("hhea"):
		return parseHHea(t, b, offset, size, ec)
	case T("hmtx"):
		return parseHMtx(t, b, offset, size, ec)
	case T("kern"):
		return parseKern(t, b, offset, size, ec)
	case T("loca"):
		return parseLoca(t, b, offset, size, ec)
	case T("maxp"):
		return parseMaxP(t, b, offset, size, ec)
	case T("name"):
		return parseName(t, b, offset, size, ec)
	case T("OS/2"):
		return parseOS2(t, b, offset, size, ec)
	case T("post"):
		return parsePost(t, b, offset, size, ec)
	case T("glyf"), T("CFF "), T("CFF2"):
		// Glyph outline data is not interpreted; structural dissection gets by
		// with the metric and mapping tables.
		return newTable(t, b, offset, size), nil
	}
	if _, known := KnownTable(t); known {
		tracer().Infof("font contains table (%s), will not be interpreted", t)
	} else {
		tracer().Infof("font contains unrecognized table (%s)", t)
		ec.addWarning(t, "unrecognized table tag", offset)
	}
	return newTable(t, b, offset, size), nil
}

// Required tables, according to the OpenType spec, for a font to
// function correctly:
var RequiredTables = []string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
}

// extractTableShortcuts sets the typed shortcut fields of a font and notes
// missing required tables. A missing table is a warning, not an error:
// dissection of incomplete fonts is a supported use case.
func extractTableShortcuts(otf *Font, ec *errorCollector) {
	for _, name := range RequiredTables {
		if otf.tables[T(name)] == nil {
			ec.addWarning(T(name), "missing required table", 0)
		}
	}
	if t := otf.Table(T("cmap")); t != nil {
		otf.CMap = t.Self().AsCMap()
	}
	if t := otf.Table(T("hhea")); t != nil {
		otf.HHea = t.Self().AsHHea()
	}
	if t := otf.Table(T("hmtx")); t != nil {
		otf.HMtx = t.Self().AsHMtx()
	}
	if t := otf.Table(T("OS/2")); t != nil {
		otf.OS2 = t.Self().AsOS2()
	}
	if t := otf.Table(T("name")); t != nil {
		otf.Name = t.Self().AsName()
	}
	if t := otf.Table(T("post")); t != nil {
		otf.Post = t.Self().AsPost()
	}
}

// glyphCount returns the font's glyph count as stated by the maxp table, or 0.
func glyphCount(otf *Font) int {
	if t := otf.Table(T("maxp")); t != nil {
		if maxp := t.Self().AsMaxP(); maxp != nil {
			return maxp.NumGlyphs
		}
	}
	return 0
}

// validateCrossTableConsistency checks invariants between related tables:
// metric counts against the glyph count, table sizes against the counts that
// drive them. Violations are collected, not fatal, and the affected dependent
// table is left unconnected.
func validateCrossTableConsistency(otf *Font, ec *errorCollector) {
	numGlyphs := glyphCount(otf)
	if numGlyphs == 0 {
		return
	}

	// hhea.NumberOfHMetrics must not exceed the glyph count, and hmtx must be
	// large enough for NumberOfHMetrics long records (4 bytes each) plus
	// (numGlyphs - NumberOfHMetrics) left side bearings (2 bytes each).
	if otf.HHea != nil && otf.HMtx != nil {
		nhm := otf.HHea.NumberOfHMetrics
		if nhm > numGlyphs {
			ec.addError(KindMalformedInvariant, T("hhea"), "NumberOfHMetrics",
				fmt.Sprintf("value %d exceeds glyph count %d", nhm, numGlyphs),
				SeverityMajor, 0)
		} else {
			longMetricsSize, err1 := checkedMulInt(nhm, 4)
			lsbSize, err2 := checkedMulInt(numGlyphs-nhm, 2)
			if err1 != nil || err2 != nil {
				ec.addError(KindOutOfBounds, T("hmtx"), "Size",
					"metrics size calculation overflow", SeverityCritical, 0)
			} else if requiredSize := longMetricsSize + lsbSize; int(otf.HMtx.length) < requiredSize {
				ec.addError(KindTruncated, T("hmtx"), "Size",
					fmt.Sprintf("table size %d insufficient for %d glyphs (need %d)",
						otf.HMtx.length, numGlyphs, requiredSize),
					SeverityCritical, 0)
			}
		}
	}

	// loca must hold numGlyphs+1 entries of the width selected by
	// head.IndexToLocFormat.
	headTable := otf.Table(T("head"))
	locaTable := otf.Table(T("loca"))
	if headTable != nil && locaTable != nil {
		head := headTable.Self().AsHead()
		loca := locaTable.Self().AsLoca()
		if head == nil || loca == nil {
			return
		}
		entrySize := 0
		switch head.IndexToLocFormat {
		case 0:
			entrySize = 2
		case 1:
			entrySize = 4
		default:
			ec.addError(KindInvalidDiscriminant, T("head"), "IndexToLocFormat",
				fmt.Sprintf("invalid value %d (must be 0 or 1)", head.IndexToLocFormat),
				SeverityCritical, 0)
			return
		}
		expectedLocaSize, err := checkedMulInt(numGlyphs+1, entrySize)
		if err != nil {
			ec.addError(KindOutOfBounds, T("loca"), "Size",
				fmt.Sprintf("size calculation overflow: %v", err), SeverityCritical, 0)
			return
		}
		if int(loca.length) < expectedLocaSize {
			ec.addError(KindTruncated, T("loca"), "Size",
				fmt.Sprintf("table size %d insufficient for %d glyphs (need %d)",
					loca.length, numGlyphs, expectedLocaSize),
				SeverityCritical, 0)
		}
	}
}

// connectTables propagates counts between dependent tables: the glyph count
// and hhea.NumberOfHMetrics into hmtx, the loca entry width and count from
// head and maxp, the glyph count into cmap for index clamping. Tables whose
// consistency checks failed stay unconnected and degrade to empty lookups.
func connectTables(otf *Font, ec *errorCollector) {
	numGlyphs := glyphCount(otf)
	if otf.CMap != nil {
		otf.CMap.NumGlyphs = numGlyphs
	}
	if otf.HHea != nil && otf.HMtx != nil {
		if err := otf.HMtx.parseAll(numGlyphs, otf.HHea.NumberOfHMetrics); err != nil {
			ec.addError(KindTruncated, T("hmtx"), "Metrics", err.Error(), SeverityMajor, 0)
		}
	}
	headTable := otf.Table(T("head"))
	locaTable := otf.Table(T("loca"))
	if headTable == nil || locaTable == nil {
		return
	}
	head := headTable.Self().AsHead()
	loca := locaTable.Self().AsLoca()
	if head == nil || loca == nil {
		return
	}
	entrySize := 2
	if head.IndexToLocFormat == 1 {
		loca.inx2loc = longLocaVersion
		entrySize = 4
	} else if head.IndexToLocFormat != 0 {
		return // error collected during consistency validation
	}
	if numGlyphs > 0 && int(loca.length) >= (numGlyphs+1)*entrySize {
		loca.locCnt = numGlyphs + 1
	}
}

// --- Head table ------------------------------------------------------------

func parseHead(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 54 {
		return nil, ec.addError(KindTruncated, tag, "Size",
			fmt.Sprintf("head table too small: %d bytes (need 54)", size), SeverityCritical, offset)
	}
	major, _ := b.u16(0)
	minor, _ := b.u16(2)
	if major != 1 || minor != 0 {
		return nil, ec.addError(KindInvalidDiscriminant, tag, "Version",
			fmt.Sprintf("head version %d.%d not supported", major, minor), SeverityCritical, offset)
	}
	if magic, _ := b.u32(12); magic != headMagicNumber {
		return nil, ec.addError(KindInvalidDiscriminant, tag, "MagicNumber",
			fmt.Sprintf("wrong magic number %#x", magic), SeverityCritical, offset+12)
	}
	t := newHeadTable(tag, b, offset, size)
	t.FontRevision, _ = b.u32(4)
	t.CheckSumAdjustment, _ = b.u32(8)
	t.Flags, _ = b.u16(16)      // flags
	t.UnitsPerEm, _ = b.u16(18) // units per em
	t.Created = longDateTime(b, 20)
	t.Modified = longDateTime(b, 28)
	xmin, _ := b.u16(36)
	ymin, _ := b.u16(38)
	xmax, _ := b.u16(40)
	ymax, _ := b.u16(42)
	t.BBox = Rect{XMin: int16(xmin), YMin: int16(ymin), XMax: int16(xmax), YMax: int16(ymax)}
	t.MacStyle, _ = b.u16(44)
	t.LowestRecPPEM, _ = b.u16(46)
	hint, _ := b.u16(48)
	t.FontDirectionHint = int16(hint)
	// IndexToLocFormat is needed to interpret the loca table:
	// 0 for short offsets, 1 for long
	t.IndexToLocFormat, _ = b.u16(50)
	format, _ := b.u16(52)
	t.GlyphDataFormat = int16(format)
	return t, nil
}

// longDateTime reads a LONGDATETIME value: seconds since 1904-01-01 00:00 UTC
// as a signed 64-bit integer.
func longDateTime(b binarySegm, i int) int64 {
	hi, _ := b.u32(i)
	lo, _ := b.u32(i + 4)
	return int64(uint64(hi)<<32 | uint64(lo))
}

// --- Loca table ------------------------------------------------------------

// Dependencies (taken from Apple Developer page about TrueType):
// The size of entries in the 'loca' table must be appropriate for the value of the
// indexToLocFormat field of the 'head' table. The number of entries must be the same
// as the numGlyphs field of the 'maxp' table.
// The 'loca' table is most intimately dependent upon the contents of the 'glyf' table
// and vice versa.
func parseLoca(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	return newLocaTable(tag, b, offset, size), nil
}

// --- MaxP table ------------------------------------------------------------

// This table establishes the memory requirements for this font. Fonts with CFF data
// must use version 0.5 of this table, specifying only the numGlyphs field. Fonts
// with TrueType outlines must use version 1.0 of this table, where all data is required.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 6 {
		return nil, ec.addError(KindTruncated, tag, "Size",
			fmt.Sprintf("maxp table too small: %d bytes (need 6)", size), SeverityCritical, offset)
	}
	t := newMaxPTable(tag, b, offset, size)
	t.Version, _ = b.u32(0)
	n, _ := b.u16(4)
	t.NumGlyphs = int(n)
	switch t.Version {
	case 0x00005000: // version 0.5 carries the glyph count only
		t.Profile = None[MaxPProfile]()
	case 0x00010000: // version 1.0 adds the instruction-limit profile
		if size < 32 {
			return nil, ec.addError(KindTruncated, tag, "Profile",
				fmt.Sprintf("maxp 1.0 table too small: %d bytes (need 32)", size),
				SeverityCritical, offset)
		}
		profile := MaxPProfile{}
		for i, field := range []*uint16{
			&profile.MaxPoints, &profile.MaxContours,
			&profile.MaxCompositePoints, &profile.MaxCompositeContours,
			&profile.MaxZones, &profile.MaxTwilightPoints,
			&profile.MaxStorage, &profile.MaxFunctionDefs,
			&profile.MaxInstructionDefs, &profile.MaxStackElements,
			&profile.MaxSizeOfInstructions, &profile.MaxComponentElements,
			&profile.MaxComponentDepth,
		} {
			*field, _ = b.u16(6 + 2*i)
		}
		t.Profile = Some(profile)
	default:
		return nil, ec.addError(KindInvalidDiscriminant, tag, "Version",
			fmt.Sprintf("unknown maxp version %#08x", t.Version), SeverityCritical, offset)
	}
	return t, nil
}

// --- HHea table ------------------------------------------------------------

// The 'hhea' table contains information needed to lay out fonts whose
// characters are written horizontally.
func parseHHea(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 36 {
		return nil, ec.addError(KindTruncated, tag, "Size",
			fmt.Sprintf("hhea table too small: %d bytes (need 36)", size), SeverityCritical, offset)
	}
	major, _ := b.u16(0)
	minor, _ := b.u16(2)
	if major != 1 || minor != 0 {
		return nil, ec.addError(KindInvalidDiscriminant, tag, "Version",
			fmt.Sprintf("hhea version %d.%d not supported", major, minor), SeverityCritical, offset)
	}
	t := newHHeaTable(tag, b, offset, size)
	for i, field := range []*int16{
		&t.Ascender, &t.Descender, &t.LineGap,
	} {
		v, _ := b.u16(4 + 2*i)
		*field = int16(v)
	}
	t.AdvanceWidthMax, _ = b.u16(10)
	for i, field := range []*int16{
		&t.MinLeftSideBearing, &t.MinRightSideBearing, &t.XMaxExtent,
		&t.CaretSlopeRise, &t.CaretSlopeRun, &t.CaretOffset,
	} {
		v, _ := b.u16(12 + 2*i)
		*field = int16(v)
	}
	// 8 reserved bytes precede the trailing fields
	format, _ := b.u16(32)
	t.MetricDataFormat = int16(format)
	n, _ := b.u16(34)
	t.NumberOfHMetrics = int(n)
	return t, nil
}

// --- HMtx table ------------------------------------------------------------

// Dependencies (taken from Apple Developer page about TrueType):
// The value of the numOfLongHorMetrics field is found in the 'hhea' (Horizontal Header)
// table. Fonts that lack an 'hhea' table must not have an 'hmtx' table.
// Decoding of the metrics arrays is deferred until the glyph count and metrics
// count are known, i.e. until all tables have been walked.
func parseHMtx(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size == 0 {
		return nil, nil
	}
	t := newHMtxTable(tag, b, offset, size)
	return t, nil
}

// --- Font collections ------------------------------------------------------

// TTCHeader locates the offset tables of the fonts in a font collection file.
// Version 2.0 headers may carry a record pointing at a DSIG table; the
// signature is informational only and never verified here.
type TTCHeader struct {
	MajorVersion   uint16
	MinorVersion   uint16
	NumFonts       uint32
	OffsetsOfFonts []uint32 // offset of each font's offset table, from the beginning of the file
	DSig           Option[DSigRecord]
}

// DSigRecord points at the digital-signature table of a version 2.0 font
// collection.
type DSigRecord struct {
	Tag    Tag    // always 'DSIG'
	Length uint32 // length in bytes of the DSIG table
	Offset uint32 // offset of the DSIG table, from the beginning of the file
}

// Collection is a set of fonts parsed from a single font file. Every sub-font
// gets its own slot: one corrupt sub-font does not prevent access to its
// siblings. A single-font file is handled as a 1-element collection without a
// TTC header.
type Collection struct {
	Header *TTCHeader // nil for single-font files
	fonts  []*Font
	errs   []error
}

// ParseCollection parses a font file containing either a font collection
// ('ttcf') or a single font. Errors local to one sub-font are available via
// Collection.Font; ParseCollection itself only fails on defects of the
// collection header (or, for single-font files, of the font directory).
func ParseCollection(file []byte) (*Collection, error) {
	src := binarySegm(file)
	version, err := src.u32(0)
	if err != nil {
		return nil, FontError{Kind: KindTruncated, Section: "Header",
			Issue: "missing sfnt version tag", Severity: SeverityCritical}
	}
	if version != ttcVersionTag {
		otf, err := Parse(file)
		if err != nil {
			return nil, err
		}
		return &Collection{fonts: []*Font{otf}, errs: []error{nil}}, nil
	}
	header, err := parseTTCHeader(src)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("font collection with %d fonts", header.NumFonts)
	coll := &Collection{
		Header: header,
		fonts:  make([]*Font, len(header.OffsetsOfFonts)),
		errs:   make([]error, len(header.OffsetsOfFonts)),
	}
	for i, off := range header.OffsetsOfFonts {
		coll.fonts[i], coll.errs[i] = parseFont(file, off)
		if coll.errs[i] != nil {
			tracer().Infof("font #%d of collection unusable: %v", i, coll.errs[i])
		}
	}
	return coll, nil
}

func parseTTCHeader(b binarySegm) (*TTCHeader, error) {
	header := &TTCHeader{}
	major, err1 := b.u16(4)
	minor, err2 := b.u16(6)
	n, err3 := b.u32(8)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, FontError{Kind: KindTruncated, Section: "Header",
			Issue: "ttc header incomplete", Severity: SeverityCritical, Offset: 4}
	}
	header.MajorVersion, header.MinorVersion = major, minor
	if !(major == 1 && minor == 0) && !(major == 2 && minor == 0) {
		return nil, FontError{Kind: KindUnsupportedFormat, Section: "Header",
			Issue:    fmt.Sprintf("ttc header version %d.%d not supported", major, minor),
			Severity: SeverityCritical, Offset: 4}
	}
	if n > MaxCollectionFonts {
		return nil, FontError{Kind: KindMalformedInvariant, Section: "Header",
			Issue:    fmt.Sprintf("unreasonable font count %d", n),
			Severity: SeverityCritical, Offset: 8}
	}
	header.NumFonts = n
	offsetsSize, err := checkedMulInt(4, int(n))
	if err != nil {
		return nil, FontError{Kind: KindOutOfBounds, Section: "Header",
			Issue:    fmt.Sprintf("offsets array size: %v", err),
			Severity: SeverityCritical, Offset: 8}
	}
	offsets, err := b.view(12, offsetsSize)
	if err != nil {
		return nil, FontError{Kind: KindTruncated, Section: "Header",
			Issue: "offsets array incomplete", Severity: SeverityCritical, Offset: 12}
	}
	header.OffsetsOfFonts = make([]uint32, n)
	for i := range header.OffsetsOfFonts {
		header.OffsetsOfFonts[i] = u32(offsets[i*4:])
	}
	header.DSig = None[DSigRecord]()
	if major == 2 {
		// "If there's no signature, then the last three fields of the version 2.0
		// header are left null."
		trailer, err := b.view(12+offsetsSize, 12)
		if err != nil {
			return nil, FontError{Kind: KindTruncated, Section: "DSig",
				Issue: "signature record incomplete", Severity: SeverityCritical,
				Offset: uint32(12 + offsetsSize)}
		}
		if u32(trailer) == dsigTableTag {
			header.DSig = Some(DSigRecord{
				Tag:    Tag(dsigTableTag),
				Length: u32(trailer[4:]),
				Offset: u32(trailer[8:]),
			})
		}
	}
	return header, nil
}

// NumFonts returns the number of font slots in the collection, including
// sub-fonts that failed to parse.
func (coll *Collection) NumFonts() int {
	if coll == nil {
		return 0
	}
	return len(coll.fonts)
}

// Font returns the parsed font at slot i, or the error that makes this
// sub-font unusable.
func (coll *Collection) Font(i int) (*Font, error) {
	if coll == nil || i < 0 || i >= len(coll.fonts) {
		return nil, FontError{Kind: KindOutOfBounds, Section: "Collection",
			Issue: fmt.Sprintf("font index %d out of range", i), Severity: SeverityMajor}
	}
	return coll.fonts[i], coll.errs[i]
}

// Fonts iterates over the successfully parsed fonts of the collection as
// (slot index, font) pairs, skipping unusable slots.
func (coll *Collection) Fonts() iter.Seq2[int, *Font] {
	return func(yield func(int, *Font) bool) {
		if coll == nil {
			return
		}
		for i, otf := range coll.fonts {
			if otf == nil || coll.errs[i] != nil {
				continue
			}
			if !yield(i, otf) {
				return
			}
		}
	}
}
