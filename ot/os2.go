package ot

import "fmt"

// The OS/2 table consists of a set of metrics and other data that are
// required in OpenType fonts. Six versions of the table have been defined,
// and each version extends the previous one by trailing fields, so the
// versions form a strict linear extension chain: version 1 appends the code
// page ranges to version 0, versions 2 to 4 share one layout appending the
// x-height group to version 1, and version 5 appends the optical point size
// range. An unrecognized version number is a decode error, not a "nearest
// known version" guess.

// OS2Table represents an OpenType 'OS/2' and Windows metrics table.
//
// Fields are grouped by the table version that introduced them; accessors
// for the extension groups report whether the font's table version carries
// the group at all. Version 0 fields are present in every table.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/os2
type OS2Table struct {
	tableBase
	Version uint16
	fields  OS2V5 // storage for the highest version's field set
}

func newOS2Table(tag Tag, b binarySegm, offset, size uint32) *OS2Table {
	t := &OS2Table{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.self = t
	return t
}

// V0 returns the fields defined by version 0, present in every OS/2 table.
func (t *OS2Table) V0() OS2V0 {
	if t == nil {
		return OS2V0{}
	}
	return t.fields.OS2V0
}

// V1 returns the version 1 field set. Present for table versions 1 and up.
func (t *OS2Table) V1() Option[OS2V1] {
	if t == nil || t.Version < 1 {
		return None[OS2V1]()
	}
	return Some(t.fields.OS2V1)
}

// V4 returns the version 4 field set, which versions 2 and 3 share.
// Present for table versions 2 and up.
func (t *OS2Table) V4() Option[OS2V4] {
	if t == nil || t.Version < 2 {
		return None[OS2V4]()
	}
	return Some(t.fields.OS2V4)
}

// V5 returns the version 5 field set. Present for table version 5 only.
func (t *OS2Table) V5() Option[OS2V5] {
	if t == nil || t.Version < 5 {
		return None[OS2V5]()
	}
	return Some(t.fields)
}

// XHeight returns the sxHeight metric, defined from table version 2 on.
func (t *OS2Table) XHeight() Option[int16] {
	return Map(t.V4(), func(v4 OS2V4) int16 { return v4.SxHeight })
}

// CapHeight returns the sCapHeight metric, defined from table version 2 on.
func (t *OS2Table) CapHeight() Option[int16] {
	return Map(t.V4(), func(v4 OS2V4) int16 { return v4.SCapHeight })
}

// OS2V0 holds the fields defined by version 0 of the OS/2 table
// (TrueType revision 1.5).
type OS2V0 struct {
	XAvgCharWidth       int16  // average width of non-zero width glyphs
	USWeightClass       uint16 // visual weight, 1 … 1000
	USWidthClass        uint16 // relative aspect ratio class, 1 … 9
	FSType              uint16 // font embedding licensing rights
	YSubscriptXSize     int16
	YSubscriptYSize     int16
	YSubscriptXOffset   int16
	YSubscriptYOffset   int16
	YSuperscriptXSize   int16
	YSuperscriptYSize   int16
	YSuperscriptXOffset int16
	YSuperscriptYOffset int16
	YStrikeoutSize      int16
	YStrikeoutPosition  int16
	SFamilyClass        int16    // IBM font class and subclass
	Panose              [10]byte // PANOSE classification number
	ULUnicodeRange      UnicodeRange
	AchVendID           Tag // registered font vendor identification
	FSSelection         FontSelectionFlags
	USFirstCharIndex    uint16 // minimum BMP code point of the cmap
	USLastCharIndex     uint16 // maximum BMP code point of the cmap, capped at 0xFFFF
	STypoAscender       int16
	STypoDescender      int16
	STypoLineGap        int16
	USWinAscent         uint16
	USWinDescent        uint16
}

// OS2V1 extends version 0 by the code page character ranges
// (TrueType revision 1.66).
type OS2V1 struct {
	OS2V0
	ULCodePageRange CodePageRange
}

// OS2V4 extends version 1 by the x-height metrics group. This layout was
// introduced with version 2 (OpenType 1.1) and is shared by versions 2, 3
// and 4, which differ only in the specification of individual fields, not
// in the wire format.
type OS2V4 struct {
	OS2V1
	SxHeight      int16  // height of non-ascending lowercase letters
	SCapHeight    int16  // height of uppercase letters
	USDefaultChar uint16 // BMP code point of the default glyph, 0 for glyph ID 0
	USBreakChar   uint16 // BMP code point of the break character, usually U+0020
	USMaxContext  uint16 // maximum length of a target glyph context
}

// OS2V5 extends version 4 by the optical point size range (OpenType 1.7).
// The unit for both fields is TWIPs, twentieths of a point.
type OS2V5 struct {
	OS2V4
	USLowerOpticalPointSize uint16 // inclusive lower bound of the design size range
	USUpperOpticalPointSize uint16 // exclusive upper bound, 0xFFFF meaning infinity
}

// UnicodeRange is the 128-bit Unicode character-range bitmap of the OS/2
// table, split over four uint32 fields (ulUnicodeRange1 … 4).
type UnicodeRange [4]uint32

// Bit reports whether Unicode range bit i (0 … 127) is set. Which Unicode
// blocks a bit stands for depends on the table version; see the OpenType
// specification.
func (ur UnicodeRange) Bit(i int) bool {
	if i < 0 || i > 127 {
		return false
	}
	return ur[i/32]&(1<<(i%32)) != 0
}

// CodePageRange is the 64-bit code-page bitmap of OS/2 tables from version 1
// on (ulCodePageRange1, ulCodePageRange2).
type CodePageRange [2]uint32

// Bit reports whether code page bit i (0 … 63) is set.
func (cpr CodePageRange) Bit(i int) bool {
	if i < 0 || i > 63 {
		return false
	}
	return cpr[i/32]&(1<<(i%32)) != 0
}

// FontSelectionFlags is the fsSelection bit field. Bits 10 to 15 are
// reserved. Unassigned bits are preserved as read from the font.
type FontSelectionFlags uint16

const (
	FSSelectionItalic         FontSelectionFlags = 1 << 0 // font contains italic or oblique glyphs
	FSSelectionUnderscore     FontSelectionFlags = 1 << 1 // glyphs are underscored
	FSSelectionNegative       FontSelectionFlags = 1 << 2 // foreground and background reversed
	FSSelectionOutlined       FontSelectionFlags = 1 << 3 // outline (hollow) glyphs
	FSSelectionStrikeout      FontSelectionFlags = 1 << 4 // glyphs are overstruck
	FSSelectionBold           FontSelectionFlags = 1 << 5 // glyphs are emboldened
	FSSelectionRegular        FontSelectionFlags = 1 << 6 // standard weight/style of the font
	FSSelectionUseTypoMetrics FontSelectionFlags = 1 << 7 // sTypo* metrics are the recommended line spacing
	FSSelectionWWS            FontSelectionFlags = 1 << 8 // name table consistent with a WWS family
	FSSelectionOblique        FontSelectionFlags = 1 << 9 // font contains oblique glyphs
)

// Has reports whether all bits of sel are set.
func (flags FontSelectionFlags) Has(sel FontSelectionFlags) bool {
	return flags&sel == sel
}

// --- OS/2 table parsing ----------------------------------------------------

// Byte size of each version's complete field set.
var os2VersionSize = map[uint16]uint32{
	0: 78,
	1: 86,
	2: 96,
	3: 96,
	4: 96,
	5: 100,
}

func parseOS2(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 2 {
		return nil, ec.addError(KindTruncated, tag, "Version",
			"OS/2 version number missing", SeverityCritical, offset)
	}
	version, _ := b.u16(0)
	required, ok := os2VersionSize[version]
	if !ok {
		return nil, ec.addError(KindInvalidDiscriminant, tag, "Version",
			fmt.Sprintf("unknown OS/2 version %d", version), SeverityCritical, offset)
	}
	if size < required {
		return nil, ec.addError(KindTruncated, tag, "Size",
			fmt.Sprintf("OS/2 version %d table too small: %d bytes (need %d)", version, size, required),
			SeverityCritical, offset)
	}
	t := newOS2Table(tag, b, offset, size)
	t.Version = version
	parseOS2V0(b, &t.fields.OS2V0)
	if version >= 1 {
		r1, _ := b.u32(78)
		r2, _ := b.u32(82)
		t.fields.ULCodePageRange = CodePageRange{r1, r2}
	}
	if version >= 2 {
		for i, field := range []*int16{&t.fields.SxHeight, &t.fields.SCapHeight} {
			v, _ := b.u16(86 + 2*i)
			*field = int16(v)
		}
		t.fields.USDefaultChar, _ = b.u16(90)
		t.fields.USBreakChar, _ = b.u16(92)
		t.fields.USMaxContext, _ = b.u16(94)
	}
	if version >= 5 {
		t.fields.USLowerOpticalPointSize, _ = b.u16(96)
		t.fields.USUpperOpticalPointSize, _ = b.u16(98)
	}
	return t, nil
}

func parseOS2V0(b binarySegm, v0 *OS2V0) {
	w, _ := b.u16(2)
	v0.XAvgCharWidth = int16(w)
	v0.USWeightClass, _ = b.u16(4)
	v0.USWidthClass, _ = b.u16(6)
	v0.FSType, _ = b.u16(8)
	for i, field := range []*int16{
		&v0.YSubscriptXSize, &v0.YSubscriptYSize,
		&v0.YSubscriptXOffset, &v0.YSubscriptYOffset,
		&v0.YSuperscriptXSize, &v0.YSuperscriptYSize,
		&v0.YSuperscriptXOffset, &v0.YSuperscriptYOffset,
		&v0.YStrikeoutSize, &v0.YStrikeoutPosition,
		&v0.SFamilyClass,
	} {
		v, _ := b.u16(10 + 2*i)
		*field = int16(v)
	}
	copy(v0.Panose[:], b[32:42])
	for i := range v0.ULUnicodeRange {
		v0.ULUnicodeRange[i], _ = b.u32(42 + 4*i)
	}
	v0.AchVendID = MakeTag(b[58:62])
	sel, _ := b.u16(62)
	v0.FSSelection = FontSelectionFlags(sel)
	v0.USFirstCharIndex, _ = b.u16(64)
	v0.USLastCharIndex, _ = b.u16(66)
	for i, field := range []*int16{
		&v0.STypoAscender, &v0.STypoDescender, &v0.STypoLineGap,
	} {
		v, _ := b.u16(68 + 2*i)
		*field = int16(v)
	}
	v0.USWinAscent, _ = b.u16(74)
	v0.USWinDescent, _ = b.u16(76)
}
