package ot

import "fmt"

// Font represents the internal structure of an OpenType font.
// It is used to navigate the tables of a font and hand their decoded fields
// to inspection and typesetting tasks.
//
// A Font borrows the byte buffer it was parsed from and never copies table
// payloads out of it. Clients must keep the buffer alive and unmodified
// while the Font or any view derived from it is in use. All methods are
// read-only; after parsing, a Font may be shared between goroutines without
// synchronization.
type Font struct {
	Header        *FontHeader
	data          binarySegm    // the complete font file; table records index into it
	records       []TableRecord // table directory in font order, ascending by tag
	tables        map[Tag]Table
	CMap          *CMapTable    // typed access to cmap
	HHea          *HHeaTable    // typed access to hhea
	HMtx          *HMtxTable    // typed access to hmtx
	OS2           *OS2Table     // typed access to OS/2
	Name          *NameTable    // typed access to name
	Post          *PostTable    // typed access to post
	parseErrors   []FontError   // errors accumulated during parsing
	parseWarnings []FontWarning // warnings accumulated during parsing
}

// FontHeader is the directory header of the top-level tables in a font
// (the "offset table" in OpenType terms). If the font file contains only one
// font, the table directory will begin at byte 0 of the file. If the font
// file is a font collection, the beginning point of the table directory for
// each font is indicated in the TTCHeader.
//
// OpenType fonts that contain TrueType outlines should use the value of
// 0x00010000 for the FontType. OpenType fonts containing CFF data (version 1
// or 2) should use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
// The Apple specification for TrueType fonts additionally allows 'true' and
// 'typ1'.
type FontHeader struct {
	FontType      uint32
	TableCount    uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
}

// TableRecord is one entry of the table directory, locating one named
// table's bytes within the font file. Offset counts from the start of the
// file (also for collection members); Length is the unpadded byte length.
// Records are constructed once during directory parsing, sorted ascending by
// tag, and never mutated.
type TableRecord struct {
	Tag      Tag
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
//
// Please note that the current implementation will not interpret every kind
// of font table, either because there is no need to do so (with regard to
// font dissection) or because implementation is not yet finished. However,
// `Table` will return at least a generic table type for each table contained
// in the font, i.e. no table information will be dropped.
//
// For example to receive the `OS/2` and the `loca` table, clients may call
//
//	os2  := otf.Table(ot.T("OS/2")).Self().AsOS2()
//	loca := otf.Table(ot.T("loca")).Self().AsLoca()
//
// Table tag names are case-sensitive, following the names in the OpenType
// specification, i.e., one of:
//
// avar BASE CBDT CBLC CFF CFF2 cmap COLR CPAL cvar cvt DSIG EBDT EBLC EBSC
// fpgm fvar gasp GDEF glyf GPOS GSUB gvar hdmx head hhea hmtx HVAR JSTF kern
// loca LTSH MATH maxp MERG meta MVAR name OS/2 PCLT post prep sbix STAT SVG
// VDMX vhea vmtx VORG VVAR
func (otf *Font) Table(tag Tag) Table {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// TableTags returns a list of tags, one for each table contained in the
// font, in font order (i.e., ascending by tag).
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.records))
	for _, rec := range otf.records {
		tags = append(tags, rec.Tag)
	}
	return tags
}

// TableRecords returns a copy of the font's table directory, in font order.
func (otf *Font) TableRecords() []TableRecord {
	recs := make([]TableRecord, len(otf.records))
	copy(recs, otf.records)
	return recs
}

// TableRecord returns the directory entry for a given tag, using binary
// search over the sorted record array. Absence of a table is an expected
// outcome, reported by the boolean, not an error.
func (otf *Font) TableRecord(tag Tag) (TableRecord, bool) {
	for i, j := 0, len(otf.records); i < j; {
		h := i + (j-i)/2
		rec := &otf.records[h]
		if rec.Tag < tag {
			i = h + 1
		} else if rec.Tag > tag {
			j = h
		} else {
			return *rec, true
		}
	}
	return TableRecord{}, false
}

// HorizontalHeader returns the parsed hhea table, if present.
func (otf *Font) HorizontalHeader() *HHeaTable {
	if otf == nil {
		return nil
	}
	return otf.HHea
}

// HorizontalMetrics returns the parsed hmtx table, if present.
func (otf *Font) HorizontalMetrics() *HMtxTable {
	if otf == nil {
		return nil
	}
	return otf.HMtx
}

// OS2Metrics returns the parsed OS/2 table, if present.
func (otf *Font) OS2Metrics() *OS2Table {
	if otf == nil {
		return nil
	}
	return otf.OS2
}

// Names returns the parsed name table, if present.
func (otf *Font) Names() *NameTable {
	if otf == nil {
		return nil
	}
	return otf.Name
}

// PostScriptInfo returns the parsed post table, if present.
func (otf *Font) PostScriptInfo() *PostTable {
	if otf == nil {
		return nil
	}
	return otf.Post
}

// Errors returns all errors encountered during font parsing.
// These errors represent issues that were found but did not prevent parsing
// from completing. Clients can inspect these errors to determine if the font
// is suitable for their use case.
func (otf *Font) Errors() []FontError {
	if otf.parseErrors == nil {
		return []FontError{}
	}
	return otf.parseErrors
}

// Warnings returns all warnings encountered during font parsing.
// Warnings indicate potential issues that are generally safe to ignore.
func (otf *Font) Warnings() []FontWarning {
	if otf.parseWarnings == nil {
		return []FontWarning{}
	}
	return otf.parseWarnings
}

// CriticalErrors returns all errors with critical severity.
// Critical errors indicate severe problems that may make the font unreliable.
func (otf *Font) CriticalErrors() []FontError {
	critical := make([]FontError, 0)
	for _, err := range otf.parseErrors {
		if err.Severity == SeverityCritical {
			critical = append(critical, err)
		}
	}
	return critical
}

// HasCriticalErrors returns true if any critical errors were encountered
// during parsing. Fonts with critical errors may be unreliable or unusable.
func (otf *Font) HasCriticalErrors() bool {
	for _, err := range otf.parseErrors {
		if err.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// Rect is a bounding box in font units, with the y-axis pointing up.
type Rect struct {
	XMin, YMin, XMax, YMax int16
}

// Dx returns the horizontal extent of the box.
func (r Rect) Dx() int {
	return int(r.XMax) - int(r.XMin)
}

// Dy returns the vertical extent of the box.
func (r Rect) Dy() int {
	return int(r.YMax) - int(r.YMin)
}

// IsEmpty reports whether the box encloses no area.
func (r Rect) IsEmpty() bool {
	return r.XMax <= r.XMin || r.YMax <= r.YMin
}

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables.
//
// Required tables, according to the OpenType specification:
// 'cmap' (Character to glyph mapping), 'head' (Font header), 'hhea'
// (Horizontal header), 'hmtx' (Horizontal metrics), 'maxp' (Maximum
// profile), 'name' (Naming table), 'OS/2' (OS/2 and Windows specific
// metrics), 'post' (PostScript information).
//
// Tables with structural decoders in this package: the required set plus
// 'loca' (Index to location) and 'kern' (Kerning pairs). All other tables
// are exposed as opaque byte ranges.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treated as read-only by clients
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	},
	}
	t.self = t
	return t
}

// genericTable is a table that the package does not interpret, kept as an
// opaque byte range.
type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   any
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return TableSelf{}
	}
	return tself.tableBase.self
}

// AsCMap returns this table as a cmap table, or nil.
func (tself TableSelf) AsCMap() *CMapTable {
	if k, ok := safeSelf(tself).(*CMapTable); ok {
		return k
	}
	return nil
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable {
	if k, ok := safeSelf(tself).(*HeadTable); ok {
		return k
	}
	return nil
}

// AsHHea returns this table as a hhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable {
	if k, ok := safeSelf(tself).(*HHeaTable); ok {
		return k
	}
	return nil
}

// AsHMtx returns this table as a hmtx table, or nil.
func (tself TableSelf) AsHMtx() *HMtxTable {
	if k, ok := safeSelf(tself).(*HMtxTable); ok {
		return k
	}
	return nil
}

// AsKern returns this table as a kern table, or nil.
func (tself TableSelf) AsKern() *KernTable {
	if k, ok := safeSelf(tself).(*KernTable); ok {
		return k
	}
	return nil
}

// AsLoca returns this table as a loca table, or nil.
func (tself TableSelf) AsLoca() *LocaTable {
	if k, ok := safeSelf(tself).(*LocaTable); ok {
		return k
	}
	return nil
}

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable {
	if k, ok := safeSelf(tself).(*MaxPTable); ok {
		return k
	}
	return nil
}

// AsName returns this table as a name table, or nil.
func (tself TableSelf) AsName() *NameTable {
	if k, ok := safeSelf(tself).(*NameTable); ok {
		return k
	}
	return nil
}

// AsOS2 returns this table as an OS/2 table, or nil.
func (tself TableSelf) AsOS2() *OS2Table {
	if k, ok := safeSelf(tself).(*OS2Table); ok {
		return k
	}
	return nil
}

// AsPost returns this table as a post table, or nil.
func (tself TableSelf) AsPost() *PostTable {
	if k, ok := safeSelf(tself).(*PostTable); ok {
		return k
	}
	return nil
}

// --- Concrete table implementations ----------------------------------------

// HeadTable gives global information about the font. All fields of table
// 'head' are decoded. FontRevision is the raw Fixed (16.16) value as set by
// the font manufacturer; Created and Modified are seconds since 1904-01-01
// (LONGDATETIME).
type HeadTable struct {
	tableBase
	FontRevision       uint32 // raw 16.16 fixed-point revision number
	CheckSumAdjustment uint32 // derived from the whole-file checksum; see ChecksumValid
	Flags              uint16 // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm         uint16 // values 16 … 16384 are valid
	Created            int64  // seconds since 1904-01-01 00:00:00 UTC
	Modified           int64  // seconds since 1904-01-01 00:00:00 UTC
	BBox               Rect   // maximum extent over all glyphs
	MacStyle           uint16 // bold/italic/… style bits
	LowestRecPPEM      uint16 // smallest readable size in pixels
	FontDirectionHint  int16  // deprecated, set to 2 in modern fonts
	IndexToLocFormat   uint16 // needed to interpret the loca table: 0 short, 1 long
	GlyphDataFormat    int16  // 0 for current glyph data format
}

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) *HeadTable {
	t := &HeadTable{}
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

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
// By definition, index zero points to the “missing character”, which is the
// character that appears if a character is not found in the font. The missing
// character is commonly represented by a blank box or a space.
type LocaTable struct {
	tableBase
	inx2loc func(t *LocaTable, gid GlyphIndex) uint32 // returns glyph location for glyph gid
	locCnt  int                                       // number of locations
}

// IndexToLocation offsets, indexed by glyph IDs, which provide the location
// of each glyph data block within the 'glyf' table.
func (t *LocaTable) IndexToLocation(gid GlyphIndex) uint32 {
	return t.inx2loc(t, gid)
}

// EntryCount returns the number of location entries, which is the font's
// glyph count plus one (the extra entry closes the last glyph's extent).
func (t *LocaTable) EntryCount() int {
	return t.locCnt
}

func newLocaTable(tag Tag, b binarySegm, offset, size uint32) *LocaTable {
	t := &LocaTable{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.inx2loc = shortLocaVersion // may get changed by font consistency check
	t.locCnt = 0                 // has to be set during consistency check
	t.self = t
	return t
}

func shortLocaVersion(t *LocaTable, gid GlyphIndex) uint32 {
	// in case of error link to 'missing character' at location 0
	if gid >= GlyphIndex(t.locCnt) {
		return 0
	}
	loc, err := t.data.u16(int(gid) * 2)
	if err != nil {
		return 0
	}
	return uint32(loc) * 2
}

func longLocaVersion(t *LocaTable, gid GlyphIndex) uint32 {
	// in case of error link to 'missing character' at location 0
	if gid >= GlyphIndex(t.locCnt) {
		return 0
	}
	loc, err := t.data.u32(int(gid) * 4)
	if err != nil {
		return 0
	}
	return loc
}

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
// Version 0x00005000 (used for CFF outlines) carries the glyph count only;
// version 0x00010000 (TrueType outlines) additionally carries the
// instruction-limit profile.
type MaxPTable struct {
	tableBase
	Version   uint32
	NumGlyphs int
	Profile   Option[MaxPProfile] // only present for version 0x00010000
}

// MaxPProfile holds the TrueType instruction and composite limits of a
// version 1.0 maxp table.
type MaxPProfile struct {
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) *MaxPTable {
	t := &MaxPTable{}
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

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	MetricDataFormat    int16 // 0 for current format
	NumberOfHMetrics    int
}

func newHHeaTable(tag Tag, b binarySegm, offset, size uint32) *HHeaTable {
	t := &HHeaTable{}
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

// HMtxTable contains metric information for the horizontal layout each of the
// glyphs in the font. Each element in the contained hMetrics-array has two
// parts: the advance width and left side bearing. The value NumberOfHMetrics
// is taken from the `hhea` table. In a monospaced font, only one entry is
// required but that entry may not be omitted.
// Optionally, an array of left side bearings follows. The corresponding
// glyphs are assumed to have the same advance width as that found in the last
// entry in the hMetrics array. Since there must be a left side bearing and an
// advance width associated with each glyph in the font, the number of entries
// in this array is derived from the total number of glyphs in the font minus
// the value `HHea.NumberOfHMetrics`, which is copied into the HMtxTable for
// easier access.
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
	numGlyphs        int
	longMetrics      []HMetricRecord
	leftSideBearings []int16
}

// HMetricRecord is one long horizontal metric record from table hmtx.
type HMetricRecord struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

func newHMtxTable(tag Tag, b binarySegm, offset, size uint32) *HMtxTable {
	t := &HMtxTable{}
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

func (t *HMtxTable) parseAll(numGlyphs, numberOfHMetrics int) error {
	if t == nil {
		return nil
	}
	if numGlyphs < 0 {
		return fmt.Errorf("invalid glyph count %d", numGlyphs)
	}
	if numberOfHMetrics < 0 || numberOfHMetrics > numGlyphs {
		return fmt.Errorf("invalid numberOfHMetrics %d (numGlyphs=%d)", numberOfHMetrics, numGlyphs)
	}
	required := numberOfHMetrics*4 + (numGlyphs-numberOfHMetrics)*2
	if required > len(t.data) {
		return fmt.Errorf("hmtx table too small: need %d bytes, have %d", required, len(t.data))
	}
	longMetrics := make([]HMetricRecord, numberOfHMetrics)
	for i := 0; i < numberOfHMetrics; i++ {
		aw, err := t.data.u16(i * 4)
		if err != nil {
			return fmt.Errorf("cannot parse hmtx long metric %d: %w", i, err)
		}
		lsb, err := t.data.u16(i*4 + 2)
		if err != nil {
			return fmt.Errorf("cannot parse hmtx long metric lsb %d: %w", i, err)
		}
		longMetrics[i] = HMetricRecord{
			AdvanceWidth:    aw,
			LeftSideBearing: int16(lsb),
		}
	}
	lsbCount := numGlyphs - numberOfHMetrics
	leftSideBearings := make([]int16, lsbCount)
	base := numberOfHMetrics * 4
	for i := 0; i < lsbCount; i++ {
		lsb, err := t.data.u16(base + i*2)
		if err != nil {
			return fmt.Errorf("cannot parse hmtx lsb %d: %w", i, err)
		}
		leftSideBearings[i] = int16(lsb)
	}
	t.NumberOfHMetrics = numberOfHMetrics
	t.numGlyphs = numGlyphs
	t.longMetrics = longMetrics
	t.leftSideBearings = leftSideBearings
	return nil
}

// LongMetrics returns a copy of all long horizontal metrics records.
func (t *HMtxTable) LongMetrics() []HMetricRecord {
	if t == nil || len(t.longMetrics) == 0 {
		return nil
	}
	metrics := make([]HMetricRecord, len(t.longMetrics))
	copy(metrics, t.longMetrics)
	return metrics
}

// LeftSideBearings returns a copy of trailing LSB records.
func (t *HMtxTable) LeftSideBearings() []int16 {
	if t == nil || len(t.leftSideBearings) == 0 {
		return nil
	}
	lsbs := make([]int16, len(t.leftSideBearings))
	copy(lsbs, t.leftSideBearings)
	return lsbs
}

// GlyphCount returns the glyph count used when decoding this hmtx table.
func (t *HMtxTable) GlyphCount() int {
	if t == nil {
		return 0
	}
	return t.numGlyphs
}

// HMetrics returns the advance width and left side bearing for a glyph.
func (t *HMtxTable) HMetrics(g GlyphIndex) (uint16, int16, bool) {
	if t == nil || t.numGlyphs == 0 || int(g) < 0 || int(g) >= t.numGlyphs {
		return 0, 0, false
	}
	if int(g) < len(t.longMetrics) {
		m := t.longMetrics[int(g)]
		return m.AdvanceWidth, m.LeftSideBearing, true
	}
	if len(t.longMetrics) == 0 {
		return 0, 0, false
	}
	i := int(g) - len(t.longMetrics)
	if i < 0 || i >= len(t.leftSideBearings) {
		return 0, 0, false
	}
	return t.longMetrics[len(t.longMetrics)-1].AdvanceWidth, t.leftSideBearings[i], true
}
