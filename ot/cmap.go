package ot

import "fmt"

// This table defines mapping of character codes to a default glyph index. Different
// subtables may be defined that each contain mappings for different character encoding
// schemes. The table header indicates the character encodings for which subtables are
// present.
//
// From the spec.: “Apart from a format 14 subtable, all other subtables are exclusive:
// applications should select and use one and ignore the others. […]
// If a font includes Unicode subtables for both 16-bit encoding (typically, format 4)
// and also 32-bit encoding (formats 10 or 12), then the characters supported by the
// subtable for 32-bit encoding should be a superset of the characters supported by
// the subtable for 16-bit encoding, and the 32-bit encoding should be used by
// applications. Fonts should not include 16-bit Unicode subtables using both format 4
// and format 6; format 4 should be used. Similarly, fonts should not include 32-bit
// Unicode subtables using both format 10 and format 12; format 12 should be used.”
//
// Regardless of the encoding scheme, character codes that do not correspond to any
// glyph in the font should be mapped to glyph index 0, the “missing character”,
// commonly known as .notdef.

// CMapTable represents an OpenType cmap table, i.e. the table to receive glyphs
// from code-points.
//
// See https://docs.microsoft.com/de-de/typography/opentype/spec/cmap
//
// Consulting the cmap table is a very frequent operation on fonts. We therefore
// construct an internal representation of the most appropriate lookup sub-table
// (GlyphIndexMap). All encoding records are decoded and kept as well, for clients
// who need access to every sub-table of the font.
type CMapTable struct {
	tableBase
	NumGlyphs     int              // glyph count from maxp; glyph indices at or above it are clamped to 0
	records       []EncodingRecord // all encoding records, in font order
	GlyphIndexMap CMapGlyphIndex   // lookup structure of the preferred sub-table
	uvs           *uvsMappings     // format 14 variation sequences, if present
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{}
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

// EncodingRecords returns all encoding records of the cmap table, in font
// order. Records whose sub-table could not be decoded are not included.
func (t *CMapTable) EncodingRecords() []EncodingRecord {
	if t == nil {
		return nil
	}
	recs := make([]EncodingRecord, len(t.records))
	copy(recs, t.records)
	return recs
}

// Lookup returns the glyph index for a code-point, consulting the preferred
// sub-table. Glyph indices at or above the font's glyph count degrade to 0,
// the missing character.
func (t *CMapTable) Lookup(r rune) GlyphIndex {
	if t == nil || t.GlyphIndexMap == nil {
		return 0
	}
	gid := t.GlyphIndexMap.Lookup(r)
	if t.NumGlyphs > 0 && int(gid) >= t.NumGlyphs {
		return 0
	}
	return gid
}

// GlyphVariation resolves a (base character, variation selector) pair through
// the font's format 14 sub-table, if present. Non-default variation sequences
// map directly to a glyph; default sequences fall back to the standard lookup
// for the base character. The boolean is false if the pair is not a variation
// sequence supported by the font.
func (t *CMapTable) GlyphVariation(base, selector rune) (GlyphIndex, bool) {
	if t == nil || t.uvs == nil {
		return 0, false
	}
	switch gid, outcome := t.uvs.resolve(base, selector); outcome {
	case uvsNonDefault:
		return gid, true
	case uvsDefault:
		return t.Lookup(base), true
	}
	return 0, false
}

// EncodingRecord describes one sub-table of the cmap table: its platform
// identity and its decoded lookup structure. The Macintosh language
// adjustment (raw language − 1 when the platform is Macintosh and the raw
// language field is nonzero, None otherwise) has already been applied to
// Language.
type EncodingRecord struct {
	PlatformID uint16
	EncodingID uint16
	Language   Option[uint32]
	Format     uint16
	Subtable   CMapGlyphIndex // nil for a format 14 record
}

// CMapGlyphIndex represents a CMap table index to receive a glyph index from
// a code-point.
type CMapGlyphIndex interface {
	Lookup(rune) GlyphIndex        // central activity of CMap
	ReverseLookup(GlyphIndex) rune // this is non-standard, but helps with tests
	Mapping() map[rune]GlyphIndex  // dense-map view, for convenience and testing
}

// platformEncodingWidth returns the number of bytes per character assumed by
// the given Platform ID and Platform Specific ID.
//
// Old fonts, from when Unicode meant the Basic Multilingual Plane (BMP),
// assume that 2 bytes per character is sufficient.
//
// Recent fonts naturally support the full range of Unicode code points, which
// can take up to 4 bytes per character. Such fonts might still choose one of
// the legacy encodings if e.g. their repertoire is limited to the BMP, for
// greater compatibility with older software, or because the resultant file
// size can be smaller.
//
// Macintosh-platform records are byte-oriented legacy encodings; they get the
// smallest width and are only selected when nothing better is available.
func platformEncodingWidth(pid, psid uint16) int {
	switch pid {
	case 0: // Unicode platform
		switch psid {
		case 0, 1, 2, 3: // Unicode BMP
			return 2
		case 4, 6, 10: // Unicode full  (include 10 from FontForge bug)
			return 4
		case 5: // variation sequences, format 14 only
			return 0
		}
	case 1: // Macintosh platform, discouraged
		return 1
	case 3: // Windows platform
		switch psid {
		case 0, 1: // symbol, Unicode BMP
			return 2
		case 10: // Unicode full
			return 4
		}
	}
	return 0 // width 0 will never get selected
}

// cmapFormatRank orders sub-table formats of equal encoding width by
// preference: 12 over 10 over 8 over 13 for 32-bit encodings, 4 over 6 over
// 0 over 2 for the narrow ones.
func cmapFormatRank(format uint16) int {
	switch format {
	case 12:
		return 8
	case 10:
		return 7
	case 8:
		return 6
	case 13:
		return 5
	case 4:
		return 4
	case 6:
		return 3
	case 0:
		return 2
	case 2:
		return 1
	}
	return 0
}

type encodingScore struct {
	width int
	rank  int
}

func (sc encodingScore) betterThan(other encodingScore) bool {
	if sc.width != other.width {
		return sc.width > other.width
	}
	return sc.rank > other.rank
}

// --- CMap table parsing ----------------------------------------------------

func parseCMap(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 4 {
		return nil, ec.addError(KindTruncated, tag, "Header",
			fmt.Sprintf("cmap table too small: %d bytes (need 4)", size), SeverityCritical, offset)
	}
	n, _ := b.u16(2) // number of sub-tables
	tracer().Debugf("font cmap has %d sub-tables in %d|%d bytes", n, len(b), size)
	if n > MaxCMapSubtableCount {
		return nil, ec.addError(KindMalformedInvariant, tag, "Header",
			fmt.Sprintf("unreasonable sub-table count %d", n), SeverityCritical, offset)
	}
	t := newCMapTable(tag, b, offset, size)
	const headerSize, entrySize = 4, 8
	entriesSize, err := checkedMulUint32(entrySize, uint32(n))
	if err != nil {
		return nil, ec.addError(KindOutOfBounds, tag, "Header",
			fmt.Sprintf("entries size overflow: %v", err), SeverityCritical, offset)
	}
	requiredSize, err := checkedAddUint32(headerSize, entriesSize)
	if err != nil {
		return nil, ec.addError(KindOutOfBounds, tag, "Header",
			fmt.Sprintf("table size overflow: %v", err), SeverityCritical, offset)
	}
	if size < requiredSize {
		return nil, ec.addError(KindTruncated, tag, "Header",
			fmt.Sprintf("table size %d < required %d", size, requiredSize), SeverityCritical, offset)
	}
	// "The encoding record entries in the 'cmap' header must be sorted first
	// by platform ID, then by platform-specific encoding ID, and then by the
	// language field in the corresponding subtable."
	var best encodingScore
	var prevPid, prevPsid uint16
	for i := 0; i < int(n); i++ {
		rec, _ := b.view(headerSize+entrySize*i, entrySize)
		pid, psid := u16(rec), u16(rec[2:])
		subOffset := u32(rec[4:])
		if i > 0 && (pid < prevPid || (pid == prevPid && psid < prevPsid)) {
			ec.addWarning(tag, fmt.Sprintf("encoding records not sorted at #%d (platform=%d, encoding=%d)",
				i, pid, psid), offset)
		}
		prevPid, prevPsid = pid, psid
		if subOffset >= size {
			ec.addError(KindOutOfBounds, tag, "EncodingRecords",
				fmt.Sprintf("sub-table #%d offset %d exceeds table size %d", i, subOffset, size),
				SeverityMajor, offset)
			continue
		}
		subtable := b[subOffset:]
		format, err := subtable.u16(0)
		if err != nil {
			ec.addError(KindTruncated, tag, "EncodingRecords",
				fmt.Sprintf("sub-table #%d truncated", i), SeverityMajor, offset+subOffset)
			continue
		}
		tracer().Debugf("cmap table contains subtable with format %d", format)
		glyphIndex, language, err := makeGlyphIndex(t, subtable, format)
		if err != nil {
			var fe FontError
			if f, ok := err.(FontError); ok {
				fe = f
				fe.Offset = offset + subOffset
			} else {
				fe = FontError{Kind: KindMalformedInvariant, Issue: err.Error()}
			}
			ec.addError(fe.Kind, tag, "Subtable",
				fmt.Sprintf("sub-table #%d (platform=%d, encoding=%d, format=%d): %s",
					i, pid, psid, format, fe.Issue),
				SeverityMajor, offset+subOffset)
			continue
		}
		t.records = append(t.records, EncodingRecord{
			PlatformID: pid,
			EncodingID: psid,
			Language:   macLanguage(pid, language),
			Format:     format,
			Subtable:   glyphIndex,
		})
		if glyphIndex == nil {
			continue // format 14 does not take part in the preferred-lookup selection
		}
		score := encodingScore{width: platformEncodingWidth(pid, psid), rank: cmapFormatRank(format)}
		if score.width > 0 && score.betterThan(best) {
			best = score
			t.GlyphIndexMap = glyphIndex
		}
	}
	if t.GlyphIndexMap == nil {
		ec.addError(KindUnsupportedFormat, tag, "Format",
			"no usable cmap sub-table found", SeverityMajor, offset)
	}
	return t, nil
}

// macLanguage applies the Macintosh language adjustment, exactly once per
// encoding record: the subtable's raw language field minus one when the
// platform is Macintosh and the field is nonzero; all other records are not
// language-specific.
func macLanguage(pid uint16, raw uint32) Option[uint32] {
	if pid == 1 && raw > 0 {
		return Some(raw - 1)
	}
	return None[uint32]()
}

// subtableLanguage reads the raw language field of a cmap sub-table: a uint16
// at offset 4 for the classic formats, a uint32 at offset 8 for the 32-bit
// formats, absent for format 14.
func subtableLanguage(b binarySegm, format uint16) uint32 {
	switch format {
	case 0, 2, 4, 6:
		lang, _ := b.u16(4)
		return uint32(lang)
	case 8, 10, 12, 13:
		lang, _ := b.u32(8)
		return lang
	}
	return 0
}

// makeGlyphIndex is the dispatcher to create the correct implementation of a
// CMapGlyphIndex for a given sub-table format. Format 14 yields a nil glyph
// index and instead attaches the variation-sequence mappings to the table.
func makeGlyphIndex(t *CMapTable, b binarySegm, format uint16) (CMapGlyphIndex, uint32, error) {
	language := subtableLanguage(b, format)
	var gi CMapGlyphIndex
	var err error
	switch format {
	case 0:
		gi, err = makeGlyphIndexFormat0(b)
	case 2:
		gi, err = makeGlyphIndexFormat2(b)
	case 4:
		gi, err = makeGlyphIndexFormat4(b)
	case 6:
		gi, err = makeGlyphIndexFormat6(b)
	case 8:
		gi, err = makeGlyphIndexFormat8(b)
	case 10:
		gi, err = makeGlyphIndexFormat10(b)
	case 12:
		gi, err = makeGlyphIndexFormat12(b)
	case 13:
		gi, err = makeGlyphIndexFormat13(b)
	case 14:
		t.uvs, err = makeUVSMappings(b)
		return nil, 0, err
	default:
		return nil, 0, FontError{Kind: KindInvalidDiscriminant,
			Issue: fmt.Sprintf("unknown sub-table format %d", format)}
	}
	return gi, language, err
}

func cmapError(kind ErrorKind, format uint16, issue string) error {
	return FontError{Kind: kind, Issue: fmt.Sprintf("format %d %s", format, issue)}
}

// --- Format 0: byte encoding table -----------------------------------------

// This is the Apple standard character to glyph index mapping table: a dense
// array of 256 glyph bytes, indexed directly by single-byte character codes.
type format0GlyphIndex struct {
	glyphIds binarySegm // 256 glyph indices, one byte each
}

func makeGlyphIndexFormat0(b binarySegm) (CMapGlyphIndex, error) {
	glyphIds, err := b.view(6, 256)
	if err != nil {
		return nil, cmapError(KindTruncated, 0, "glyph array incomplete")
	}
	return format0GlyphIndex{glyphIds: glyphIds}, nil
}

func (f0 format0GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xff {
		return 0
	}
	return GlyphIndex(f0.glyphIds[r])
}

func (f0 format0GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 || gid > 0xff {
		return 0
	}
	for c := 0; c < 256; c++ {
		if GlyphIndex(f0.glyphIds[c]) == gid {
			return rune(c)
		}
	}
	return 0
}

func (f0 format0GlyphIndex) Mapping() map[rune]GlyphIndex {
	m := make(map[rune]GlyphIndex)
	for c := 0; c < 256; c++ {
		if gid := f0.glyphIds[c]; gid != 0 {
			m[rune(c)] = GlyphIndex(gid)
		}
	}
	return m
}

// --- Format 2: high-byte mapping through table ------------------------------

// This subtable is useful for the national character code standards used for
// Japanese, Chinese, and Korean characters. These code standards use a mixed
// 8-/16-bit encoding, in which certain byte values signal the first byte of a
// 2-byte character. The table begins with an array that maps the high byte to
// a SubHeader record; sub-header 0 is special, it maps single-byte codes.
type format2GlyphIndex struct {
	data binarySegm // the whole sub-table; idRangeOffset arithmetic needs absolute positions
	nsub int        // number of sub-header records
}

const (
	format2KeysStart = 6         // subHeaderKeys array position
	format2SubsStart = 6 + 256*2 // subHeader array position
	format2SubSize   = 8         // byte size of one subHeader record
)

func makeGlyphIndexFormat2(b binarySegm) (CMapGlyphIndex, error) {
	if _, err := b.view(format2KeysStart, 256*2); err != nil {
		return nil, cmapError(KindTruncated, 2, "sub-header keys incomplete")
	}
	f2 := format2GlyphIndex{data: b}
	// sub-header count is implied: the largest key references the last one
	maxKey := 0
	for i := 0; i < 256; i++ {
		key, _ := b.u16(format2KeysStart + i*2)
		if key%format2SubSize != 0 {
			return nil, cmapError(KindMalformedInvariant, 2,
				fmt.Sprintf("sub-header key %d not a multiple of 8", key))
		}
		if int(key) > maxKey {
			maxKey = int(key)
		}
	}
	f2.nsub = maxKey/format2SubSize + 1
	if _, err := b.view(format2SubsStart, f2.nsub*format2SubSize); err != nil {
		return nil, cmapError(KindTruncated, 2, "sub-header array incomplete")
	}
	return f2, nil
}

// subHeader returns the fields of sub-header k and the absolute position of
// its idRangeOffset field within the sub-table.
func (f2 format2GlyphIndex) subHeader(k int) (first, count, delta, rangeOffset uint16, fieldPos int) {
	at := format2SubsStart + k*format2SubSize
	first, _ = f2.data.u16(at)
	count, _ = f2.data.u16(at + 2)
	delta, _ = f2.data.u16(at + 4)
	rangeOffset, _ = f2.data.u16(at + 6)
	return first, count, delta, rangeOffset, at + 6
}

func (f2 format2GlyphIndex) lookupSub(k int, low uint16) GlyphIndex {
	first, count, delta, rangeOffset, fieldPos := f2.subHeader(k)
	if low < first || uint32(low) >= uint32(first)+uint32(count) {
		return 0
	}
	// "The value of the idRangeOffset is the number of bytes past the actual
	// location of the idRangeOffset word where the glyphIndexArray element
	// corresponding to firstCode appears."
	at := fieldPos + int(rangeOffset) + 2*int(low-first)
	gid, err := f2.data.u16(at)
	if err != nil || gid == 0 {
		return 0
	}
	return GlyphIndex(gid + delta) // idDelta arithmetic is modulo 65536
}

func (f2 format2GlyphIndex) key(high uint16) int {
	key, _ := f2.data.u16(format2KeysStart + int(high)*2)
	return int(key) / format2SubSize
}

func (f2 format2GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xffff {
		return 0
	}
	c := uint16(r)
	if c < 256 {
		if f2.key(c) != 0 { // byte value is the first byte of a 2-byte code
			return 0
		}
		return f2.lookupSub(0, c)
	}
	high, low := c>>8, c&0xff
	k := f2.key(high)
	if k == 0 { // high byte is not a valid lead byte
		return 0
	}
	return f2.lookupSub(k, low)
}

func (f2 format2GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	for c, g := range f2.Mapping() {
		if g == gid {
			return c
		}
	}
	return 0
}

func (f2 format2GlyphIndex) Mapping() map[rune]GlyphIndex {
	m := make(map[rune]GlyphIndex)
	for c := uint16(0); c < 256; c++ {
		if f2.key(c) == 0 {
			if gid := f2.lookupSub(0, c); gid != 0 {
				m[rune(c)] = gid
			}
		}
	}
	for high := uint16(1); high < 256; high++ {
		k := f2.key(high)
		if k == 0 {
			continue
		}
		first, count, _, _, _ := f2.subHeader(k)
		for i := uint32(0); i < uint32(count); i++ {
			low := uint32(first) + i
			if low > 0xff {
				break
			}
			if gid := f2.lookupSub(k, uint16(low)); gid != 0 {
				m[rune(uint32(high)<<8|low)] = gid
			}
		}
	}
	return m
}

// --- Format 4: segment mapping to delta values ------------------------------

// This is the standard character-to-glyph-index mapping subtable for fonts that
// support only Unicode Basic Multilingual Plane characters (U+0000 to U+FFFF).
//
// This format is used when the character codes for the characters represented by a
// font fall into several contiguous ranges, possibly with holes in some or all of
// the ranges (that is, some of the codes in a range may not have a representation
// in the font).
type format4GlyphIndex struct {
	segCnt   int
	entries  []cmapEntry16
	glyphIds binarySegm // trailing glyph ID array (unsigned words)
}

// Format 4 holds four parallel arrays to describe the segments (one segment for
// each contiguous range of codes).
// see https://docs.microsoft.com/en-us/typography/opentype/spec/cmap#format-4-segment-mapping-to-delta-values
type cmapEntry16 struct {
	end, start, delta, offset uint16
}

// The format's data is divided into three parts, which must occur in the following order:
//
// - A four-word header gives parameters for an optimized search of the segment list;
// - Four parallel arrays describe the segments (one segment for each contiguous range of codes);
// - A variable-length array of glyph IDs (unsigned words).
func makeGlyphIndexFormat4(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 14
	if headerSize > len(b) {
		return nil, cmapError(KindTruncated, 4, "header incomplete")
	}
	segCountX2, _ := b.u16(6)
	if segCountX2 == 0 || segCountX2&1 != 0 {
		tracer().Debugf("cmap format 4 segment count is %d", segCountX2)
		return nil, cmapError(KindMalformedInvariant, 4,
			fmt.Sprintf("illegal segment count %d", segCountX2))
	}
	segCount := int(segCountX2 / 2)
	// four parallel arrays of segCount words each, plus one padding word
	if _, err := b.view(headerSize, 8*segCount+2); err != nil {
		return nil, cmapError(KindTruncated, 4, "segment arrays incomplete")
	}
	entries := make([]cmapEntry16, segCount)
	endAt := headerSize
	startAt := endAt + 2*segCount + 2 // 2 is a padding entry in the cmap table
	deltaAt := startAt + 2*segCount
	offsetAt := deltaAt + 2*segCount
	for i := range entries {
		end, _ := b.u16(endAt + 2*i)
		start, _ := b.u16(startAt + 2*i)
		delta, _ := b.u16(deltaAt + 2*i)
		offset, _ := b.u16(offsetAt + 2*i)
		entries[i] = cmapEntry16{end: end, start: start, delta: delta, offset: offset}
	}
	// "The final start code and end code values must be 0xFFFF."
	if last := entries[segCount-1]; last.start != 0xffff || last.end != 0xffff {
		return nil, cmapError(KindMalformedInvariant, 4, "required terminal 0xFFFF segment missing")
	}
	// The length of the trailing glyph ID array is whatever the segments'
	// offset arithmetic can reach, not a stored count.
	glyphIdCount := 0
	for i, entry := range entries {
		if entry.offset == 0 || entry.end < entry.start {
			continue
		}
		maxIndex := int(entry.offset)/2 + int(entry.end-entry.start) - (segCount - i)
		if maxIndex+1 > glyphIdCount {
			glyphIdCount = maxIndex + 1
		}
	}
	glyphIds, err := b.view(offsetAt+2*segCount, glyphIdCount*2)
	if err != nil {
		return nil, cmapError(KindTruncated, 4, "glyph ID array incomplete")
	}
	return format4GlyphIndex{
		segCnt:   segCount,
		entries:  entries,
		glyphIds: glyphIds,
	}, nil
}

func (f4 format4GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || uint32(r) > 0xffff { // format 4 is for BMP code-points only
		return 0 // return index for 'missing character'
	}
	c := uint16(r)
	N := len(f4.entries)
	for i, j := 0, N; i < j; {
		h := i + (j-i)/2 // do a binary search on f4.entries (which may get large)
		entry := &f4.entries[h]
		if c < entry.start {
			j = h
		} else if entry.end < c {
			i = h + 1
		} else if entry.offset == 0 {
			return GlyphIndex(c + entry.delta)
		} else {
			// The spec describes the calculation to find the link into the glyph ID array
			// as follows:
			// “The character code offset from startCode is added to the idRangeOffset value.
			//  This sum is used as an offset from the current location within idRangeOffset
			//  itself to index out the correct glyphIdArray value. This obscure indexing
			//  trick works because glyphIdArray immediately follows idRangeOffset in the
			//  font file.”
			// We sliced the glyph ID array off the segment arrays, so we reverse the
			// pre-calculation and derive a clean index into the array instead:
			// first cut off the trailing part of offset which results from skipping
			// over to the start of the glyph ID array, then normalize to a word index.
			deltaToEndOfEntries := (N - h) * 2 // 2 = byte size of offset array entry
			index := (int(entry.offset) - deltaToEndOfEntries) / 2
			index += int(c - entry.start)
			gid, err := f4.glyphIds.u16(index * 2)
			if err != nil || gid == 0 {
				// 0 indicates missingGlyph; idDelta must not be applied
				return 0
			}
			return GlyphIndex(gid + entry.delta)
		}
	}
	return GlyphIndex(0)
}

// ReverseLookup retrieves a code-point for a given glyph. The Cmap tables do not
// support this operation, thus this operation is inefficient.
// However, for testing and debugging purposes it is often useful.
func (f4 format4GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	for _, entry := range f4.entries {
		if entry.end < entry.start || entry.start == 0xffff {
			break
		}
		for c := entry.start; ; c++ {
			if f4.Lookup(rune(c)) == gid {
				return rune(c)
			}
			if c == entry.end {
				break
			}
		}
	}
	return 0
}

func (f4 format4GlyphIndex) Mapping() map[rune]GlyphIndex {
	m := make(map[rune]GlyphIndex)
	for _, entry := range f4.entries {
		if entry.end < entry.start {
			continue
		}
		for c := entry.start; ; c++ {
			if c != 0xffff { // the terminal segment maps no characters
				if gid := f4.Lookup(rune(c)); gid != 0 {
					m[rune(c)] = gid
				}
			}
			if c == entry.end {
				break
			}
		}
	}
	return m
}

// --- Format 6: trimmed table mapping ----------------------------------------

// Format 6 defines a trimmed dense array for a single contiguous range of
// 16-bit character codes, [firstCode, firstCode+entryCount).
type format6GlyphIndex struct {
	firstCode uint16
	count     uint16
	glyphIds  binarySegm
}

func makeGlyphIndexFormat6(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 10
	if headerSize > len(b) {
		return nil, cmapError(KindTruncated, 6, "header incomplete")
	}
	firstCode, _ := b.u16(6)
	count, _ := b.u16(8)
	glyphIds, err := b.view(headerSize, int(count)*2)
	if err != nil {
		return nil, cmapError(KindTruncated, 6, "glyph array incomplete")
	}
	return format6GlyphIndex{firstCode: firstCode, count: count, glyphIds: glyphIds}, nil
}

func (f6 format6GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || uint32(r) > 0xffff {
		return 0
	}
	c := uint16(r)
	if c < f6.firstCode || uint32(c) >= uint32(f6.firstCode)+uint32(f6.count) {
		return 0
	}
	gid, _ := f6.glyphIds.u16(2 * int(c-f6.firstCode))
	return GlyphIndex(gid)
}

func (f6 format6GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	for i := 0; i < int(f6.count); i++ {
		if g, _ := f6.glyphIds.u16(2 * i); GlyphIndex(g) == gid {
			return rune(uint32(f6.firstCode) + uint32(i))
		}
	}
	return 0
}

func (f6 format6GlyphIndex) Mapping() map[rune]GlyphIndex {
	m := make(map[rune]GlyphIndex)
	for i := 0; i < int(f6.count); i++ {
		if g, _ := f6.glyphIds.u16(2 * i); g != 0 {
			m[rune(uint32(f6.firstCode)+uint32(i))] = GlyphIndex(g)
		}
	}
	return m
}

// --- Formats 8, 12 and 13: grouped 32-bit mappings ---------------------------

// cmapEntry32 is one map group record: a character range and the glyph ID
// mapped from the first character (for constant groups: from every character).
type cmapEntry32 struct {
	start, end, delta uint32
}

// parseMapGroups reads an array of map group records, each a triple of
// uint32s, preceded by a uint32 count at position at. Groups must be sorted
// by increasing start code and must not overlap.
func parseMapGroups(b binarySegm, at int, format uint16) ([]cmapEntry32, error) {
	numGroups, err := b.u32(at)
	if err != nil {
		return nil, cmapError(KindTruncated, format, "group count missing")
	}
	groupsSize, err2 := checkedMulInt(int(numGroups), 12)
	if err2 != nil {
		return nil, cmapError(KindOutOfBounds, format, "group array size overflow")
	}
	groups, err3 := b.view(at+4, groupsSize)
	if err3 != nil {
		return nil, cmapError(KindTruncated, format, "group array incomplete")
	}
	entries := make([]cmapEntry32, numGroups)
	for i := range entries {
		entries[i] = cmapEntry32{
			start: u32(groups[i*12:]),
			end:   u32(groups[i*12+4:]),
			delta: u32(groups[i*12+8:]),
		}
		if entries[i].end < entries[i].start {
			return nil, cmapError(KindMalformedInvariant, format,
				fmt.Sprintf("group #%d end code before start code", i))
		}
		if i > 0 && entries[i].start <= entries[i-1].end {
			return nil, cmapError(KindMalformedInvariant, format,
				fmt.Sprintf("group #%d overlaps its predecessor", i))
		}
	}
	return entries, nil
}

func lookupMapGroup(entries []cmapEntry32, c uint32) (cmapEntry32, bool) {
	for i, j := 0, len(entries); i < j; {
		h := i + (j-i)/2 // do a binary search on the groups (which may get large)
		entry := &entries[h]
		if c < entry.start {
			j = h
		} else if entry.end < c {
			i = h + 1
		} else {
			return *entry, true
		}
	}
	return cmapEntry32{}, false
}

// Format 8 is similar to format 2, in that it provides for mixed-length
// character codes, 16- and 32-bit ones. An 8192-byte bitmap flags which 16-bit
// values start a 32-bit code; the mappings themselves are sequential map
// groups like format 12. The use of this format is discouraged by the spec.
type format8GlyphIndex struct {
	is32    binarySegm // packed bitmap over all 16-bit values
	entries []cmapEntry32
}

func makeGlyphIndexFormat8(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 12
	is32, err := b.view(headerSize, 8192)
	if err != nil {
		return nil, cmapError(KindTruncated, 8, "is32 bitmap incomplete")
	}
	entries, err2 := parseMapGroups(b, headerSize+8192, 8)
	if err2 != nil {
		return nil, err2
	}
	return format8GlyphIndex{is32: is32, entries: entries}, nil
}

// Is32 reports whether the 16-bit value cp is the first half of a 32-bit
// code point in this encoding.
func (f8 format8GlyphIndex) Is32(cp uint16) bool {
	return f8.is32[cp/8]&(1<<(7-cp%8)) != 0
}

func (f8 format8GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 {
		return 0
	}
	if entry, ok := lookupMapGroup(f8.entries, uint32(r)); ok {
		if gid := uint32(r) - entry.start + entry.delta; gid < MaxGlyphCount {
			return GlyphIndex(gid)
		}
	}
	return 0
}

func (f8 format8GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	return reverseMapGroups(f8.entries, gid, false)
}

func (f8 format8GlyphIndex) Mapping() map[rune]GlyphIndex {
	return mapGroupsMapping(f8.entries, false)
}

// Format 10 is similar to format 6, in that it defines a trimmed array for a
// tight range of character codes; it differs in that it uses 32-bit codes.
type format10GlyphIndex struct {
	startCharCode uint32
	count         uint32
	glyphIds      binarySegm
}

func makeGlyphIndexFormat10(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 20
	if headerSize > len(b) {
		return nil, cmapError(KindTruncated, 10, "header incomplete")
	}
	start, _ := b.u32(12)
	count, _ := b.u32(16)
	arraySize, err := checkedMulInt(int(count), 2)
	if err != nil {
		return nil, cmapError(KindOutOfBounds, 10, "glyph array size overflow")
	}
	glyphIds, err2 := b.view(headerSize, arraySize)
	if err2 != nil {
		return nil, cmapError(KindTruncated, 10, "glyph array incomplete")
	}
	return format10GlyphIndex{startCharCode: start, count: count, glyphIds: glyphIds}, nil
}

func (f10 format10GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 {
		return 0
	}
	c := uint32(r)
	if c < f10.startCharCode || c-f10.startCharCode >= f10.count {
		return 0
	}
	gid, _ := f10.glyphIds.u16(2 * int(c-f10.startCharCode))
	return GlyphIndex(gid)
}

func (f10 format10GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	for i := 0; i < int(f10.count); i++ {
		if g, _ := f10.glyphIds.u16(2 * i); GlyphIndex(g) == gid {
			return rune(f10.startCharCode + uint32(i))
		}
	}
	return 0
}

func (f10 format10GlyphIndex) Mapping() map[rune]GlyphIndex {
	m := make(map[rune]GlyphIndex)
	for i := 0; i < int(f10.count); i++ {
		if g, _ := f10.glyphIds.u16(2 * i); g != 0 {
			m[rune(f10.startCharCode+uint32(i))] = GlyphIndex(g)
		}
	}
	return m
}

// This is the standard character-to-glyph-index mapping subtable for fonts supporting
// Unicode character repertoires that include supplementary-plane characters (U+10000 to
// U+10FFFF).
//
// Format 12 is similar to format 4 in that it defines segments for sparse representation.
// It differs, however, in that it uses 32-bit character codes, and glyph ID lookup
// and calculation is a lot simpler.
type format12GlyphIndex struct {
	entries []cmapEntry32
}

func makeGlyphIndexFormat12(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 16
	if headerSize > len(b) {
		return nil, cmapError(KindTruncated, 12, "header incomplete")
	}
	entries, err := parseMapGroups(b, 12, 12)
	if err != nil {
		return nil, err
	}
	return format12GlyphIndex{entries: entries}, nil
}

// Lookup computes the glyph index for a character covered by one of the
// groups. Glyph IDs are 32-bit in this format; a group whose arithmetic
// leaves the 16-bit glyph space maps to the missing character instead of
// wrapping around.
func (f12 format12GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 {
		return 0
	}
	if entry, ok := lookupMapGroup(f12.entries, uint32(r)); ok {
		if gid := uint32(r) - entry.start + entry.delta; gid < MaxGlyphCount {
			return GlyphIndex(gid)
		}
	}
	return 0
}

// ReverseLookup retrieves a code-point for a given glyph. The Cmap tables do not
// support this operation, thus this operation is inefficient.
// However, for testing and debugging purposes it is often useful.
func (f12 format12GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	return reverseMapGroups(f12.entries, gid, false)
}

func (f12 format12GlyphIndex) Mapping() map[rune]GlyphIndex {
	return mapGroupsMapping(f12.entries, false)
}

// Format 13 has the same structure as format 12; it differs only in the
// interpretation of the glyph ID field: every character of a group maps to
// the one same glyph. This suits “last resort” fallback fonts, with a
// distinct fallback glyph per Unicode range.
type format13GlyphIndex struct {
	entries []cmapEntry32
}

func makeGlyphIndexFormat13(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 16
	if headerSize > len(b) {
		return nil, cmapError(KindTruncated, 13, "header incomplete")
	}
	entries, err := parseMapGroups(b, 12, 13)
	if err != nil {
		return nil, err
	}
	return format13GlyphIndex{entries: entries}, nil
}

func (f13 format13GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 {
		return 0
	}
	if entry, ok := lookupMapGroup(f13.entries, uint32(r)); ok && entry.delta < MaxGlyphCount {
		return GlyphIndex(entry.delta) // constant for the whole group
	}
	return 0
}

func (f13 format13GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	return reverseMapGroups(f13.entries, gid, true)
}

func (f13 format13GlyphIndex) Mapping() map[rune]GlyphIndex {
	return mapGroupsMapping(f13.entries, true)
}

func reverseMapGroups(entries []cmapEntry32, gid GlyphIndex, constant bool) rune {
	if gid == 0 {
		return 0
	}
	for _, entry := range entries {
		if constant {
			if entry.delta == uint32(gid) {
				return rune(entry.start)
			}
			continue
		}
		cid := uint32(gid)
		if cid >= entry.delta && cid-entry.delta <= entry.end-entry.start {
			return rune(entry.start + (cid - entry.delta))
		}
	}
	return 0
}

func mapGroupsMapping(entries []cmapEntry32, constant bool) map[rune]GlyphIndex {
	m := make(map[rune]GlyphIndex)
	for _, entry := range entries {
		for c := entry.start; c <= entry.end; c++ {
			gid := entry.delta
			if !constant {
				gid = c - entry.start + entry.delta
			}
			if gid < MaxGlyphCount {
				m[rune(c)] = GlyphIndex(gid)
			}
			if c == entry.end { // guard against uint32 wrap at 0xFFFFFFFF
				break
			}
		}
	}
	return m
}

// --- Format 14: Unicode variation sequences ----------------------------------

// Subtable format 14 specifies the Unicode Variation Sequences (UVSes)
// supported by the font. A variation sequence comprises a base character
// followed by a variation selector, e.g. <U+82A6, U+E0101>.
//
// The subtable partitions the UVSes into “default” and “non-default” ones:
// for a default UVS the glyph of the base character (per the font's standard
// Unicode cmap sub-table) is the glyph to use, for a non-default UVS the
// glyph is given by the sub-table itself.
type uvsMappings struct {
	data      binarySegm // the whole sub-table; record offsets are relative to it
	selectors []variationSelector
}

type variationSelector struct {
	varSelector   uint32 // a 24-bit character code
	defaultOff    uint32 // offset to a default-UVS range table, may be 0
	nonDefaultOff uint32 // offset to a non-default-UVS mapping table, may be 0
}

type uvsOutcome int

const (
	uvsNone       uvsOutcome = iota // pair is not a supported variation sequence
	uvsDefault                      // use the standard lookup of the base character
	uvsNonDefault                   // use the glyph from the non-default mapping
)

func makeUVSMappings(b binarySegm) (*uvsMappings, error) {
	numRecords, err := b.u32(6)
	if err != nil {
		return nil, cmapError(KindTruncated, 14, "header incomplete")
	}
	recsSize, err2 := checkedMulInt(int(numRecords), 11)
	if err2 != nil {
		return nil, cmapError(KindOutOfBounds, 14, "record array size overflow")
	}
	recs, err3 := b.view(10, recsSize)
	if err3 != nil {
		return nil, cmapError(KindTruncated, 14, "record array incomplete")
	}
	uvs := &uvsMappings{data: b, selectors: make([]variationSelector, numRecords)}
	for i := range uvs.selectors {
		rec := recs[i*11:]
		uvs.selectors[i] = variationSelector{
			varSelector:   u24(rec),
			defaultOff:    u32(rec[3:]),
			nonDefaultOff: u32(rec[7:]),
		}
		if i > 0 && uvs.selectors[i].varSelector <= uvs.selectors[i-1].varSelector {
			return nil, cmapError(KindMalformedInvariant, 14, "selector records not sorted")
		}
	}
	return uvs, nil
}

func (uvs *uvsMappings) resolve(base, selector rune) (GlyphIndex, uvsOutcome) {
	if base < 0 || selector < 0 {
		return 0, uvsNone
	}
	var sel variationSelector
	found := false
	for i, j := 0, len(uvs.selectors); i < j; {
		h := i + (j-i)/2
		if s := uvs.selectors[h]; s.varSelector < uint32(selector) {
			i = h + 1
		} else if s.varSelector > uint32(selector) {
			j = h
		} else {
			sel, found = s, true
			break
		}
	}
	if !found {
		return 0, uvsNone
	}
	// non-default mappings take precedence over default ranges
	if sel.nonDefaultOff != 0 {
		if gid, ok := uvs.nonDefaultGlyph(sel.nonDefaultOff, uint32(base)); ok {
			return gid, uvsNonDefault
		}
	}
	if sel.defaultOff != 0 && uvs.isDefault(sel.defaultOff, uint32(base)) {
		return 0, uvsDefault
	}
	return 0, uvsNone
}

// nonDefaultGlyph searches the UVS mapping array at offset off for the base
// character; records are (u24 unicodeValue, u16 glyphID), sorted ascending.
func (uvs *uvsMappings) nonDefaultGlyph(off uint32, base uint32) (GlyphIndex, bool) {
	n, err := uvs.data.u32(int(off))
	if err != nil {
		return 0, false
	}
	maps, err := uvs.data.view(int(off)+4, int(n)*5)
	if err != nil {
		return 0, false
	}
	for i, j := 0, int(n); i < j; {
		h := i + (j-i)/2
		rec := maps[h*5:]
		if v := u24(rec); v < base {
			i = h + 1
		} else if v > base {
			j = h
		} else {
			return GlyphIndex(u16(rec[3:])), true
		}
	}
	return 0, false
}

// isDefault searches the range-compressed default-UVS list at offset off;
// records are (u24 startUnicodeValue, u8 additionalCount), sorted ascending.
func (uvs *uvsMappings) isDefault(off uint32, base uint32) bool {
	n, err := uvs.data.u32(int(off))
	if err != nil {
		return false
	}
	ranges, err := uvs.data.view(int(off)+4, int(n)*4)
	if err != nil {
		return false
	}
	for i, j := 0, int(n); i < j; {
		h := i + (j-i)/2
		rec := ranges[h*4:]
		start := u24(rec)
		if start+uint32(rec[3]) < base {
			i = h + 1
		} else if start > base {
			j = h
		} else {
			return true
		}
	}
	return false
}
