package ot

import (
	"fmt"
	"sort"
)

// KernTable gives access to an OpenType 'kern' table, which contains adjustments
// to horizontal positioning between glyph pairs. Modern fonts carry kerning in
// the GPOS table instead, but plenty of fonts in the wild still rely on 'kern'.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/kern
type KernTable struct {
	tableBase
	apple   bool // table uses the Apple TTF header variant
	headers []kernSubTableHeader
}

func newKernTable(tag Tag, b binarySegm, offset, size uint32) *KernTable {
	t := &KernTable{}
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

type kernSubTableHeader struct {
	directory [4]uint16 // information to support binary search on sub-table
	offset    uint16    // start position of this sub-table's kern pairs
	length    uint32    // size of the sub-table in bytes, without header
	coverage  uint16    // info about type of information contained in this sub-table
}

// SubTableCount returns the number of format 0 kerning sub-tables.
// Sub-tables of other formats are dropped during parsing.
func (t *KernTable) SubTableCount() int {
	if t == nil {
		return 0
	}
	return len(t.headers)
}

// Coverage returns the raw coverage field of kerning sub-table i. Bit
// interpretation differs between the Apple and the Microsoft header variant.
func (t *KernTable) Coverage(i int) uint16 {
	if t == nil || i < 0 || i >= len(t.headers) {
		return 0
	}
	return t.headers[i].coverage
}

// PairCount returns the number of kerning pairs in sub-table i.
func (t *KernTable) PairCount(i int) int {
	if t == nil || i < 0 || i >= len(t.headers) {
		return 0
	}
	return int(t.headers[i].directory[0])
}

// horizontal decides from a sub-table's coverage field whether it contains
// plain horizontal kerning data. With the Microsoft variant, bit 0 signals
// horizontal data and bit 2 cross-stream adjustment; with the Apple variant,
// bits 15/14/13 signal vertical, cross-stream, and variation kerning.
func (t *KernTable) horizontal(h kernSubTableHeader) bool {
	if t.apple {
		return h.coverage&0xe000 == 0
	}
	return h.coverage&0x0001 != 0 && h.coverage&0x0004 == 0
}

// Kerning returns the summed horizontal kerning adjustment for a pair of
// glyphs, in font units. The second return value is false if no sub-table
// contains the pair.
//
// Kern pairs within a format 0 sub-table are sorted by the combined
// (left, right) glyph key, so each sub-table is searched binarily.
func (t *KernTable) Kerning(left, right GlyphIndex) (int16, bool) {
	if t == nil {
		return 0, false
	}
	var sum int16
	found := false
	key := uint32(left)<<16 | uint32(right)
	for _, h := range t.headers {
		if !t.horizontal(h) {
			continue
		}
		if v, ok := t.searchPairs(h, key); ok {
			sum += v
			found = true
		}
	}
	return sum, found
}

// searchPairs performs the binary search for a glyph pair key in one
// sub-table's pair list.
func (t *KernTable) searchPairs(h kernSubTableHeader, key uint32) (int16, bool) {
	npairs := int(h.directory[0])
	pairs, err := t.data.view(int(h.offset), npairs*6)
	if err != nil {
		return 0, false
	}
	inx := sort.Search(npairs, func(i int) bool {
		return pairKey(pairs, i) >= key
	})
	if inx == npairs || pairKey(pairs, inx) != key {
		return 0, false
	}
	v, _ := pairs.u16(inx*6 + 4)
	return int16(v), true
}

func pairKey(pairs binarySegm, i int) uint32 {
	return u32(pairs[i*6:])
}

// TrueType and OpenType slightly differ on formats of kern tables:
// see https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6kern.html
// and https://docs.microsoft.com/en-us/typography/opentype/spec/kern

// parseKern parses the kern table. There is significant confusion with this table
// concerning format differences between OpenType, TrueType, and fonts in the wild.
// We currently only support kern table format 0, which should be supported on any
// platform. In the real world, fonts usually have just one kern sub-table, and
// older Windows versions cannot handle more than one.
func parseKern(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size <= 4 {
		return nil, nil
	}
	var N, suboffset, subheaderlen int
	apple := false
	if version := u32(b); version == 0x00010000 {
		tracer().Debugf("font has Apple TTF kern table format")
		n, _ := b.u32(4) // number of kerning tables is uint32
		N, suboffset, subheaderlen = int(n), 8, 16
		apple = true
	} else {
		tracer().Debugf("font has OTF (MS) kern table format")
		n, _ := b.u16(2) // number of kerning tables is uint16
		N, suboffset, subheaderlen = int(n), 4, 14
	}
	tracer().Debugf("kern table has %d sub-tables", N)
	if N > MaxKernSubtableCount {
		return nil, ec.addError(KindMalformedInvariant, tag, "Header",
			fmt.Sprintf("kern table claims %d sub-tables (max %d)", N, MaxKernSubtableCount),
			SeverityCritical, offset)
	}
	t := newKernTable(tag, b, offset, size)
	t.apple = apple
	for i := 0; i < N; i++ { // read in N sub-tables
		if suboffset+subheaderlen >= int(size) { // check for sub-table header size
			return nil, ec.addError(KindTruncated, tag, "SubTable",
				fmt.Sprintf("sub-table %d header exceeds table size", i),
				SeverityCritical, offset+uint32(suboffset))
		}
		h := kernSubTableHeader{
			offset: uint16(suboffset + subheaderlen),
			// sub-tables are of varying size; size may be off, see below
			length:   uint32(u16(b[suboffset+2:]) - uint16(subheaderlen)),
			coverage: u16(b[suboffset+4:]),
		}
		// The sub-table format sits in the high byte of coverage for the MS
		// variant, in the low byte for the Apple variant.
		format := h.coverage >> 8
		if apple {
			format = h.coverage & 0x00ff
		}
		if format != 0 {
			tracer().Infof("kern sub-table format %d not supported, ignoring sub-table", format)
			suboffset += subheaderlen + int(h.length)
			continue // we only support format 0 kerning tables; skip this one
		}
		h.directory = [4]uint16{
			u16(b[suboffset+subheaderlen-8:]),
			u16(b[suboffset+subheaderlen-6:]),
			u16(b[suboffset+subheaderlen-4:]),
			u16(b[suboffset+subheaderlen-2:]),
		}
		kerncnt := uint32(h.directory[0])
		tracer().Debugf("kern sub-table has %d entries", kerncnt)
		// For some fonts, size calculation of kern sub-tables is off; see
		// https://github.com/fonttools/fonttools/issues/314#issuecomment-118116527
		// Testable with the Calibri font.
		sz, err := checkedMulUint32(kerncnt, 6) // kern pair is of size 6
		if err != nil {
			return nil, ec.addError(KindOutOfBounds, tag, "SubTable",
				fmt.Sprintf("sub-table %d size overflow: %v", i, err),
				SeverityCritical, offset+uint32(suboffset))
		}
		if sz != h.length {
			tracer().Infof("kern sub-table size should be 0x%x, but given as 0x%x",
				sz, h.length)
			ec.addWarning(tag, fmt.Sprintf("kern sub-table %d size mismatch: expected 0x%x, got 0x%x",
				i, sz, h.length), offset+uint32(suboffset))
		}
		if uint32(suboffset+subheaderlen)+sz > size {
			return nil, ec.addError(KindOutOfBounds, tag, "SubTable",
				fmt.Sprintf("sub-table %d exceeds table bounds", i),
				SeverityCritical, offset+uint32(suboffset))
		}
		t.headers = append(t.headers, h)
		suboffset += int(subheaderlen + int(h.length))
	}
	tracer().Debugf("table kern has %d sub-table(s)", len(t.headers))
	return t, nil
}
