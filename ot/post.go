package ot

import (
	"fmt"
	"sync"
)

// PostTable represents an OpenType 'post' table, which holds the additional
// information needed to use a font on PostScript printers, including the
// PostScript names of all the glyphs.
//
// Five table versions exist. All of them share a fixed header; only
// version 2.0 carries glyph name data of its own, an index array mapping
// glyph IDs to name numbers plus a pool of length-prefixed (Pascal style)
// name strings. Name numbers below 258 denote the glyphs of the standard
// Macintosh glyph set, whose names are built into every renderer and thus
// need no storage in the font. Versions 2.5 and 4.0 are deprecated and are
// decoded as their header only.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/post
type PostTable struct {
	tableBase
	Version            uint32 // raw 16.16 fixed-point version number
	ItalicAngle        int32  // raw 16.16 value, counter-clockwise degrees from vertical
	UnderlinePosition  int16  // top of underline to baseline, font units
	UnderlineThickness int16
	IsFixedPitch       uint32 // nonzero for monospaced fonts
	MinMemType42       uint32 // memory usage hints for PostScript drivers
	MaxMemType42       uint32
	MinMemType1        uint32
	MaxMemType1        uint32
	numGlyphs          int
	nameIndex          binarySegm // version 2.0 glyphNameIndex array
	stringPool         binarySegm // version 2.0 Pascal string pool
	scanOnce           sync.Once
	nameOffsets        []int // string start offsets, built on first use
}

func newPostTable(tag Tag, b binarySegm, offset, size uint32) *PostTable {
	t := &PostTable{}
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

// Version numbers of the post table, as 16.16 fixed-point values.
const (
	postVersion10 = 0x00010000 // standard Macintosh glyph set, names implied
	postVersion20 = 0x00020000 // font supplies its own glyph names
	postVersion25 = 0x00025000 // deprecated since OpenType 1.3
	postVersion30 = 0x00030000 // no glyph name information
	postVersion40 = 0x00040000 // deprecated AAT character-code mapping
)

// NumGlyphs returns the glyph count embedded in a version 2.0 table, which
// should agree with the count in the maxp table. It is 0 for every other
// table version.
func (t *PostTable) NumGlyphs() int {
	if t == nil {
		return 0
	}
	return t.numGlyphs
}

// HasGlyphNames reports whether this table version carries glyph name
// information, either implied (version 1.0) or stored (version 2.0).
func (t *PostTable) HasGlyphNames() bool {
	if t == nil {
		return false
	}
	return t.Version == postVersion10 || t.Version == postVersion20
}

// GlyphName returns the PostScript name of a glyph.
//
// For a version 1.0 table the font is declared to contain exactly the 258
// glyphs of the standard Macintosh set, in standard order, so the name is
// simply looked up by glyph ID. For version 2.0 the glyph's name number is
// read from the index array; numbers below 258 again denote standard names,
// higher numbers select a string from the table's name pool. Versions 2.5,
// 3.0 and 4.0 provide no names.
func (t *PostTable) GlyphName(gid GlyphIndex) (string, bool) {
	if t == nil {
		return "", false
	}
	switch t.Version {
	case postVersion10:
		if int(gid) < len(stdMacGlyphNames) {
			return stdMacGlyphNames[gid], true
		}
	case postVersion20:
		inx, ok := t.GlyphNameIndex(gid)
		if !ok {
			return "", false
		}
		if int(inx) < len(stdMacGlyphNames) {
			return stdMacGlyphNames[inx], true
		}
		return t.poolName(int(inx) - len(stdMacGlyphNames))
	}
	return "", false
}

// GlyphNameIndex returns the raw name number for a glyph of a version 2.0
// table. Numbers 0 … 257 refer to the standard Macintosh glyph names,
// higher numbers to the table's own name strings.
func (t *PostTable) GlyphNameIndex(gid GlyphIndex) (uint16, bool) {
	if t == nil || t.Version != postVersion20 || int(gid) >= t.numGlyphs {
		return 0, false
	}
	inx, err := t.nameIndex.u16(2 * int(gid))
	if err != nil {
		return 0, false
	}
	return inx, true
}

// GlyphForName returns the ID of the glyph with the given PostScript name,
// using linear search. Returns false if no glyph of the font carries the
// name or the table version has no name information.
func (t *PostTable) GlyphForName(name string) (GlyphIndex, bool) {
	if t == nil {
		return 0, false
	}
	switch t.Version {
	case postVersion10:
		for gid, stdname := range stdMacGlyphNames {
			if stdname == name {
				return GlyphIndex(gid), true
			}
		}
	case postVersion20:
		for gid := 0; gid < t.numGlyphs; gid++ {
			if n, ok := t.GlyphName(GlyphIndex(gid)); ok && n == name {
				return GlyphIndex(gid), true
			}
		}
	}
	return 0, false
}

// poolName returns custom name number inx from the Pascal string pool.
// Pool strings are located by a single lazy scan over the pool, as fonts
// with version 2.0 tables may carry thousands of names which a client
// possibly never asks for. The scan is guarded for concurrent callers.
func (t *PostTable) poolName(inx int) (string, bool) {
	if inx < 0 {
		return "", false
	}
	t.scanOnce.Do(func() {
		t.nameOffsets = scanPascalStrings(t.stringPool)
	})
	if inx >= len(t.nameOffsets) {
		return "", false
	}
	at := t.nameOffsets[inx]
	l := int(t.stringPool[at])
	if at+1+l > len(t.stringPool) {
		return "", false
	}
	return string(t.stringPool[at+1 : at+1+l]), true
}

// scanPascalStrings walks a pool of length-prefixed strings and collects the
// offset of each string's length byte.
func scanPascalStrings(pool binarySegm) []int {
	offsets := make([]int, 0, 16)
	for at := 0; at < len(pool); at += 1 + int(pool[at]) {
		offsets = append(offsets, at)
	}
	return offsets
}

// --- post table parsing ----------------------------------------------------

func parsePost(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 32 {
		return nil, ec.addError(KindTruncated, tag, "Header",
			fmt.Sprintf("post header requires 32 bytes, table has %d", size),
			SeverityCritical, offset)
	}
	version, _ := b.u32(0)
	switch version {
	case postVersion10, postVersion20, postVersion25, postVersion30, postVersion40:
		// known version
	default:
		return nil, ec.addError(KindInvalidDiscriminant, tag, "Version",
			fmt.Sprintf("unknown post table version 0x%08x", version),
			SeverityCritical, offset)
	}
	t := newPostTable(tag, b, offset, size)
	t.Version = version
	angle, _ := b.u32(4)
	t.ItalicAngle = int32(angle)
	for i, field := range []*int16{&t.UnderlinePosition, &t.UnderlineThickness} {
		v, _ := b.u16(8 + 2*i)
		*field = int16(v)
	}
	for i, field := range []*uint32{
		&t.IsFixedPitch,
		&t.MinMemType42, &t.MaxMemType42,
		&t.MinMemType1, &t.MaxMemType1,
	} {
		*field, _ = b.u32(12 + 4*i)
	}
	if version != postVersion20 {
		return t, nil
	}
	if size < 34 {
		return nil, ec.addError(KindTruncated, tag, "GlyphNames",
			"post version 2.0 glyph count missing", SeverityCritical, offset)
	}
	numGlyphs, _ := b.u16(32)
	t.numGlyphs = int(numGlyphs)
	inxArray, err := b.view(34, 2*t.numGlyphs)
	if err != nil {
		return nil, ec.addError(KindTruncated, tag, "GlyphNames",
			fmt.Sprintf("glyph name index array for %d glyphs exceeds table bounds", numGlyphs),
			SeverityCritical, offset)
	}
	t.nameIndex = inxArray
	poolStart := 34 + 2*t.numGlyphs
	if poolStart < int(size) {
		t.stringPool, _ = b.view(poolStart, int(size)-poolStart)
	}
	return t, nil
}

// stdMacGlyphNames lists the names of the 258 glyphs of the standard
// Macintosh TrueType glyph set, in standard order. Version 1.0 post tables
// declare a font to contain exactly these glyphs, and version 2.0 name
// numbers below 258 index into this list.
var stdMacGlyphNames = [258]string{
	".notdef", ".null", "nonmarkingreturn", "space", "exclam",
	"quotedbl", "numbersign", "dollar", "percent", "ampersand",
	"quotesingle", "parenleft", "parenright", "asterisk", "plus",
	"comma", "hyphen", "period", "slash", "zero",
	"one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "colon",
	"semicolon", "less", "equal", "greater", "question",
	"at", "A", "B", "C", "D",
	"E", "F", "G", "H", "I",
	"J", "K", "L", "M", "N",
	"O", "P", "Q", "R", "S",
	"T", "U", "V", "W", "X",
	"Y", "Z", "bracketleft", "backslash", "bracketright",
	"asciicircum", "underscore", "grave", "a", "b",
	"c", "d", "e", "f", "g",
	"h", "i", "j", "k", "l",
	"m", "n", "o", "p", "q",
	"r", "s", "t", "u", "v",
	"w", "x", "y", "z", "braceleft",
	"bar", "braceright", "asciitilde", "Adieresis", "Aring",
	"Ccedilla", "Eacute", "Ntilde", "Odieresis", "Udieresis",
	"aacute", "agrave", "acircumflex", "adieresis", "atilde",
	"aring", "ccedilla", "eacute", "egrave", "ecircumflex",
	"edieresis", "iacute", "igrave", "icircumflex", "idieresis",
	"ntilde", "oacute", "ograve", "ocircumflex", "odieresis",
	"otilde", "uacute", "ugrave", "ucircumflex", "udieresis",
	"dagger", "degree", "cent", "sterling", "section",
	"bullet", "paragraph", "germandbls", "registered", "copyright",
	"trademark", "acute", "dieresis", "notequal", "AE",
	"Oslash", "infinity", "plusminus", "lessequal", "greaterequal",
	"yen", "mu", "partialdiff", "summation", "product",
	"pi", "integral", "ordfeminine", "ordmasculine", "Omega",
	"ae", "oslash", "questiondown", "exclamdown", "logicalnot",
	"radical", "florin", "approxequal", "Delta", "guillemotleft",
	"guillemotright", "ellipsis", "nonbreakingspace", "Agrave", "Atilde",
	"Otilde", "OE", "oe", "endash", "emdash",
	"quotedblleft", "quotedblright", "quoteleft", "quoteright", "divide",
	"lozenge", "ydieresis", "Ydieresis", "fraction", "currency",
	"guilsinglleft", "guilsinglright", "fi", "fl", "daggerdbl",
	"periodcentered", "quotesinglbase", "quotedblbase", "perthousand", "Acircumflex",
	"Ecircumflex", "Aacute", "Edieresis", "Egrave", "Iacute",
	"Icircumflex", "Idieresis", "Igrave", "Oacute", "Ocircumflex",
	"apple", "Ograve", "Uacute", "Ucircumflex", "Ugrave",
	"dotlessi", "circumflex", "tilde", "macron", "breve",
	"dotaccent", "ring", "cedilla", "hungarumlaut", "ogonek",
	"caron", "Lslash", "lslash", "Scaron", "scaron",
	"Zcaron", "zcaron", "brokenbar", "Eth", "eth",
	"Yacute", "yacute", "Thorn", "thorn", "minus",
	"multiply", "onesuperior", "twosuperior", "threesuperior", "onehalf",
	"onequarter", "threequarters", "franc", "Gbreve", "gbreve",
	"Idotaccent", "Scedilla", "scedilla", "Cacute", "cacute",
	"Ccaron", "ccaron", "dcroat",
}
