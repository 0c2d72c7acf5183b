package otquery

import (
	"github.com/npillmayer/otf/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font metrics ----------------------------------------------------------

// FontMetrics retrieves selected global metrics of a font.
//
// Ascender, descender, line gap and maximum advance come from table 'hhea'.
// Fonts which leave the hhea values at zero get the typographic values of
// table 'OS/2' instead.
func FontMetrics(f *ot.Font) FontMetricsInfo {
	metrics := FontMetricsInfo{}
	if f == nil {
		return metrics
	}
	if hhea := f.HorizontalHeader(); hhea != nil {
		metrics.Ascent = sfnt.Units(hhea.Ascender)
		metrics.Descent = sfnt.Units(hhea.Descender)
		metrics.LineGap = sfnt.Units(hhea.LineGap)
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceWidthMax)
	}
	if metrics.Ascent == 0 && metrics.Descent == 0 {
		if os2 := f.OS2Metrics(); os2 != nil {
			v0 := os2.V0()
			tracer().Debugf("empty hhea metrics, using OS/2 typographic values")
			metrics.Ascent = sfnt.Units(v0.STypoAscender)
			metrics.Descent = sfnt.Units(v0.STypoDescender)
			if metrics.LineGap == 0 {
				metrics.LineGap = sfnt.Units(v0.STypoLineGap)
			}
		}
	}
	if table := f.Table(ot.T("head")); table != nil {
		if head := table.Self().AsHead(); head != nil {
			metrics.UnitsPerEm = sfnt.Units(head.UnitsPerEm)
		}
	}
	return metrics
}

// --- Glyph routines --------------------------------------------------------

// GlyphIndex returns the glyph index for a given code-point.
// If the code-point cannot be found, 0 is returned.
//
// From the OpenType specification: character codes that do not correspond to
// any glyph in the font should be mapped to glyph index 0. The glyph at this
// location must be a special glyph representing a missing character,
// commonly known as '.notdef'.
func GlyphIndex(f *ot.Font, codepoint rune) ot.GlyphIndex {
	if f == nil || f.CMap == nil {
		return 0
	}
	return f.CMap.Lookup(codepoint)
}

// CodePointForGlyph returns the code-point for a given glyph index.
//
// This is an inefficient operation: all code-points contained in the font's
// cmap are checked sequentially whether they produce the given glyph.
// If the glyph index does not correspond to a code-point, 0 is returned.
func CodePointForGlyph(f *ot.Font, gid ot.GlyphIndex) rune {
	if f == nil || f.CMap == nil || f.CMap.GlyphIndexMap == nil || gid == 0 {
		return 0
	}
	return f.CMap.GlyphIndexMap.ReverseLookup(gid)
}

// GlyphMetrics retrieves the metrics for a given glyph: advance width and
// left side bearing from table 'hmtx', the bounding box from the glyph's
// 'glyf' entry, and the right side bearing derived from those.
func GlyphMetrics(f *ot.Font, gid ot.GlyphIndex) GlyphMetricsInfo {
	metrics := GlyphMetricsInfo{}
	if f == nil {
		return metrics
	}
	if hmtx := f.HorizontalMetrics(); hmtx != nil {
		if aw, lsb, ok := hmtx.HMetrics(gid); ok {
			metrics.Advance = sfnt.Units(aw)
			metrics.LSB = sfnt.Units(lsb)
		}
	}
	metrics.BBox = glyphBoundingBox(f, gid)
	// rsb = aw - (lsb + xMax - xMin)
	// Glyphs without contours have no bounding box; their LSB should be zero
	// and their RSB stays zero.
	if !metrics.BBox.IsEmpty() {
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}

// glyphBoundingBox reads the bounding box fields from a glyph's header in
// table 'glyf'. Glyphs without an outline occupy a zero-length 'glyf' range
// and report an empty box, as do CFF fonts, which have no 'glyf' table.
func glyphBoundingBox(f *ot.Font, gid ot.GlyphIndex) BoundingBox {
	glyf := f.Table(ot.T("glyf"))
	locaTable := f.Table(ot.T("loca"))
	if glyf == nil || locaTable == nil {
		return BoundingBox{}
	}
	loca := locaTable.Self().AsLoca()
	if loca == nil || int(gid)+1 >= loca.EntryCount() {
		return BoundingBox{}
	}
	start := loca.IndexToLocation(gid)
	end := loca.IndexToLocation(gid + 1)
	if end <= start {
		return BoundingBox{} // glyph has no outline
	}
	b := glyf.Binary()
	if int64(start)+10 > int64(len(b)) {
		return BoundingBox{}
	}
	g := b[start:]
	return BoundingBox{
		MinX: sfnt.Units(i16(g[2:])),
		MinY: sfnt.Units(i16(g[4:])),
		MaxX: sfnt.Units(i16(g[6:])),
		MaxY: sfnt.Units(i16(g[8:])),
	}
}

// Kerning returns the summed horizontal kerning adjustment for a pair of
// glyphs, taken from table 'kern'. Fonts without a 'kern' table, and pairs
// no sub-table contains, report a zero adjustment.
//
// Modern fonts often carry their kerning data in the GPOS table instead,
// which is outside the scope of this package.
func Kerning(f *ot.Font, left, right ot.GlyphIndex) sfnt.Units {
	if f == nil {
		return 0
	}
	table := f.Table(ot.T("kern"))
	if table == nil {
		return 0
	}
	kern := table.Self().AsKern()
	if kern == nil {
		return 0
	}
	if dist, ok := kern.Kerning(left, right); ok {
		return sfnt.Units(dist)
	}
	return 0
}
