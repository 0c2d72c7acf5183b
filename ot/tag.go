package ot

// --- Tag -------------------------------------------------------------------

// Tag is defined by the OpenType spec as:
// Array of four uint8s (length = 32 bits) used to identify a table,
// design-variation axis, script, language system, feature, or baseline.
// Tags are compared numerically, which equals byte-wise comparison for the
// big-endian packing used here. A tag is not required to be valid text.
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
//
//	MakeTag([]byte("cmap"))
//
// If b is shorter or longer, it will be silently extended or cut as appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// --- TableTag --------------------------------------------------------------

// TableTag enumerates the registered sfnt tables this package knows about.
// It is a closed set: tags outside of it are perfectly legal in a font file
// (the directory stays walkable), they just have no TableTag value.
// Use KnownTable to get from a Tag to a TableTag, and TableTag.Tag for the
// reverse direction.
type TableTag int

const (
	TableAvar TableTag = iota // 'avar' axis variations
	TableBASE                 // 'BASE' baseline data
	TableCBDT                 // 'CBDT' color bitmap data
	TableCBLC                 // 'CBLC' color bitmap location
	TableCFF                  // 'CFF ' compact font format 1.0
	TableCFF2                 // 'CFF2' compact font format 2.0
	TableCmap                 // 'cmap' character to glyph mapping
	TableCOLR                 // 'COLR' color glyph layers
	TableCPAL                 // 'CPAL' color palettes
	TableCvar                 // 'cvar' CVT variations
	TableCvt                  // 'cvt ' control value table
	TableDSIG                 // 'DSIG' digital signature
	TableEBDT                 // 'EBDT' embedded bitmap data
	TableEBLC                 // 'EBLC' embedded bitmap location
	TableEBSC                 // 'EBSC' embedded bitmap scaling
	TableFpgm                 // 'fpgm' font program
	TableFvar                 // 'fvar' font variations
	TableGasp                 // 'gasp' grid-fitting/scan-conversion
	TableGDEF                 // 'GDEF' glyph definition data
	TableGlyf                 // 'glyf' glyph outline data
	TableGPOS                 // 'GPOS' glyph positioning data
	TableGSUB                 // 'GSUB' glyph substitution data
	TableGvar                 // 'gvar' glyph variations
	TableHdmx                 // 'hdmx' horizontal device metrics
	TableHead                 // 'head' font header
	TableHhea                 // 'hhea' horizontal header
	TableHmtx                 // 'hmtx' horizontal metrics
	TableHVAR                 // 'HVAR' horizontal metrics variations
	TableJSTF                 // 'JSTF' justification data
	TableKern                 // 'kern' kerning pairs
	TableLoca                 // 'loca' index to location
	TableLTSH                 // 'LTSH' linear threshold
	TableMATH                 // 'MATH' math layout data
	TableMaxp                 // 'maxp' maximum profile
	TableMERG                 // 'MERG' merge
	TableMeta                 // 'meta' metadata
	TableMVAR                 // 'MVAR' metrics variations
	TableName                 // 'name' naming table
	TableOS2                  // 'OS/2' OS/2 and Windows metrics
	TablePCLT                 // 'PCLT' PCL 5 data
	TablePost                 // 'post' PostScript information
	TablePrep                 // 'prep' CVT program
	TableSbix                 // 'sbix' standard bitmap graphics
	TableSTAT                 // 'STAT' style attributes
	TableSVG                  // 'SVG ' scalable vector graphics
	TableVDMX                 // 'VDMX' vertical device metrics
	TableVhea                 // 'vhea' vertical header
	TableVmtx                 // 'vmtx' vertical metrics
	TableVORG                 // 'VORG' vertical origin
	TableVVAR                 // 'VVAR' vertical metrics variations
)

// tableTags is the single static bidirectional registry: indexed by TableTag
// in one direction, inverted into tableTagLookup for the other. Both
// directions derive from this one list.
var tableTags = [...]Tag{
	TableAvar: T("avar"),
	TableBASE: T("BASE"),
	TableCBDT: T("CBDT"),
	TableCBLC: T("CBLC"),
	TableCFF:  T("CFF "),
	TableCFF2: T("CFF2"),
	TableCmap: T("cmap"),
	TableCOLR: T("COLR"),
	TableCPAL: T("CPAL"),
	TableCvar: T("cvar"),
	TableCvt:  T("cvt "),
	TableDSIG: T("DSIG"),
	TableEBDT: T("EBDT"),
	TableEBLC: T("EBLC"),
	TableEBSC: T("EBSC"),
	TableFpgm: T("fpgm"),
	TableFvar: T("fvar"),
	TableGasp: T("gasp"),
	TableGDEF: T("GDEF"),
	TableGlyf: T("glyf"),
	TableGPOS: T("GPOS"),
	TableGSUB: T("GSUB"),
	TableGvar: T("gvar"),
	TableHdmx: T("hdmx"),
	TableHead: T("head"),
	TableHhea: T("hhea"),
	TableHmtx: T("hmtx"),
	TableHVAR: T("HVAR"),
	TableJSTF: T("JSTF"),
	TableKern: T("kern"),
	TableLoca: T("loca"),
	TableLTSH: T("LTSH"),
	TableMATH: T("MATH"),
	TableMaxp: T("maxp"),
	TableMERG: T("MERG"),
	TableMeta: T("meta"),
	TableMVAR: T("MVAR"),
	TableName: T("name"),
	TableOS2:  T("OS/2"),
	TablePCLT: T("PCLT"),
	TablePost: T("post"),
	TablePrep: T("prep"),
	TableSbix: T("sbix"),
	TableSTAT: T("STAT"),
	TableSVG:  T("SVG "),
	TableVDMX: T("VDMX"),
	TableVhea: T("vhea"),
	TableVmtx: T("vmtx"),
	TableVORG: T("VORG"),
	TableVVAR: T("VVAR"),
}

var tableTagLookup = func() map[Tag]TableTag {
	m := make(map[Tag]TableTag, len(tableTags))
	for tt, tag := range tableTags {
		m[tag] = TableTag(tt)
	}
	return m
}()

// KnownTable maps a raw tag onto the closed TableTag enumeration.
// Unrecognized tags yield false; this is an expected outcome, not an error.
func KnownTable(tag Tag) (TableTag, bool) {
	tt, ok := tableTagLookup[tag]
	return tt, ok
}

// Tag returns the 4-byte tag value for a known table.
func (tt TableTag) Tag() Tag {
	if tt < 0 || int(tt) >= len(tableTags) {
		return 0
	}
	return tableTags[tt]
}

func (tt TableTag) String() string {
	return tt.Tag().String()
}
