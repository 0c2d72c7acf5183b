package otquery

import "github.com/npillmayer/otf/ot"

// FontType names the container flavour of a parsed font: "TrueType" for
// fonts with TrueType outlines (sfnt versions 1.0, 'true' and 'typ1'),
// "CFF" for fonts with PostScript outlines ('OTTO'). The empty string is
// returned for fonts without a recognizable header.
func FontType(f *ot.Font) string {
	if f == nil || f.Header == nil {
		return ""
	}
	switch ot.Tag(f.Header.FontType) {
	case 0x00010000, ot.T("true"), ot.T("typ1"):
		return "TrueType"
	case ot.T("OTTO"):
		return "CFF"
	}
	return ""
}

// LayoutTables lists the advanced layout tables a font carries, in font
// order. OpenType layout data lives in tables 'BASE', 'GDEF', 'GPOS',
// 'GSUB', 'JSTF' and 'MATH'; which subset is present tells how much layout
// intelligence a font offers.
func LayoutTables(f *ot.Font) []string {
	if f == nil {
		return nil
	}
	var layouts []string
	for _, tag := range f.TableTags() {
		switch tag {
		case ot.T("BASE"), ot.T("GDEF"), ot.T("GPOS"), ot.T("GSUB"), ot.T("JSTF"), ot.T("MATH"):
			layouts = append(layouts, tag.String())
		}
	}
	return layouts
}
