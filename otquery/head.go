package otquery

import "github.com/npillmayer/otf/ot"

// HeadTableInfo is a raw snapshot of OpenType table 'head': every field of
// the table, decoded directly from the table bytes. Unlike the typed view
// of package ot it includes the version fields and the magic number, which
// makes it suitable for inspection tools.
type HeadTableInfo struct {
	MajorVersion       uint16
	MinorVersion       uint16
	FontRevision       uint32
	CheckSumAdjustment uint32
	MagicNumber        uint32
	Flags              uint16
	UnitsPerEm         uint16
	Created            int64
	Modified           int64
	XMin               int16
	YMin               int16
	XMax               int16
	YMax               int16
	MacStyle           uint16
	LowestRecPPEM      uint16
	FontDirectionHint  int16
	IndexToLocFormat   int16
	GlyphDataFormat    int16
}

const headTableSize = 54

// HeadInfo decodes table 'head' of a font. Returns (info, true) on success,
// or (zero, false) if the table is missing or too short.
func HeadInfo(f *ot.Font) (HeadTableInfo, bool) {
	var info HeadTableInfo
	if f == nil {
		return info, false
	}
	table := f.Table(ot.T("head"))
	if table == nil {
		return info, false
	}
	b := table.Binary()
	if len(b) < headTableSize {
		return info, false
	}
	info.MajorVersion = u16(b)
	info.MinorVersion = u16(b[2:])
	info.FontRevision = u32(b[4:])
	info.CheckSumAdjustment = u32(b[8:])
	info.MagicNumber = u32(b[12:])
	info.Flags = u16(b[16:])
	info.UnitsPerEm = u16(b[18:])
	info.Created = int64(u64(b[20:]))
	info.Modified = int64(u64(b[28:]))
	info.XMin = i16(b[36:])
	info.YMin = i16(b[38:])
	info.XMax = i16(b[40:])
	info.YMax = i16(b[42:])
	info.MacStyle = u16(b[44:])
	info.LowestRecPPEM = u16(b[46:])
	info.FontDirectionHint = i16(b[48:])
	info.IndexToLocFormat = i16(b[50:])
	info.GlyphDataFormat = i16(b[52:])
	return info, true
}
