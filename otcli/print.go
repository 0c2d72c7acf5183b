package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/npillmayer/otf/ot"
	"github.com/pterm/pterm"
)

// renderTable renders rows as a two-dimensional table, the first row
// being the header.
func renderTable(rows [][]string) error {
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

// tagForArg turns a command argument into a table tag. 'OS/2' may be
// abbreviated as os2.
func tagForArg(arg string) ot.Tag {
	if strings.EqualFold(arg, "os2") {
		return ot.T("OS/2")
	}
	return ot.T(arg)
}

func tagOrDash(tag ot.Tag) string {
	if tag == 0 {
		return "-"
	}
	return tag.String()
}

// typedName returns the name of the typed view of a table, if the parser
// attached one.
func typedName(t ot.Table) string {
	if t == nil {
		return ""
	}
	self := t.Self()
	switch {
	case self.AsCMap() != nil:
		return "CMapTable"
	case self.AsHead() != nil:
		return "HeadTable"
	case self.AsHHea() != nil:
		return "HHeaTable"
	case self.AsHMtx() != nil:
		return "HMtxTable"
	case self.AsKern() != nil:
		return "KernTable"
	case self.AsLoca() != nil:
		return "LocaTable"
	case self.AsMaxP() != nil:
		return "MaxPTable"
	case self.AsName() != nil:
		return "NameTable"
	case self.AsOS2() != nil:
		return "OS2Table"
	case self.AsPost() != nil:
		return "PostTable"
	}
	return ""
}

// fixed1616 formats a 16.16 fixed-point number, as used for version
// numbers and the italic angle.
func fixed1616(fixed int64) string {
	return strconv.FormatFloat(float64(fixed)/65536.0, 'g', -1, 64)
}

// Dates in table 'head' count seconds since 1904-01-01.
const secondsFrom1904To1970 = 2082844800

func longDateTime(seconds int64) string {
	t := time.Unix(seconds-secondsFrom1904To1970, 0).UTC()
	return t.Format("2006-01-02 15:04:05")
}

// fsSelectionString spells out the style flags of OS/2 fsSelection.
func fsSelectionString(flags ot.FontSelectionFlags) string {
	var names []string
	for _, f := range []struct {
		bit  ot.FontSelectionFlags
		name string
	}{
		{ot.FSSelectionItalic, "italic"},
		{ot.FSSelectionUnderscore, "underscore"},
		{ot.FSSelectionNegative, "negative"},
		{ot.FSSelectionOutlined, "outlined"},
		{ot.FSSelectionStrikeout, "strikeout"},
		{ot.FSSelectionBold, "bold"},
		{ot.FSSelectionRegular, "regular"},
		{ot.FSSelectionUseTypoMetrics, "use-typo-metrics"},
		{ot.FSSelectionWWS, "wws"},
		{ot.FSSelectionOblique, "oblique"},
	} {
		if flags.Has(f.bit) {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, " ")
}

// parseCodepoint reads a code-point argument: a literal character, a
// U+XXXX or 0xXXXX hex notation, or a decimal number. A single digit is
// read as the literal character, use U+XXXX for code-points below 10.
func parseCodepoint(arg string) (rune, error) {
	if utf8.RuneCountInString(arg) == 1 {
		r, _ := utf8.DecodeRuneInString(arg)
		return r, nil
	}
	s, base := arg, 10
	if strings.HasPrefix(s, "U+") || strings.HasPrefix(s, "u+") ||
		strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("cannot read code-point %q", arg)
	}
	return rune(n), nil
}
