package ot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// os2SampleV3 returns a complete version 3 OS/2 table (96 bytes). The field
// values are those of a Noto-style sans serif.
func os2SampleV3() []byte {
	return []byte{
		0x00, 0x03, // version
		0x04, 0x86, // xAvgCharWidth
		0x01, 0x90, // usWeightClass
		0x00, 0x05, // usWidthClass
		0x00, 0x00, // fsType
		0x05, 0x9A, 0x05, 0x33, 0x00, 0x00, 0x01, 0x1F, // subscript size/offset
		0x05, 0x9A, 0x05, 0x33, 0x00, 0x00, 0x03, 0xD1, // superscript size/offset
		0x00, 0x66, 0x02, 0x00, // strikeout size/position
		0x00, 0x00, // sFamilyClass
		0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // panose
		0xE0, 0x00, 0x02, 0xFF, // ulUnicodeRange1
		0x50, 0x00, 0x20, 0x5B, // ulUnicodeRange2
		0x00, 0x00, 0x00, 0x20, // ulUnicodeRange3
		0x00, 0x00, 0x00, 0x00, // ulUnicodeRange4
		0x47, 0x4F, 0x4F, 0x47, // achVendID "GOOG"
		0x00, 0x40, // fsSelection
		0x00, 0x00, // usFirstCharIndex
		0xFF, 0xFD, // usLastCharIndex
		0x06, 0x00, // sTypoAscender
		0xFE, 0x00, // sTypoDescender
		0x00, 0x66, // sTypoLineGap
		0x07, 0x9A, // usWinAscent
		0x02, 0x00, // usWinDescent
		0x20, 0x00, 0x01, 0x9F, // ulCodePageRange1
		0x00, 0x00, 0x00, 0x00, // ulCodePageRange2
		0x04, 0x3A, // sxHeight
		0x05, 0xB0, // sCapHeight
		0x00, 0x20, // usDefaultChar
		0x00, 0x20, // usBreakChar
		0x00, 0x03, // usMaxContext
	}
}

func parseOS2Table(t *testing.T, b []byte) (*OS2Table, error) {
	t.Helper()
	ec := &errorCollector{}
	table, err := parseOS2(T("OS/2"), b, 0, uint32(len(b)), ec)
	if err != nil {
		return nil, err
	}
	return table.Self().AsOS2(), nil
}

func TestOS2Version3(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	os2, err := parseOS2Table(t, os2SampleV3())
	if err != nil {
		t.Fatalf("cannot decode OS/2 sample: %v", err)
	}
	if os2.Version != 3 {
		t.Errorf("expected OS/2 version 3, got %d", os2.Version)
	}
	want := OS2V4{
		OS2V1: OS2V1{
			OS2V0: OS2V0{
				XAvgCharWidth:       1158,
				USWeightClass:       400,
				USWidthClass:        5,
				YSubscriptXSize:     1434,
				YSubscriptYSize:     1331,
				YSubscriptYOffset:   287,
				YSuperscriptXSize:   1434,
				YSuperscriptYSize:   1331,
				YSuperscriptYOffset: 977,
				YStrikeoutSize:      102,
				YStrikeoutPosition:  512,
				Panose:              [10]byte{2},
				ULUnicodeRange:      UnicodeRange{0xe00002ff, 0x5000205b, 0x20, 0},
				AchVendID:           T("GOOG"),
				FSSelection:         FSSelectionRegular,
				USLastCharIndex:     0xfffd,
				STypoAscender:       1536,
				STypoDescender:      -512,
				STypoLineGap:        102,
				USWinAscent:         1946,
				USWinDescent:        512,
			},
			ULCodePageRange: CodePageRange{0x2000019f, 0},
		},
		SxHeight:      1082,
		SCapHeight:    1456,
		USDefaultChar: 32,
		USBreakChar:   32,
		USMaxContext:  3,
	}
	v4, ok := os2.V4().Unwrap()
	if !ok {
		t.Fatal("version 3 table must carry the version 4 field group")
	}
	if diff := cmp.Diff(want, v4); diff != "" {
		t.Errorf("decoded fields differ (-want +got):\n%s", diff)
	}
	if os2.V5().IsSome() {
		t.Errorf("version 3 table must not carry optical point sizes")
	}
	if h := os2.XHeight().Or(0); h != 1082 {
		t.Errorf("expected x-height 1082, got %d", h)
	}
	if h := os2.CapHeight().Or(0); h != 1456 {
		t.Errorf("expected cap height 1456, got %d", h)
	}
}

func TestOS2VersionChain(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	t.Run("version-0", func(t *testing.T) {
		b := os2SampleV3()[:78]
		putU16(b, 0, 0)
		os2, err := parseOS2Table(t, b)
		if err != nil {
			t.Fatalf("cannot decode version 0 table: %v", err)
		}
		if os2.Version != 0 {
			t.Errorf("expected version 0, got %d", os2.Version)
		}
		if os2.V0().USWeightClass != 400 {
			t.Errorf("version 0 fields should decode, weight is %d", os2.V0().USWeightClass)
		}
		if os2.V1().IsSome() || os2.V4().IsSome() || os2.V5().IsSome() {
			t.Errorf("version 0 table must not carry extension groups")
		}
		if os2.XHeight().IsSome() {
			t.Errorf("x-height is undefined before version 2")
		}
	})
	t.Run("version-1", func(t *testing.T) {
		b := os2SampleV3()[:86]
		putU16(b, 0, 1)
		os2, err := parseOS2Table(t, b)
		if err != nil {
			t.Fatalf("cannot decode version 1 table: %v", err)
		}
		v1, ok := os2.V1().Unwrap()
		if !ok {
			t.Fatal("version 1 table must carry the code page ranges")
		}
		if v1.ULCodePageRange != (CodePageRange{0x2000019f, 0}) {
			t.Errorf("unexpected code page ranges %v", v1.ULCodePageRange)
		}
		if os2.V4().IsSome() {
			t.Errorf("version 1 table must not carry the x-height group")
		}
	})
	t.Run("version-5", func(t *testing.T) {
		b := append(os2SampleV3(), 0x00, 0x78, 0xFF, 0xFF)
		putU16(b, 0, 5)
		os2, err := parseOS2Table(t, b)
		if err != nil {
			t.Fatalf("cannot decode version 5 table: %v", err)
		}
		v5, ok := os2.V5().Unwrap()
		if !ok {
			t.Fatal("version 5 table must carry the optical point size range")
		}
		if v5.USLowerOpticalPointSize != 120 {
			t.Errorf("expected lower optical size 120, got %d", v5.USLowerOpticalPointSize)
		}
		if v5.USUpperOpticalPointSize != 0xffff {
			t.Errorf("expected unbounded upper optical size, got %d", v5.USUpperOpticalPointSize)
		}
		if os2.V4().IsNone() || os2.V1().IsNone() {
			t.Errorf("version 5 table must carry all extension groups")
		}
	})
}

func TestOS2Defects(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	t.Run("unknown-version", func(t *testing.T) {
		b := os2SampleV3()
		putU16(b, 0, 6)
		if _, err := parseOS2Table(t, b); !IsKind(err, KindInvalidDiscriminant) {
			t.Errorf("expected version 6 to be rejected, got %v", err)
		}
	})
	t.Run("empty", func(t *testing.T) {
		if _, err := parseOS2Table(t, []byte{}); !IsKind(err, KindTruncated) {
			t.Errorf("expected empty table to be rejected, got %v", err)
		}
	})
	t.Run("undersized", func(t *testing.T) {
		// version 3 needs 96 bytes
		if _, err := parseOS2Table(t, os2SampleV3()[:90]); !IsKind(err, KindTruncated) {
			t.Errorf("expected undersized table to be rejected, got %v", err)
		}
	})
}

func TestOS2UnicodeRangeBits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	ur := UnicodeRange{0xe00002ff, 0x5000205b, 0x20, 0}
	set := []int{0, 7, 9, 31, 32, 62, 69}
	for _, i := range set {
		if !ur.Bit(i) {
			t.Errorf("expected Unicode range bit %d to be set", i)
		}
	}
	clear := []int{8, 63, 100, -1, 128}
	for _, i := range clear {
		if ur.Bit(i) {
			t.Errorf("expected Unicode range bit %d to be clear", i)
		}
	}
}

func TestOS2CodePageBits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	cpr := CodePageRange{0x2000019f, 0}
	for _, i := range []int{0, 1, 4, 7, 8, 29} {
		if !cpr.Bit(i) {
			t.Errorf("expected code page bit %d to be set", i)
		}
	}
	for _, i := range []int{5, 30, 32, -1, 64} {
		if cpr.Bit(i) {
			t.Errorf("expected code page bit %d to be clear", i)
		}
	}
}

func TestOS2SelectionFlags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	os2, err := parseOS2Table(t, os2SampleV3())
	if err != nil {
		t.Fatalf("cannot decode OS/2 sample: %v", err)
	}
	sel := os2.V0().FSSelection
	if !sel.Has(FSSelectionRegular) {
		t.Errorf("expected the regular flag to be set")
	}
	if sel.Has(FSSelectionItalic) || sel.Has(FSSelectionRegular|FSSelectionBold) {
		t.Errorf("unexpected selection flags in %#x", uint16(sel))
	}
	mixed := FSSelectionItalic | FSSelectionBold | FSSelectionOblique
	if !mixed.Has(FSSelectionItalic | FSSelectionBold) {
		t.Errorf("flag combination test failed for %#x", uint16(mixed))
	}
	if mixed.Has(FSSelectionUnderscore) {
		t.Errorf("underscore flag reported for %#x", uint16(mixed))
	}
}
