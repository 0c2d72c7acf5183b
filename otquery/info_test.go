package otquery

import (
	"testing"

	"github.com/npillmayer/otf/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// --- Test Suite Preparation ------------------------------------------------

type InfoTestEnviron struct {
	suite.Suite
	otf *ot.Font
	ref *sfnt.Font
}

// listen for 'go test' command --> run test methods
func TestInfoFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otf.query")
	defer teardown()
	suite.Run(t, new(InfoTestEnviron))
}

// run once, before test suite methods
func (env *InfoTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	var err error
	env.otf, err = ot.Parse(goregular.TTF)
	env.Require().NoError(err, "cannot parse Go Regular")
	env.ref, err = sfnt.Parse(goregular.TTF)
	env.Require().NoError(err, "reference parser rejects Go Regular")
}

// run once, after test suite methods
func (env *InfoTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

// --- Tests -----------------------------------------------------------------

func (env *InfoTestEnviron) TestFontTypeInfo() {
	fti := FontType(env.otf)
	env.Equal("TrueType", fti, "expected font type of test font to be TrueType")
}

func (env *InfoTestEnviron) TestGeneralInfo() {
	info := NameInfo(env.otf)
	env.T().Logf("info = %v", info)
	fam, ok := info["family"]
	env.Require().True(ok, "font family identifier not found in font info")
	want, err := env.ref.Name(nil, sfnt.NameIDFamily)
	env.Require().NoError(err, "reference parser should find a family name")
	env.Equal(want, fam, "expected font family name to match reference parser")
}

func (env *InfoTestEnviron) TestNameLookup() {
	sub, ok := Name(env.otf, sfnt.NameIDSubfamily)
	env.Require().True(ok, "expected a subfamily entry in the name table")
	want, err := env.ref.Name(nil, sfnt.NameIDSubfamily)
	env.Require().NoError(err, "reference parser should find a subfamily name")
	env.Equal(want, sub, "expected subfamily name to match reference parser")
}

func (env *InfoTestEnviron) TestNamesRange() {
	seen := make(map[sfnt.NameID]string)
	for nameID, value := range NamesRange(env.otf) {
		env.NotEqual("", value, "name records should never yield empty strings")
		seen[nameID] = value
	}
	env.NotZero(len(seen), "expected name entries in test font")
	env.Contains(seen, sfnt.NameIDFamily, "expected a family name entry")
	count := 0
	for range NamesRange(env.otf) {
		count++
		break
	}
	env.Equal(1, count, "expected early break to stop the iteration")
}

func (env *InfoTestEnviron) TestHeadInfo() {
	h, ok := HeadInfo(env.otf)
	env.Require().True(ok, "expected to decode table 'head'")

	headTable := env.otf.Table(ot.T("head")).Self().AsHead()
	env.Require().NotNil(headTable, "expected parsed HeadTable")

	env.Equal(headTable.Flags, h.Flags, "expected matching Flags")
	env.Equal(headTable.UnitsPerEm, h.UnitsPerEm, "expected matching UnitsPerEm")
	env.Equal(int16(headTable.IndexToLocFormat), h.IndexToLocFormat, "expected matching IndexToLocFormat")
	env.Equal(uint32(0x5F0F3CF5), h.MagicNumber, "expected OpenType head magic number")
}

func (env *InfoTestEnviron) TestMaxPInfo() {
	m, ok := MaxPInfo(env.otf)
	env.Require().True(ok, "expected to decode table 'maxp'")

	maxpTable := env.otf.Table(ot.T("maxp")).Self().AsMaxP()
	env.Require().NotNil(maxpTable, "expected parsed MaxPTable")

	env.Equal(uint16(maxpTable.NumGlyphs), m.NumGlyphs, "expected matching numGlyphs")
	env.Equal(env.ref.NumGlyphs(), int(m.NumGlyphs), "expected glyph count of reference parser")
	env.NotZero(m.VersionFixed, "expected maxp version to be set")
	env.Equal(maxpTable.Profile.IsSome(), m.HasExtendedProfile,
		"expected profile presence to match typed maxp table")
}

func (env *InfoTestEnviron) TestFontMetricsInfo() {
	metrics := FontMetrics(env.otf)
	env.T().Logf("metrics = %v", metrics)
	env.Equal(sfnt.Units(env.ref.UnitsPerEm()), metrics.UnitsPerEm,
		"expected units per em of reference parser")
	env.Greater(metrics.Ascent, sfnt.Units(0), "expected a positive ascent")
	env.Less(metrics.Descent, sfnt.Units(0), "expected a negative descent")
	env.Greater(metrics.MaxAdvance, sfnt.Units(0), "expected a positive maximum advance")
}

func (env *InfoTestEnviron) TestLayoutInfo() {
	layouts := LayoutTables(env.otf)
	env.T().Logf("test font layout tables: %v", layouts)
	for _, l := range layouts {
		env.NotNil(env.otf.Table(ot.T(l)), "listed layout table %s should be present", l)
	}
	for _, l := range []string{"GDEF", "GSUB", "GPOS"} {
		if env.otf.Table(ot.T(l)) != nil {
			env.Contains(layouts, l, "present table %s should be listed", l)
		}
	}
}

func (env *InfoTestEnviron) TestGlyphLookup() {
	var buf sfnt.Buffer
	for _, r := range []rune{'A', 'g', '0', ' ', '€'} {
		want, err := env.ref.GlyphIndex(&buf, r)
		env.Require().NoError(err, "reference lookup of %#U failed", r)
		got := GlyphIndex(env.otf, r)
		env.Equal(ot.GlyphIndex(want), got, "expected glyph index of %#U to match reference parser", r)
	}
}

func (env *InfoTestEnviron) TestReverseLookup() {
	gid := GlyphIndex(env.otf, 'A')
	env.Require().NotZero(gid, "test font should map 'A'")
	r := CodePointForGlyph(env.otf, gid)
	env.Equal('A', r, "expected code-point to be %#U, is %#U", 'A', r)
}

func (env *InfoTestEnviron) TestGlyphMetricsInfo() {
	gid := GlyphIndex(env.otf, 'A')
	env.Require().NotZero(gid, "test font should map 'A'")
	metrics := GlyphMetrics(env.otf, gid)
	env.T().Logf("metrics of 'A' = %v", metrics)
	env.Greater(metrics.Advance, sfnt.Units(0), "expected a positive advance for 'A'")
	env.False(metrics.BBox.IsEmpty(), "expected a non-empty bounding box for 'A'")
	env.Equal(metrics.Advance-(metrics.LSB+metrics.BBox.Dx()), metrics.RSB,
		"side bearings and box width should sum up to the advance")

	space := GlyphIndex(env.otf, ' ')
	env.Require().NotZero(space, "test font should map the space character")
	metrics = GlyphMetrics(env.otf, space)
	env.True(metrics.BBox.IsEmpty(), "space has no outline and no bounding box")
	env.Greater(metrics.Advance, sfnt.Units(0), "expected a positive advance for space")
	env.Zero(metrics.RSB, "glyphs without outline have no right side bearing")
}
