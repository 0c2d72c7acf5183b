package ot

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// Negative tests around the directory walk: structurally broken files must
// fail fast, per-table defects must be collected without aborting the walk.

func hasError(errs []FontError, kind ErrorKind, table Tag) bool {
	for _, e := range errs {
		if e.Kind == kind && e.Table == table {
			return true
		}
	}
	return false
}

func hasWarning(warns []FontWarning, table Tag, substr string) bool {
	for _, w := range warns {
		if w.Table == table && strings.Contains(w.Issue, substr) {
			return true
		}
	}
	return false
}

// withTable replaces the payload of one table in a synthetic table set.
func withTable(tables []synthTable, tag string, data []byte) []synthTable {
	out := make([]synthTable, len(tables))
	copy(out, tables)
	for i := range out {
		if out[i].tag == tag {
			out[i].data = data
		}
	}
	return out
}

// directoryEntry returns the byte position of a table's directory record
// within a font file.
func directoryEntry(t *testing.T, font []byte, tag string) int {
	t.Helper()
	n := int(u16(font[4:]))
	for i := 0; i < n; i++ {
		at := 12 + 16*i
		if Tag(u32(font[at:])) == T(tag) {
			return at
		}
	}
	t.Fatalf("font has no %s table", tag)
	return 0
}

func TestParseTruncatedHeader(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	font := buildMinimalFont()
	for _, size := range []int{0, 4, 8, 11} {
		if _, err := Parse(font[:size]); !IsKind(err, KindTruncated) {
			t.Errorf("%d-byte file: expected truncation error, got %v", size, err)
		}
	}
}

func TestParseTableCountTooLarge(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	file := make([]byte, 12)
	putU32(file, 0, sfntVersionTrueType)
	putU16(file, 4, MaxTableCount+1)
	if _, err := Parse(file); !IsKind(err, KindMalformedInvariant) {
		t.Errorf("expected table count to be rejected, got %v", err)
	}
}

func TestParseRecordsTruncated(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	font := buildMinimalFont()
	// keep the header intact but cut into the record array
	if _, err := Parse(font[:12+16*3+4]); !IsKind(err, KindTruncated) {
		t.Errorf("expected record array truncation, got %v", err)
	}
}

func TestParseUnsortedDirectory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	font := buildMinimalFont()
	swapped := make([]byte, len(font))
	copy(swapped, font)
	copy(swapped[12:28], font[28:44]) // records 0 and 1 trade places
	copy(swapped[28:44], font[12:28])
	otf, err := Parse(swapped)
	if otf != nil || !IsKind(err, KindMalformedInvariant) {
		t.Errorf("expected unsorted directory to be fatal, got %v", err)
	}
}

func TestParseMisalignedTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	font := buildMinimalFont()
	rec := directoryEntry(t, font, "name")
	putU32(font, rec+8, u32(font[rec+8:])+2) // offset off the 4-byte grid
	otf, err := Parse(font)
	if err != nil {
		t.Fatalf("per-table defect must not be fatal, got %v", err)
	}
	if !hasError(otf.Errors(), KindMalformedInvariant, T("name")) {
		t.Errorf("expected a misalignment error for name, got %v", otf.Errors())
	}
	if otf.Table(T("name")) != nil {
		t.Errorf("misaligned table should be skipped")
	}
	if _, ok := otf.TableRecord(T("name")); !ok {
		t.Errorf("directory record of a skipped table should survive")
	}
	if !hasWarning(otf.Warnings(), T("name"), "missing required table") {
		t.Errorf("expected a missing-table warning, got %v", otf.Warnings())
	}
}

func TestParseTableLengthOverflow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	font := buildMinimalFont()
	rec := directoryEntry(t, font, "post")
	putU32(font, rec+12, 0xfffffffe) // offset + length wraps around
	otf, err := Parse(font)
	if err != nil {
		t.Fatalf("per-table defect must not be fatal, got %v", err)
	}
	if !hasError(otf.Errors(), KindOutOfBounds, T("post")) {
		t.Errorf("expected an overflow error for post, got %v", otf.Errors())
	}
	if otf.PostScriptInfo() != nil {
		t.Errorf("overflowing table should be skipped")
	}
}

func TestParseTableBeyondEOF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	font := buildMinimalFont()
	rec := directoryEntry(t, font, "cmap")
	putU32(font, rec+12, u32(font[rec+12:])+0x1000)
	otf, err := Parse(font)
	if err != nil {
		t.Fatalf("per-table defect must not be fatal, got %v", err)
	}
	if !hasError(otf.Errors(), KindOutOfBounds, T("cmap")) {
		t.Errorf("expected an out-of-bounds error for cmap, got %v", otf.Errors())
	}
	if otf.CMap != nil {
		t.Errorf("out-of-bounds table should be skipped")
	}
	if !otf.HasCriticalErrors() {
		t.Errorf("expected the defect to be critical")
	}
}

func TestParseMissingRequiredTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	font := buildFontFile(sfntVersionTrueType, []synthTable{
		{"head", synthHead(0)},
		{"hhea", synthHHea(2)},
		{"maxp", synthMaxP(3)},
		{"hmtx", synthHMtx()},
	})
	otf, err := Parse(font)
	if err != nil {
		t.Fatalf("missing tables must not be fatal, got %v", err)
	}
	for _, name := range []string{"cmap", "name", "OS/2", "post"} {
		if !hasWarning(otf.Warnings(), T(name), "missing required table") {
			t.Errorf("expected a missing-table warning for %s", name)
		}
	}
	if len(otf.Warnings()) != 4 {
		t.Errorf("expected 4 warnings, got %v", otf.Warnings())
	}
	if otf.HasCriticalErrors() {
		t.Errorf("missing tables are warnings, got errors %v", otf.Errors())
	}
}

func TestParseUnknownTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	extra := append(minimalFontTables(),
		synthTable{"ZZZZ", []byte{1, 2, 3, 4}}, // not an OpenType table tag
		synthTable{"GDEF", make([]byte, 12)},   // known tag without a decoder
	)
	otf, err := Parse(buildFontFile(sfntVersionTrueType, extra))
	if err != nil {
		t.Fatalf("cannot parse synthetic font: %v", err)
	}
	if !hasWarning(otf.Warnings(), T("ZZZZ"), "unrecognized table tag") {
		t.Errorf("expected a warning for tag ZZZZ, got %v", otf.Warnings())
	}
	if hasWarning(otf.Warnings(), T("GDEF"), "unrecognized table tag") {
		t.Errorf("GDEF is a registered tag, got %v", otf.Warnings())
	}
	// both tables stay accessible as raw bytes
	for _, name := range []string{"ZZZZ", "GDEF"} {
		table := otf.Table(T(name))
		if table == nil {
			t.Fatalf("expected a generic table for %s", name)
		}
		if table.Self().AsCMap() != nil {
			t.Errorf("generic table %s should not convert to a concrete type", name)
		}
	}
}

func TestParseHeadDefects(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	t.Run("bad-magic", func(t *testing.T) {
		head := synthHead(0)
		putU32(head, 12, 0x12345678)
		otf, err := Parse(buildFontFile(sfntVersionTrueType, withTable(minimalFontTables(), "head", head)))
		if err != nil {
			t.Fatalf("table defect must not be fatal, got %v", err)
		}
		if !hasError(otf.Errors(), KindInvalidDiscriminant, T("head")) {
			t.Errorf("expected a magic number error, got %v", otf.Errors())
		}
		table := otf.Table(T("head"))
		if table == nil {
			t.Fatal("raw head bytes should stay accessible")
		}
		if table.Self().AsHead() != nil {
			t.Errorf("failed head decode should fall back to a generic table")
		}
	})
	t.Run("bad-version", func(t *testing.T) {
		head := synthHead(0)
		putU32(head, 0, 0x00020000)
		otf, err := Parse(buildFontFile(sfntVersionTrueType, withTable(minimalFontTables(), "head", head)))
		if err != nil {
			t.Fatalf("table defect must not be fatal, got %v", err)
		}
		if !hasError(otf.Errors(), KindInvalidDiscriminant, T("head")) {
			t.Errorf("expected a version error, got %v", otf.Errors())
		}
	})
	t.Run("truncated", func(t *testing.T) {
		otf, err := Parse(buildFontFile(sfntVersionTrueType, withTable(minimalFontTables(), "head", make([]byte, 20))))
		if err != nil {
			t.Fatalf("table defect must not be fatal, got %v", err)
		}
		if !hasError(otf.Errors(), KindTruncated, T("head")) {
			t.Errorf("expected a truncation error, got %v", otf.Errors())
		}
	})
}

func TestParseCrossTableConsistency(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	t.Run("metrics-count", func(t *testing.T) {
		// hhea claims more long metrics than the font has glyphs
		font := buildFontFile(sfntVersionTrueType, withTable(minimalFontTables(), "hhea", synthHHea(5)))
		otf, err := Parse(font)
		if err != nil {
			t.Fatalf("consistency defect must not be fatal, got %v", err)
		}
		if !hasError(otf.Errors(), KindMalformedInvariant, T("hhea")) {
			t.Errorf("expected a metrics count error, got %v", otf.Errors())
		}
		if _, _, ok := otf.HorizontalMetrics().HMetrics(0); ok {
			t.Errorf("hmtx should stay unconnected after a metrics count defect")
		}
	})
	t.Run("hmtx-size", func(t *testing.T) {
		font := buildFontFile(sfntVersionTrueType, withTable(minimalFontTables(), "hmtx", synthHMtx()[:8]))
		otf, err := Parse(font)
		if err != nil {
			t.Fatalf("consistency defect must not be fatal, got %v", err)
		}
		if !hasError(otf.Errors(), KindTruncated, T("hmtx")) {
			t.Errorf("expected an hmtx size error, got %v", otf.Errors())
		}
		if !otf.HasCriticalErrors() {
			t.Errorf("expected the size defect to be critical")
		}
		if _, _, ok := otf.HorizontalMetrics().HMetrics(0); ok {
			t.Errorf("hmtx should stay unconnected after a size defect")
		}
	})
	t.Run("loca-format", func(t *testing.T) {
		font := buildFontFile(sfntVersionTrueType, withTable(minimalFontTables(), "head", synthHead(2)))
		otf, err := Parse(font)
		if err != nil {
			t.Fatalf("consistency defect must not be fatal, got %v", err)
		}
		if !hasError(otf.Errors(), KindInvalidDiscriminant, T("head")) {
			t.Errorf("expected an index-to-location format error, got %v", otf.Errors())
		}
		if n := otf.Table(T("loca")).Self().AsLoca().EntryCount(); n != 0 {
			t.Errorf("loca should stay unconnected, has %d entries", n)
		}
	})
	t.Run("loca-size", func(t *testing.T) {
		font := buildFontFile(sfntVersionTrueType, withTable(minimalFontTables(), "loca", make([]byte, 6)))
		otf, err := Parse(font)
		if err != nil {
			t.Fatalf("consistency defect must not be fatal, got %v", err)
		}
		if !hasError(otf.Errors(), KindTruncated, T("loca")) {
			t.Errorf("expected a loca size error, got %v", otf.Errors())
		}
		if n := otf.Table(T("loca")).Self().AsLoca().EntryCount(); n != 0 {
			t.Errorf("loca should stay unconnected, has %d entries", n)
		}
	})
	t.Run("long-loca", func(t *testing.T) {
		// long format needs 4 bytes per entry; 16 bytes fit exactly
		tables := withTable(minimalFontTables(), "head", synthHead(1))
		font := buildFontFile(sfntVersionTrueType, withTable(tables, "loca", make([]byte, 16)))
		otf, err := Parse(font)
		if err != nil {
			t.Fatalf("cannot parse synthetic font: %v", err)
		}
		if len(otf.Errors()) > 0 {
			t.Fatalf("expected no errors, got %v", otf.Errors())
		}
		if n := otf.Table(T("loca")).Self().AsLoca().EntryCount(); n != 4 {
			t.Errorf("expected 4 long loca entries, got %d", n)
		}
	})
}
