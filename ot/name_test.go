package ot

import (
	"bytes"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

type nameEntry struct {
	pid, eid, lid, nameID uint16
	value                 []byte
}

// buildNameTable lays out name records, optional language-tag records and the
// string storage area of a naming table.
func buildNameTable(format uint16, entries []nameEntry, langTags [][]byte) []byte {
	n := len(entries)
	headerSize := 6 + 12*n
	if format == 1 {
		headerSize += 2 + 4*len(langTags)
	}
	b := make([]byte, headerSize)
	putU16(b, 0, format)
	putU16(b, 2, uint16(n))
	putU16(b, 4, uint16(headerSize))
	var storage []byte
	for i, e := range entries {
		at := 6 + 12*i
		putU16(b, at, e.pid)
		putU16(b, at+2, e.eid)
		putU16(b, at+4, e.lid)
		putU16(b, at+6, e.nameID)
		putU16(b, at+8, uint16(len(e.value)))
		putU16(b, at+10, uint16(len(storage)))
		storage = append(storage, e.value...)
	}
	if format == 1 {
		at := 6 + 12*n
		putU16(b, at, uint16(len(langTags)))
		for i, tag := range langTags {
			putU16(b, at+2+4*i, uint16(len(tag)))
			putU16(b, at+2+4*i+2, uint16(len(storage)))
			storage = append(storage, tag...)
		}
	}
	return append(b, storage...)
}

func parseNameTable(t *testing.T, b []byte) (*NameTable, *errorCollector, error) {
	t.Helper()
	ec := &errorCollector{}
	table, err := parseName(T("name"), b, 0, uint32(len(b)), ec)
	if err != nil {
		return nil, ec, err
	}
	return table.Self().AsName(), ec, nil
}

func TestNameFormat0(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	entries := []nameEntry{
		{1, 0, 0, 1, []byte("Cormorant")}, // Macintosh, MacRoman bytes
		{3, 1, 0x0409, 1, utf16BE("Cormorant")},
		{3, 1, 0x0409, 2, utf16BE("Italic")},
		{3, 1, 0x0409, 4, utf16BE("Cormorant Italic")},
	}
	nt, ec, err := parseNameTable(t, buildNameTable(0, entries, nil))
	if err != nil || len(ec.errors) > 0 {
		t.Fatalf("cannot parse name table: %v / %v", err, ec.errors)
	}
	if nt.Format != 0 {
		t.Errorf("expected format 0, got %d", nt.Format)
	}
	if nt.RecordCount() != 4 {
		t.Fatalf("expected 4 records, got %d", nt.RecordCount())
	}
	recs := nt.Records()
	if recs[1].PlatformID != 3 || recs[1].EncodingID != 1 ||
		recs[1].LanguageID != 0x0409 || recs[1].NameID != 1 {
		t.Errorf("unexpected record key %v", recs[1])
	}
	for i, rec := range recs {
		s, ok := nt.StringBytes(rec)
		if !ok || !bytes.Equal(s, entries[i].value) {
			t.Errorf("record %d: expected string %q, got %q (%v)", i, entries[i].value, s, ok)
		}
	}
	if nt.LanguageTagCount() != 0 {
		t.Errorf("format 0 has no language tags, got %d", nt.LanguageTagCount())
	}
	if _, ok := nt.LanguageTagBytes(0x8000); ok {
		t.Errorf("format 0 must not resolve language tags")
	}
}

func TestNameFormat1LanguageTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	entries := []nameEntry{
		{0, 4, 0x8000, 1, utf16BE("Atkinson")},
		{0, 4, 0x8001, 2, utf16BE("Hyperlegible")},
	}
	langTags := [][]byte{utf16BE("en-US"), utf16BE("de-Latn-DE")}
	nt, ec, err := parseNameTable(t, buildNameTable(1, entries, langTags))
	if err != nil || len(ec.errors) > 0 {
		t.Fatalf("cannot parse name table: %v / %v", err, ec.errors)
	}
	if nt.Format != 1 {
		t.Errorf("expected format 1, got %d", nt.Format)
	}
	if nt.LanguageTagCount() != 2 {
		t.Fatalf("expected 2 language tags, got %d", nt.LanguageTagCount())
	}
	// the Nth language-tag record belongs to language ID 0x8000+N
	for i, want := range langTags {
		s, ok := nt.LanguageTagBytes(uint16(0x8000 + i))
		if !ok || !bytes.Equal(s, want) {
			t.Errorf("language ID %#x: expected tag %q, got %q (%v)", 0x8000+i, want, s, ok)
		}
	}
	if _, ok := nt.LanguageTagBytes(0x8002); ok {
		t.Errorf("language ID without a record must not resolve")
	}
	if _, ok := nt.LanguageTagBytes(0x0409); ok {
		t.Errorf("numeric language IDs have no tag record")
	}
	for i, rec := range nt.Records() {
		s, ok := nt.StringBytes(rec)
		if !ok || !bytes.Equal(s, entries[i].value) {
			t.Errorf("record %d: expected string %q, got %q (%v)", i, entries[i].value, s, ok)
		}
	}
}

// A Macintosh language ID that maps to no known language stays usable: IDs
// are carried as raw numbers, and an odd one never blocks the string bytes.
func TestNameMacLanguageUnknown(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	entries := []nameEntry{{1, 0, 0xFF, 1, []byte("Quodlibet")}}
	nt, ec, err := parseNameTable(t, buildNameTable(0, entries, nil))
	if err != nil || len(ec.errors) > 0 {
		t.Fatalf("unknown language ID must not fail the parse: %v / %v", err, ec.errors)
	}
	if nt.RecordCount() != 1 {
		t.Fatalf("expected 1 name record, got %d", nt.RecordCount())
	}
	rec := nt.Records()[0]
	if rec.PlatformID != 1 || rec.EncodingID != 0 || rec.LanguageID != 0xFF {
		t.Errorf("IDs not preserved: %+v", rec)
	}
	if _, ok := nt.LanguageTagBytes(rec.LanguageID); ok {
		t.Errorf("numeric language IDs have no language-tag record")
	}
	if s, ok := nt.StringBytes(rec); !ok || string(s) != "Quodlibet" {
		t.Errorf("expected the name string to stay retrievable, got %q (%v)", s, ok)
	}
}

func TestNameDefects(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	sample := func() []byte {
		return buildNameTable(0, []nameEntry{
			{3, 1, 0x0409, 1, utf16BE("Test")},
			{3, 1, 0x0409, 2, utf16BE("Regular")},
		}, nil)
	}
	t.Run("truncated-header", func(t *testing.T) {
		if _, _, err := parseNameTable(t, sample()[:4]); !IsKind(err, KindTruncated) {
			t.Errorf("expected header truncation to be rejected, got %v", err)
		}
	})
	t.Run("unknown-format", func(t *testing.T) {
		b := sample()
		putU16(b, 0, 2)
		if _, _, err := parseNameTable(t, b); !IsKind(err, KindInvalidDiscriminant) {
			t.Errorf("expected format 2 to be rejected, got %v", err)
		}
	})
	t.Run("record-count", func(t *testing.T) {
		b := sample()
		putU16(b, 2, MaxNameRecordCount+1)
		if _, _, err := parseNameTable(t, b); !IsKind(err, KindMalformedInvariant) {
			t.Errorf("expected the record count to be rejected, got %v", err)
		}
	})
	t.Run("records-truncated", func(t *testing.T) {
		if _, _, err := parseNameTable(t, sample()[:6+12]); !IsKind(err, KindTruncated) {
			t.Errorf("expected a cut record array to be rejected, got %v", err)
		}
	})
	t.Run("storage-beyond-table", func(t *testing.T) {
		b := sample()
		putU16(b, 4, uint16(len(b)+10))
		nt, ec, err := parseNameTable(t, b)
		if err != nil {
			t.Fatalf("records stay decodable, got %v", err)
		}
		if !hasError(ec.errors, KindOutOfBounds, T("name")) {
			t.Errorf("expected a storage offset error, got %v", ec.errors)
		}
		if nt.RecordCount() != 2 {
			t.Errorf("expected records to survive, got %d", nt.RecordCount())
		}
		for _, rec := range nt.Records() {
			if _, ok := nt.StringBytes(rec); ok {
				t.Errorf("string extraction should fail per record")
			}
		}
	})
	t.Run("string-extent", func(t *testing.T) {
		b := sample()
		putU16(b, 6+8, 2000) // first record's string length
		nt, _, err := parseNameTable(t, b)
		if err != nil {
			t.Fatalf("cannot parse name table: %v", err)
		}
		recs := nt.Records()
		if _, ok := nt.StringBytes(recs[0]); ok {
			t.Errorf("a string extent beyond the table must not resolve")
		}
		if s, ok := nt.StringBytes(recs[1]); !ok || !bytes.Equal(s, utf16BE("Regular")) {
			t.Errorf("intact records should still resolve, got %q (%v)", s, ok)
		}
	})
	t.Run("langtag-count-missing", func(t *testing.T) {
		b := make([]byte, 6)
		putU16(b, 0, 1)
		putU16(b, 4, 6)
		if _, _, err := parseNameTable(t, b); !IsKind(err, KindTruncated) {
			t.Errorf("expected a missing language-tag count to be rejected, got %v", err)
		}
	})
	t.Run("langtags-truncated", func(t *testing.T) {
		b := make([]byte, 8)
		putU16(b, 0, 1)
		putU16(b, 4, 8)
		putU16(b, 6, 5) // five tag records, none stored
		if _, _, err := parseNameTable(t, b); !IsKind(err, KindTruncated) {
			t.Errorf("expected a cut language-tag array to be rejected, got %v", err)
		}
	})
}
