package ot

import "fmt"

// The naming table allows multilingual strings to be associated with the
// OpenType font. These strings can represent copyright notices, font names,
// family names, style names, and so on.
//
// Clients looking for a particular string select it by a multi-part key:
// platform ID, encoding ID, language ID and name ID. Note that different
// platforms have different requirements for the encoding of strings:
// Windows-platform strings are UTF-16BE, Macintosh-platform strings use
// legacy single-byte encodings. This package hands out the raw string bytes;
// interpretation of the platform-specific encodings is left to clients.

// NameTable represents an OpenType naming table ('name').
//
// There are two formats for the table. Format 0 uses numeric language IDs
// with platform-specific interpretations. Format 1 additionally carries
// language-tag records, associated sequentially with language IDs starting
// at 0x8000: the Nth language-tag record belongs to language ID 0x8000+N.
//
// Platform, encoding and language IDs are preserved as raw numbers, whether
// or not they match a registered value; identification of unknown IDs fails
// at lookup time, never at decode time.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/name
type NameTable struct {
	tableBase
	Format       uint16
	stringOffset int
	records      []NameRecord
	langTags     []langTagRecord
}

func newNameTable(tag Tag, b binarySegm, offset, size uint32) *NameTable {
	t := &NameTable{}
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

// NameRecord is the multi-part key of one string in the naming table, plus
// the location of the string within the table's storage area.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	length     uint16
	offset     uint16 // from the start of the storage area
}

// langTagRecord locates one BCP 47 language-tag string (UTF-16BE encoded)
// within the storage area.
type langTagRecord struct {
	length uint16
	offset uint16
}

// Records returns all name records of the table, in font order.
func (t *NameTable) Records() []NameRecord {
	if t == nil {
		return nil
	}
	recs := make([]NameRecord, len(t.records))
	copy(recs, t.records)
	return recs
}

// RecordCount returns the number of name records.
func (t *NameTable) RecordCount() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// StringBytes returns the raw bytes of a record's string, in the record's
// platform-specific encoding. The boolean is false if the string extent
// exceeds the table.
func (t *NameTable) StringBytes(rec NameRecord) ([]byte, bool) {
	if t == nil {
		return nil, false
	}
	b, err := t.data.view(t.stringOffset+int(rec.offset), int(rec.length))
	if err != nil {
		return nil, false
	}
	return b, true
}

// LanguageTagCount returns the number of language-tag records of a format 1
// table, 0 for format 0.
func (t *NameTable) LanguageTagCount() int {
	if t == nil {
		return 0
	}
	return len(t.langTags)
}

// LanguageTagBytes resolves a language ID at or above 0x8000 to the raw
// bytes of its language-tag string (UTF-16BE encoded). The boolean is false
// for IDs below 0x8000 and for IDs without a corresponding language-tag
// record: such name records are unusable by language identification, which
// is an expected outcome, not an error.
func (t *NameTable) LanguageTagBytes(languageID uint16) ([]byte, bool) {
	if t == nil || languageID < 0x8000 {
		return nil, false
	}
	i := int(languageID) - 0x8000
	if i >= len(t.langTags) {
		return nil, false
	}
	b, err := t.data.view(t.stringOffset+int(t.langTags[i].offset), int(t.langTags[i].length))
	if err != nil {
		return nil, false
	}
	return b, true
}

// --- Name table parsing ----------------------------------------------------

func parseName(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	const headerSize, recordSize = 6, 12
	if size < headerSize {
		return nil, ec.addError(KindTruncated, tag, "Header",
			fmt.Sprintf("name table too small: %d bytes (need %d)", size, headerSize),
			SeverityCritical, offset)
	}
	format, _ := b.u16(0)
	if format != 0 && format != 1 {
		return nil, ec.addError(KindInvalidDiscriminant, tag, "Format",
			fmt.Sprintf("naming table format %d not supported", format), SeverityCritical, offset)
	}
	n, _ := b.u16(2)
	strOff, _ := b.u16(4)
	tracer().Debugf("font has %d name records, format %d", n, format)
	if n > MaxNameRecordCount {
		return nil, ec.addError(KindMalformedInvariant, tag, "Header",
			fmt.Sprintf("unreasonable name record count %d", n), SeverityCritical, offset)
	}
	t := newNameTable(tag, b, offset, size)
	t.Format = format
	t.stringOffset = int(strOff)
	if int(strOff) > len(b) {
		// records stay decodable; string extraction will fail per record
		ec.addError(KindOutOfBounds, tag, "Storage",
			fmt.Sprintf("string storage offset %d exceeds table size %d", strOff, size),
			SeverityMajor, offset)
	}
	recs, err := b.view(headerSize, int(n)*recordSize)
	if err != nil {
		return nil, ec.addError(KindTruncated, tag, "NameRecords",
			fmt.Sprintf("record array incomplete: %d records in %d bytes", n, size),
			SeverityCritical, offset)
	}
	t.records = make([]NameRecord, n)
	for i := range t.records {
		rec := recs[i*recordSize:]
		t.records[i] = NameRecord{
			PlatformID: u16(rec),
			EncodingID: u16(rec[2:]),
			LanguageID: u16(rec[4:]),
			NameID:     u16(rec[6:]),
			length:     u16(rec[8:]),
			offset:     u16(rec[10:]),
		}
	}
	if format == 1 {
		at := headerSize + int(n)*recordSize
		tagCount, err := b.u16(at)
		if err != nil {
			return nil, ec.addError(KindTruncated, tag, "LangTagRecords",
				"language-tag count missing", SeverityCritical, offset)
		}
		tags, err := b.view(at+2, int(tagCount)*4)
		if err != nil {
			return nil, ec.addError(KindTruncated, tag, "LangTagRecords",
				fmt.Sprintf("language-tag array incomplete: %d records", tagCount),
				SeverityCritical, offset)
		}
		t.langTags = make([]langTagRecord, tagCount)
		for i := range t.langTags {
			t.langTags[i] = langTagRecord{
				length: u16(tags[i*4:]),
				offset: u16(tags[i*4+2:]),
			}
		}
	}
	return t, nil
}
