package otquery

import (
	"fmt"
	"iter"

	"github.com/npillmayer/otf/ot"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// nameKey identifies a NameRecord entry in OpenType table 'name'.
// The key follows the OpenType NameRecord fields directly.
type nameKey struct {
	Platform PlatformID
	Encoding EncodingID
	Language uint16
	Name     sfnt.NameID // see https://pkg.go.dev/golang.org/x/image/font/sfnt#NameID
}

// PlatformID tells which platform's conventions a name record follows.
type PlatformID uint16

const (
	PlatformIDUnicode   PlatformID = 0
	PlatformIDMacintosh PlatformID = 1
	PlatformIDWindows   PlatformID = 3
)

// EncodingID selects a character encoding within a platform. Values are only
// meaningful in combination with a PlatformID.
type EncodingID uint16

const (
	EncodingIDUnicodeBMP    EncodingID = 3
	EncodingIDMacRoman      EncodingID = 0
	EncodingIDWindowsSymbol EncodingID = 0 // symbol fonts are not supported
	EncodingIDWindowsBMP    EncodingID = 1
	EncodingIDWindowsFull   EncodingID = 10
)

// American English, the fallback language of the Windows platform.
const windowsLanguageEnglishUS = 0x0409

// NamesRange yields decoded `(nameID, value)` pairs from a font's OpenType
// `name` table, in font order.
//
// Only records with a supported encoding are yielded (Unicode, Windows BMP
// and full-repertoire, Macintosh Roman); malformed or out-of-bounds records
// are skipped. A name ID may occur more than once, with entries from
// different platforms or languages. Clients who just want "the" name for an
// ID should use Name instead.
func NamesRange(f *ot.Font) iter.Seq2[sfnt.NameID, string] {
	var names *ot.NameTable
	if f != nil {
		names = f.Names()
	}
	return func(yield func(sfnt.NameID, string) bool) {
		if names == nil {
			return
		}
		for _, rec := range names.Records() {
			key := keyOfRecord(rec)
			if !isSupportedNameEncoding(key) {
				continue
			}
			value, ok := decodeRecord(names, key, rec)
			if !ok {
				continue
			}
			if !yield(key.Name, value) {
				return
			}
		}
	}
}

// Name returns the best value for a name ID, e.g. sfnt.NameIDFamily.
//
// Fonts usually carry a name in several platform flavours and languages.
// Windows platform entries in American English are preferred, then other
// Windows entries, then Unicode platform entries, then Macintosh Roman ones.
// The boolean is false if the font has no decodable entry for the ID at all.
func Name(f *ot.Font, nameID sfnt.NameID) (string, bool) {
	if f == nil || f.Names() == nil {
		return "", false
	}
	names := f.Names()
	best, value := 0, ""
	for _, rec := range names.Records() {
		key := keyOfRecord(rec)
		if key.Name != nameID || !isSupportedNameEncoding(key) {
			continue
		}
		score := nameScore(key)
		if score <= best {
			continue
		}
		if s, ok := decodeRecord(names, key, rec); ok {
			best, value = score, s
		}
	}
	return value, best > 0
}

// NameInfo collects the identifying entries of a font's name table into a
// map with keys "family", "subfamily", "fullname" and "version". Entries
// the font does not carry are absent from the map.
func NameInfo(f *ot.Font) map[string]string {
	info := make(map[string]string)
	for key, nameID := range map[string]sfnt.NameID{
		"family":    sfnt.NameIDFamily,
		"subfamily": sfnt.NameIDSubfamily,
		"fullname":  sfnt.NameIDFull,
		"version":   sfnt.NameIDVersion,
	} {
		if value, ok := Name(f, nameID); ok {
			info[key] = value
		}
	}
	return info
}

func keyOfRecord(rec ot.NameRecord) nameKey {
	return nameKey{
		Platform: PlatformID(rec.PlatformID),
		Encoding: EncodingID(rec.EncodingID),
		Language: rec.LanguageID,
		Name:     sfnt.NameID(rec.NameID),
	}
}

// isSupportedNameEncoding tells whether we can decode strings for a
// platform/encoding combination. Unicode platform strings are UTF-16BE
// regardless of the encoding ID, which only narrows the repertoire.
func isSupportedNameEncoding(key nameKey) bool {
	switch key.Platform {
	case PlatformIDUnicode:
		return true
	case PlatformIDMacintosh:
		return key.Encoding == EncodingIDMacRoman
	case PlatformIDWindows:
		return key.Encoding == EncodingIDWindowsBMP || key.Encoding == EncodingIDWindowsFull
	}
	return false
}

// nameScore ranks name records carrying the same name ID. Higher wins.
func nameScore(key nameKey) int {
	switch {
	case key.Platform == PlatformIDWindows && key.Language == windowsLanguageEnglishUS:
		return 4
	case key.Platform == PlatformIDWindows:
		return 3
	case key.Platform == PlatformIDUnicode:
		return 2
	case key.Platform == PlatformIDMacintosh:
		return 1
	}
	return 0
}

func decodeRecord(names *ot.NameTable, key nameKey, rec ot.NameRecord) (string, bool) {
	raw, ok := names.StringBytes(rec)
	if !ok {
		tracer().Debugf("name record %v points outside the table", key)
		return "", false
	}
	value, err := decodeNameString(key, raw)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// decodeNameString transcodes a name string to UTF-8. Macintosh platform
// strings are Mac Roman encoded, all other supported records UTF-16BE.
func decodeNameString(key nameKey, str []byte) (string, error) {
	var decoded []byte
	var err error
	if key.Platform == PlatformIDMacintosh {
		decoded, err = charmap.Macintosh.NewDecoder().Bytes(str)
	} else {
		enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		decoded, err = enc.NewDecoder().Bytes(str)
	}
	if err != nil {
		return "", fmt.Errorf("decoding name string: %v", err)
	}
	return string(decoded), nil
}
