package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestChecksumSegment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	if sum := checksumSegment([]byte{0, 0, 0, 1, 0, 0, 0, 2}); sum != 3 {
		t.Errorf("expected sum 3, got %d", sum)
	}
	// overflow wraps around
	if sum := checksumSegment([]byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 2}); sum != 1 {
		t.Errorf("expected wrapped sum 1, got %d", sum)
	}
	// an incomplete trailing word does not take part in the sum
	if sum := checksumSegment([]byte{0, 0, 0, 1, 0xaa, 0xbb}); sum != 1 {
		t.Errorf("expected sum 1, got %d", sum)
	}
	if sum := checksumSegment(nil); sum != 0 {
		t.Errorf("expected empty sum 0, got %d", sum)
	}
}

func TestChecksumHeadSegment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	b := make([]byte, 16)
	putU32(b, 0, 1)
	putU32(b, 4, 2)
	putU32(b, 8, 0xdeadbeef) // checkSumAdjustment position
	putU32(b, 12, 3)
	if sum := checksumHeadSegment(b); sum != 6 {
		t.Errorf("expected checkSumAdjustment to be skipped, got sum %d", sum)
	}
	if sum := checksumSegment(b); sum != 6+0xdeadbeef {
		t.Errorf("plain sum should cover all words, got %d", sum)
	}
}

func TestChecksumValid(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	font := buildMinimalFont()
	rec := directoryEntry(t, font, "maxp")
	at := int(u32(font[rec+8:])) // start of the maxp payload
	font[at+6] ^= 0xff           // corrupt maxPoints
	otf, err := Parse(font)
	if err != nil {
		t.Fatalf("cannot parse synthetic font: %v", err)
	}
	if otf.ChecksumValid(T("maxp")) {
		t.Errorf("corrupted maxp must fail checksum validation")
	}
	for _, name := range []string{"head", "hhea", "hmtx", "cmap", "name"} {
		if !otf.ChecksumValid(T(name)) {
			t.Errorf("table %s is intact, checksum should match", name)
		}
	}
	if otf.ChecksumValid(T("ZZZZ")) {
		t.Errorf("a tag without a directory entry cannot be valid")
	}
}

func TestChecksumHeadAdjustment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	font := buildMinimalFont()
	rec := directoryEntry(t, font, "head")
	at := int(u32(font[rec+8:]))
	// checkSumAdjustment is derived from the whole-file checksum and is
	// excluded from the head table's own sum
	putU32(font, at+checkSumAdjustmentOffset, 0xb1b0afba)
	otf, err := Parse(font)
	if err != nil {
		t.Fatalf("cannot parse synthetic font: %v", err)
	}
	if !otf.ChecksumValid(T("head")) {
		t.Errorf("checkSumAdjustment must not influence the head checksum")
	}
	font[at+20] ^= 0xff // any other head byte does
	if otf.ChecksumValid(T("head")) {
		t.Errorf("corrupted head must fail checksum validation")
	}
}

func TestChecksumExtentOutOfBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	font := buildMinimalFont()
	rec := directoryEntry(t, font, "cmap")
	putU32(font, rec+12, u32(font[rec+12:])+0x1000)
	otf, err := Parse(font)
	if err != nil {
		t.Fatalf("cannot parse synthetic font: %v", err)
	}
	if otf.ChecksumValid(T("cmap")) {
		t.Errorf("a record extent beyond EOF cannot validate")
	}
}

func TestChecksumsEarlyStop(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otf")
	defer teardown()
	otf, err := Parse(buildMinimalFont())
	if err != nil {
		t.Fatalf("cannot parse synthetic font: %v", err)
	}
	count := 0
	for range otf.Checksums() {
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("expected iteration to stop after 3 tables, got %d", count)
	}
}
