package ot

import "iter"

// Tables carry a checksum in their directory entry, computed by the font
// compiler over the table's bytes padded to a 4-byte boundary. Re-computing
// the sums is a cheap way to detect corrupted or tampered-with font files.

const checkSumAdjustmentOffset = 8 // position of head.checkSumAdjustment

// checksumSegment sums a byte segment as big-endian uint32 words, with
// wrap-around on overflow. An incomplete trailing word does not take part in
// the sum; callers pass padded segments, where complete words are the norm.
func checksumSegment(b binarySegm) uint32 {
	var sum uint32
	for len(b) >= 4 {
		sum += u32(b)
		b = b[4:]
	}
	return sum
}

// checksumHeadSegment sums like checksumSegment, but leaves out the
// checkSumAdjustment field at bytes 8…11. checkSumAdjustment is derived from
// the checksum of the complete font file, which in turn covers the head
// table; treating the field as zero breaks the self-reference.
func checksumHeadSegment(b binarySegm) uint32 {
	var sum uint32
	for i := 0; i+4 <= len(b); i += 4 {
		if i == checkSumAdjustmentOffset {
			continue
		}
		sum += u32(b[i:])
	}
	return sum
}

// ChecksumValid re-computes the checksum for the table with the given tag
// and compares it to the checksum stored in the font's table directory.
// A zero-length table is trivially valid. ChecksumValid returns false for
// tags without a directory entry and for directory entries whose padded
// extent does not fit into the font's data.
func (otf *Font) ChecksumValid(tag Tag) bool {
	rec, ok := otf.TableRecord(tag)
	if !ok {
		return false
	}
	return otf.checksumValid(rec)
}

// Checksums validates the checksum of every table of the font, in font
// order, as a sequence of (tag, valid) pairs.
//
//	for tag, ok := range otf.Checksums() {
//	    if !ok {
//	        log.Printf("table %s is corrupt", tag)
//	    }
//	}
func (otf *Font) Checksums() iter.Seq2[Tag, bool] {
	return func(yield func(Tag, bool) bool) {
		for _, rec := range otf.records {
			if !yield(rec.Tag, otf.checksumValid(rec)) {
				return
			}
		}
	}
}

func (otf *Font) checksumValid(rec TableRecord) bool {
	limit := int64(rec.Offset) + int64(rec.Length) + int64(rec.Length%4)
	if limit > int64(len(otf.data)) {
		return false
	}
	padded := otf.data[rec.Offset:limit]
	var sum uint32
	if rec.Tag == TableHead.Tag() {
		sum = checksumHeadSegment(padded)
	} else {
		sum = checksumSegment(padded)
	}
	return sum == rec.Checksum
}
