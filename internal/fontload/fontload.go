package fontload

import (
	"os"

	"github.com/npillmayer/otf/ot"
)

// FontFile is a font file read into memory, with the file kind derived
// from its leading version tag.
type FontFile struct {
	Filepath string
	Binary   []byte
	Kind     ot.FontFileKind
}

// ReadFontFile reads a font file into memory and classifies it. It does
// not parse the font; callers hand Binary to ot.Parse or, for font
// collections, to ot.ParseCollection, depending on Kind.
func ReadFontFile(path string) (*FontFile, error) {
	bytez, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	kind, err := ot.ParseFontFile(bytez)
	if err != nil {
		return nil, err
	}
	return &FontFile{Filepath: path, Binary: bytez, Kind: kind}, nil
}
