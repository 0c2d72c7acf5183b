/*
Package otf is for typeface and font handling.

There is a certain confusion with the nomenclature of typesetting. We will
stick to the following definitions:

▪︎ A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

▪︎ A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

▪︎ A "typecase" is a scaled font, i.e. a font in a certain size for
a certain script and language. The name is reminiscend on the wooden
boxes of typesetters in the era of metal type.
An example is "Helvetica regular 11pt, Latin, en_US".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

# Status

Font collections (*.ttc), e.g. /System/Library/Fonts/Helvetica.ttc on
Mac OS, are handled by ot.ParseCollection; the loaders in this package
read single-font files.

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otf

import (
	"os"

	"github.com/npillmayer/otf/ot"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'otf'
func tracer() tracing.Trace {
	return tracing.Select("otf")
}

// ScalableFont is an internal representation of an outline-font of type
// TTF or OTF. It couples the raw font bytes with two parsed views: the
// dissected table structure of package ot, and the SFNT view of
// golang.org/x/image/font/sfnt as a reference handle.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path
	Binary   []byte     // raw data
	Font     *ot.Font   // dissected table structure
	SFNT     *sfnt.Font // the font's container
}

// LoadFont loads an OpenType font (TTF or OTF) from a file.
func LoadFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseFont parses an OpenType font (TTF or OTF) from memory. The byte
// data must not change while the returned font is in use.
//
// Defects local to a single table do not fail the parse; they are
// collected into Font.Errors and Font.Warnings. For font collection
// files ('ttcf'), use ot.ParseCollection on the raw bytes instead.
func ParseFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	if f.Font, err = ot.Parse(f.Binary); err != nil {
		return nil, err
	}
	if f.SFNT, err = sfnt.Parse(f.Binary); err != nil {
		return nil, err
	}
	if f.Fontname, err = f.SFNT.Name(nil, sfnt.NameIDFull); err != nil {
		tracer().Infof("font has no full-name entry")
		return f, nil
	}
	tracer().Debugf("loaded and parsed SFNT %s", f.Fontname)
	return f, nil
}
