/*
Package ot dissects OpenType and TrueType font binaries (sfnt containers).
Intended audience for this package are:

▪︎ tools that inspect, validate or repair font files

▪︎ text shapers and rasterizers that need typed access to font tables

▪︎ any application needing the internal structure of an OpenType font file
available, possibly extending the methods of package `ot` by handling
additional font tables

Package `ot` locates a font's table directory, checks each table's bounds and
checksum, and decodes the versioned sub-structures (header metrics, profile
limits, naming strings, OS/2 metrics, PostScript information and the
character-to-glyph mapping subtables) into typed, queryable views. It does
not interpret glyph outlines and it does not do text shaping; concerns like
that are homed in sister packages. From this point of view, `ot` is a
low-level package.

Decoding is zero-copy: tables are views into the font's byte buffer, and
clients must keep that buffer alive and unmodified while any view derived
from it is in use. Every operation is a pure function over the buffer, so
decoding different tables concurrently is safe without synchronization.

Fonts in the wild are often slightly broken. Package `ot` follows a
graceful-degradation policy: tables it cannot interpret stay accessible as
opaque byte ranges, corrupt non-essential tables produce collected warnings
instead of aborting the parse, and in a font collection a defective member
does not take down its siblings. Structural failures carry the table tag and
the byte offset that triggered them.

# Status

Work in progress. Handling fonts is fiddly and font files are a vast desert
of bytes without sign posts. Font collections are supported; variable-font
tables are exposed as opaque ranges only.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'font.otf'
func tracer() tracing.Trace {
	return tracing.Select("font.otf")
}
