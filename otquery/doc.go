/*
Package otquery answers everyday questions about fonts.

Package ot parses OpenType and TrueType fonts into typed tables, staying
deliberately close to the binary layout. otquery sits on top of it and
bundles the table-hopping needed for common questions into single calls:
what flavour of font is this, what is it called, which glyph renders a
given code-point and how much space does it take.

All functions are read-only and tolerant: asking a question about a font
that lacks the relevant table yields a zero answer, never a panic. Results
are plain values, decoupled from the font's byte buffer.

# Status

Work in progress.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'otf.query'
func tracer() tracing.Trace {
	return tracing.Select("otf.query")
}
