package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "table", "tables", "directory":
		pterm.Info.Println("Table directory")
		pterm.Println(`
	An OpenType font file starts with an offset table, followed by one
	directory record per table:
	+--------------+       +----------+
	| sfnt version |       | tag      |
	| numTables    |  -->  | checksum |
	| searchRange  |       | offset   |
	| ...          |       | length   |
	+--------------+       +----------+
	'tables' lists all directory records with their checksum status.
	'table:<tag>' shows a single record, e.g. table:head or table:os2.
	`)
	case "cmap", "lookup", "codepoint":
		pterm.Info.Println("Character to glyph mapping")
		pterm.Println(`
	Table 'cmap' holds one or more encoding subtables that map
	code-points to glyph IDs:
	+----------+-----------+        +-----------------------+
	| platform | encoding  |  -->   | subtable (format 0,4, |
	+----------+-----------+        |  6,12, ...)           |
	                                +-----------------------+
	'cmap' lists the encoding records of the font.
	'cmap:<char>' looks up a glyph, e.g. cmap:A, cmap:U+0041, cmap:65.
	A single digit is read as a literal character, use U+XXXX otherwise.
	`)
	case "glyph", "glyphs", "kern", "metrics":
		pterm.Info.Println("Glyph metrics")
		pterm.Println(`
	Horizontal metrics of a glyph, in font units:
	          +--------+
	   lsb    | glyph  |   rsb
	|<----->|x| bbox   |x|<--->|
	          +--------+
	|<------- advance ------->|
	'glyph:<g>' prints metrics of a glyph, e.g. glyph:36 or glyph:A.
	'kern:<l>:<r>' prints the kerning of a glyph pair from table 'kern'.
	A decimal argument is a glyph ID, anything else goes through the cmap.
	`)
	case "head", "maxp", "os2", "post", "name", "dump", "dumps":
		pterm.Info.Println("Table dumps")
		pterm.Println(`
	Commands head, maxp, os2, post and name print the decoded fields of
	the respective table. Two of them accept arguments:
	'post:36'     name of glyph 36         'post:Aring'  glyph ID by name
	'name:records' raw name record inventory
	`)
	case "font", "fonts", "collection", "ttc":
		pterm.Info.Println("Font collections")
		pterm.Println(`
	A TrueType collection (*.ttc) bundles several fonts which share
	tables:
	+------------+
	| ttcf tag   |       font 1: offset table
	| numFonts   |  -->  font 2: offset table
	| offsets[]  |       ...
	+------------+
	'fonts' lists the fonts of the loaded collection.
	'font:<slot>' switches to a font, e.g. font:0.
	`)
	case "trace", "errors":
		pterm.Info.Println("Diagnostics")
		pterm.Println(`
	'errors' reports all findings collected while parsing the font.
	'trace:<level>' sets the trace level, one of Debug, Info, Error.
	`)
	default:
		pterm.Info.Println("Commands")
		renderTable([][]string{
			{"Command", "Description"},
			{"info", "report on the current font"},
			{"tables", "list the table directory with checksums"},
			{"table:<tag>", "directory record of a single table"},
			{"head, maxp, os2, post, name", "dump the fields of a table"},
			{"cmap[:<char>]", "encoding records, or glyph lookup"},
			{"glyph:<g>", "metrics of a glyph"},
			{"kern:<l>:<r>", "kerning of a glyph pair"},
			{"fonts, font:<slot>", "list or switch collection fonts"},
			{"errors", "findings collected during parsing"},
			{"trace:<level>", "set trace level to Debug, Info or Error"},
			{"help:<topic>", "details, e.g. help:cmap or help:glyph"},
			{"quit", "leave the inspector (or <ctrl>D)"},
		})
	}
}
