package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/otf"
	"github.com/npillmayer/otf/internal/fontload"
	"github.com/npillmayer/otf/ot"
	"github.com/npillmayer/otf/otquery"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'otf.cli'
func tracer() tracing.Trace {
	return tracing.Select("otf.cli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"trace.otf.cli":   "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font file to inspect")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError)    // will set the correct level later
	pterm.Info.Println("Welcome to OpenType CLI") // colored welcome message
	//
	// set up REPL
	repl, err := readline.New("ot > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font to use
	if err := intp.loadFont(*fontname); err != nil { // font name provided by flag
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	if err := setTraceLevel(*tlevel); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func setTraceLevel(tlevel string) error {
	switch tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		return fmt.Errorf("invalid trace level: %s", tlevel)
	}
	return nil
}

// Intp is our interpreter object
type Intp struct {
	font     *ot.Font
	fontname string
	coll     *ot.Collection
	slot     int
	repl     *readline.Instance
}

func (intp *Intp) String() string {
	if intp == nil || intp.font == nil {
		return "()"
	}
	if intp.coll != nil && intp.coll.Header != nil {
		return fmt.Sprintf("( font=%s, collection slot %d of %d )", intp.fontname,
			intp.slot, intp.coll.NumFonts())
	}
	return fmt.Sprintf("( font=%s )", intp.fontname)
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code   int
	arg    string
	format string
}

type Command struct {
	count int
	op    [32]Op
}

const NOOP = -1
const (
	// op-code QUIT will not have arguments
	QUIT int = iota
	// op-codes below may have arguments
	HELP
	INFO
	TABLES
	TABLE
	HEAD
	MAXP
	OS2
	POST
	NAME
	CMAP
	GLYPH
	KERN
	FONTS
	FONT
	ERRORS
	TRACE
)

var opMap = map[string]int{
	"quit":   QUIT,
	"help":   HELP,
	"info":   INFO,
	"tables": TABLES,
	"table":  TABLE,
	"head":   HEAD,
	"maxp":   MAXP,
	"os2":    OS2,
	"post":   POST,
	"name":   NAME,
	"cmap":   CMAP,
	"glyph":  GLYPH,
	"kern":   KERN,
	"fonts":  FONTS,
	"font":   FONT,
	"errors": ERRORS,
	"trace":  TRACE,
}

var opNames = []string{
	"quit",
	"help",
	"info",
	"tables",
	"table",
	"head",
	"maxp",
	"os2",
	"post",
	"name",
	"cmap",
	"glyph",
	"kern",
	"fonts",
	"font",
	"errors",
	"trace",
}

var command = Command{}

func resetCommand() {
	command.count = 0
	for i := range command.op {
		command.op[i].code = NOOP
		command.op[i].arg = ""
		command.op[i].format = ""
	}
}

func (intp *Intp) parseCommand(line string) (*Command, error) {
	resetCommand()
	steps := strings.Split(line, " ")
	if len(steps) > len(command.op) {
		return nil, fmt.Errorf("command has more than %d steps", len(command.op))
	}
	command.count = len(steps)
	for i, step := range steps {
		c := strings.Split(step, ":") // e.g.  "cmap:U+0041" or "kern:38:56" or "help:glyph"
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		command.op[i].arg = ""
		if command.op[i].code <= QUIT {
			return &command, nil
		}
		tracer().Debugf("parsed command: %v", c)
		command.op[i].arg = getOptArg(c, 1)
		command.op[i].format = getOptArg(c, 2)
		if command.op[i].arg == "" {
			tracer().Debugf("%s", opNames[command.op[i].code])
		} else {
			tracer().Debugf("%s: looking for '%s'", opNames[command.op[i].code], command.op[i].arg)
		}
	}
	return &command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:   quitOp,
	HELP:   helpOp,
	INFO:   infoOp,
	TABLES: tablesOp,
	TABLE:  tableOp,
	HEAD:   headOp,
	MAXP:   maxpOp,
	OS2:    os2Op,
	POST:   postOp,
	NAME:   nameOp,
	CMAP:   cmapOp,
	GLYPH:  glyphOp,
	KERN:   kernOp,
	FONTS:  fontsOp,
	FONT:   fontOp,
	ERRORS: errorsOp,
	TRACE:  traceOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op)
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

func traceOp(intp *Intp, op *Op) (error, bool) {
	arg, ok := op.hasArg()
	if !ok {
		return errors.New("missing trace level, e.g. trace:Debug"), false
	}
	if err := setTraceLevel(arg); err != nil {
		return err, false
	}
	pterm.Info.Printf("trace level is %s\n", arg)
	return nil, false
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string) error {
	if fontname == "" {
		return errors.New("no font given, start with flag -font")
	}
	ff, err := fontload.ReadFontFile(fontname)
	if err != nil {
		// fall back to the font files shipped with the repository
		ff, err = fontload.ReadFontFile(filepath.Join("..", "testdata", fontname))
	}
	if err != nil {
		tracer().Errorf("cannot load font %s: %s", fontname, err)
		return err
	}
	tracer().Infof("font file is of type %s", ff.Kind)
	if ff.Kind == ot.FileKindCollection {
		coll, err := ot.ParseCollection(ff.Binary)
		if err != nil {
			return err
		}
		intp.coll = coll
		if err := intp.selectFont(0); err != nil {
			return err
		}
	} else {
		f, err := otf.ParseFont(ff.Binary)
		if err != nil {
			return err
		}
		intp.font = f.Font
		intp.fontname = f.Fontname
	}
	if intp.fontname == "" {
		intp.fontname = filepath.Base(ff.Filepath)
	}
	pterm.Printf("font tables: %v\n", intp.font.TableTags())
	return nil
}

// selectFont makes slot the current font of a collection.
func (intp *Intp) selectFont(slot int) error {
	f, err := intp.coll.Font(slot)
	if err != nil {
		return err
	}
	intp.font = f
	intp.slot = slot
	names := otquery.NameInfo(f)
	if intp.fontname = names["fullname"]; intp.fontname == "" {
		intp.fontname = names["family"]
	}
	tracer().Infof("selected font %d of collection", slot)
	return nil
}

func fontsOp(intp *Intp, op *Op) (error, bool) {
	if intp.coll == nil || intp.coll.Header == nil {
		pterm.Info.Println("not a font collection, a single font is loaded")
		return nil, false
	}
	rows := [][]string{{"Slot", "Name", "Tables"}}
	for i := 0; i < intp.coll.NumFonts(); i++ {
		f, err := intp.coll.Font(i)
		if err != nil {
			rows = append(rows, []string{strconv.Itoa(i), "(unusable: " + err.Error() + ")", ""})
			continue
		}
		names := otquery.NameInfo(f)
		rows = append(rows, []string{
			strconv.Itoa(i),
			names["fullname"],
			strconv.Itoa(len(f.TableTags())),
		})
	}
	return renderTable(rows), false
}

func fontOp(intp *Intp, op *Op) (error, bool) {
	arg, ok := op.hasArg()
	if !ok {
		return errors.New("missing collection slot, e.g. font:0"), false
	}
	if intp.coll == nil || intp.coll.Header == nil {
		return errors.New("not a font collection, cannot switch fonts"), false
	}
	slot, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("cannot read collection slot %q", arg), false
	}
	if err := intp.selectFont(slot); err != nil {
		return err, false
	}
	pterm.Printf("font tables: %v\n", intp.font.TableTags())
	return nil, false
}

// ----------------------------------------------------------------------

var ERR_NO_FONT = errors.New("no font loaded")

func (intp *Intp) checkFont() error {
	if intp.font == nil {
		return ERR_NO_FONT
	}
	return nil
}

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) noArg() bool {
	if op.arg == "" {
		return true
	}
	return false
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
