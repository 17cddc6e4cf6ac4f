// Package repl is the interactive shell over a process database, with
// HTTP handlers exposing the same commands.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic"
	"github.com/drpcorg/dbstatic/store"
	"github.com/drpcorg/dbstatic/utils"
)

// REPL per se.
type REPL struct {
	Guard *dbstatic.Guard
	// Store is optional; save and restore need it.
	Store *store.Store
	Out   io.Writer
	Log   utils.Logger

	rl *readline.Instance
}

func New(g *dbstatic.Guard, s *store.Store) *REPL {
	return &REPL{
		Guard: g,
		Store: s,
		Out:   os.Stdout,
		Log:   g.Base().Logger(),
	}
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),

	readline.PcItem("load"),
	readline.PcItem("path",
		readline.PcItem("set"),
		readline.PcItem("add"),
	),
	readline.PcItem("write"),

	readline.PcItem("dbl"),
	readline.PcItem("dbpr"),
	readline.PcItem("dbgf"),
	readline.PcItem("dbpf"),
	readline.PcItem("verify"),

	readline.PcItem("create"),
	readline.PcItem("delete"),
	readline.PcItem("rename"),
	readline.PcItem("copy"),

	readline.PcItem("dump",
		readline.PcItem("type"),
		readline.PcItem("fld"),
		readline.PcItem("menu"),
		readline.PcItem("device"),
		readline.PcItem("driver"),
		readline.PcItem("breaktable"),
		readline.PcItem("path"),
		readline.PcItem("pvd"),
		readline.PcItem("report"),
	),

	readline.PcItem("save"),
	readline.PcItem("restore"),

	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func (repl *REPL) Open(historyFile string) (err error) {
	repl.rl, err = readline.NewEx(&readline.Config{
		Prompt:          "dbs> ",
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return
	}
	repl.rl.CaptureExitSignal()
	return
}

func (repl *REPL) Close() error {
	if repl.rl != nil {
		_ = repl.rl.Close()
		repl.rl = nil
	}
	return nil
}

// REPL reads and runs one line. io.EOF means the session is over.
func (repl *REPL) REPL() error {
	line, err := repl.rl.Readline()
	if err == readline.ErrInterrupt && len(line) != 0 {
		return nil
	}
	if err != nil {
		return err
	}
	return repl.Execute(context.Background(), line)
}

// Run loops until exit or end of input, printing command errors.
func (repl *REPL) Run() error {
	for {
		err := repl.REPL()
		switch {
		case err == io.EOF || err == readline.ErrInterrupt:
			return nil
		case err != nil:
			_, _ = fmt.Fprintf(repl.Out, "%s\n", err.Error())
		}
	}
}

// Fields splits a command line into words; double quotes group words and
// are dropped.
func Fields(line string) (words []string) {
	var cur strings.Builder
	quoted, inWord := false, false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inWord = true
		case !quoted && (r == ' ' || r == '\t' || r == '\r' || r == '\n'):
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		words = append(words, cur.String())
	}
	return
}

var ErrUnknownCommand = errors.New("command unknown")

// Execute runs one command line against the guarded base.
func (repl *REPL) Execute(ctx context.Context, line string) (err error) {
	args := Fields(line)
	if len(args) == 0 {
		return nil
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	// ----- definitions -----
	case "load":
		err = repl.CommandLoad(args)
	case "path":
		err = repl.CommandPath(args)
	case "write":
		err = repl.CommandWrite(args)
	// ----- records -----
	case "dbl":
		err = repl.CommandList(args)
	case "dbpr":
		err = repl.CommandPrint(args)
	case "dbgf":
		err = repl.CommandGet(args)
	case "dbpf":
		err = repl.CommandPut(args)
	case "verify":
		err = repl.CommandVerify(args)
	case "create":
		err = repl.CommandCreate(args)
	case "delete":
		err = repl.CommandDelete(args)
	case "rename":
		err = repl.CommandRename(args)
	case "copy":
		err = repl.CommandCopy(args)
	// ----- debug -----
	case "dump":
		err = repl.CommandDump(args)
	// ----- snapshots -----
	case "save":
		err = repl.CommandSave(ctx, args)
	case "restore":
		err = repl.CommandRestore(ctx, args)
	case "help":
		repl.CommandHelp()
	case "exit", "quit":
		err = io.EOF
	default:
		err = errors.Wrap(ErrUnknownCommand, cmd)
	}
	return
}
