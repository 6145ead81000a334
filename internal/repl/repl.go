// Package repl implements the interactive, line-based front end over
// the statement grammar: parameter/definition/check/evaluate/context/
// quit/silently, plus bare-expression echo.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/alexshamov/TypeTheory/internal/kernel"
	"github.com/alexshamov/TypeTheory/internal/kernelerr"
	"github.com/alexshamov/TypeTheory/internal/lexer"
	"github.com/alexshamov/TypeTheory/internal/parser"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

const historyFileName = ".ttk_history"

// REPL drives one kernel instance across an interactive session.
type REPL struct {
	k         *kernel.Kernel
	version   string
	buildTime string
}

// New creates a REPL over a fresh kernel using cfg.
func New(cfg kernel.Config) *REPL {
	return NewWithVersion(cfg, "", "")
}

// NewWithVersion creates a REPL, stamping the welcome banner with
// version/build-time info from the caller (normally cmd/ttk's linker
// flags).
func NewWithVersion(cfg kernel.Config, version, buildTime string) *REPL {
	if version == "" {
		version = "dev"
	}
	if buildTime == "" {
		buildTime = "unknown"
	}
	return &REPL{k: kernel.New(cfg), version: version, buildTime: buildTime}
}

// Kernel exposes the REPL's kernel, mainly so a driver can preload a
// prelude before calling Start.
func (r *REPL) Kernel() *kernel.Kernel { return r.k }

// Start runs the read-eval-print loop until EOF, a quit statement, or
// an unrecoverable input error.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), historyFileName)
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(prefix string) (c []string) {
		for _, kw := range []string{"parameter", "definition", "check", "evaluate", "context", "quit", "silently", "type["} {
			if strings.HasPrefix(kw, prefix) {
				c = append(c, kw)
			}
		}
		return
	})

	fmt.Fprintf(out, "%s %s\n", bold("ttk"), bold(r.version))
	if r.buildTime != "unknown" {
		fmt.Fprintln(out, dim("Built: "+r.buildTime))
	}
	fmt.Fprintln(out, dim("Type a statement (parameter/definition/check/evaluate/context/quit/silently), or an expression."))
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt("tt> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			break
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		quit, err := r.evalLine(input, out)
		if err != nil {
			printError(out, err)
			continue
		}
		if quit {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// evalLine parses and executes every statement on a single line of
// input, printing each result. It reports whether a quit statement was
// seen.
func (r *REPL) evalLine(input string, out io.Writer) (bool, error) {
	p := parser.New(lexer.New(lexer.Normalize([]byte(input)), "<repl>"), r.k)
	for {
		stat, err := p.ParseStatement()
		if err != nil {
			return false, err
		}
		if stat == nil {
			return false, nil
		}
		res, err := stat.Execute(r.k)
		if err != nil {
			return false, err
		}
		if res.Quit {
			return true, nil
		}
		if res.Message != "" {
			fmt.Fprintln(out, yellow(res.Message))
		}
	}
}

// RunFile parses and executes every statement in src, writing results
// to out and stopping early on a quit statement. It is used both by
// cmd/ttk's `run` subcommand and to preload a prelude before Start.
func (r *REPL) RunFile(src []byte, filename string, out io.Writer) error {
	p := parser.New(lexer.New(lexer.Normalize(src), filename), r.k)
	for {
		stat, err := p.ParseStatement()
		if err != nil {
			return err
		}
		if stat == nil {
			return nil
		}
		res, err := stat.Execute(r.k)
		if err != nil {
			return err
		}
		if res.Quit {
			return nil
		}
		if res.Message != "" && out != nil {
			fmt.Fprintln(out, res.Message)
		}
	}
}

func printError(out io.Writer, err error) {
	if rep, ok := kernelerr.AsReport(err); ok {
		fmt.Fprintf(out, "%s [%s]: %s\n", red("Error"), rep.Kind, rep.Message)
		return
	}
	fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
}
