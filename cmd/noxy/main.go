package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	noxy "noxy"
)

const (
	appName     = "noxy"
	historyFile = ".noxy_history"
	promptMain  = "noxy> "
	promptCont  = "...   "
)

var banner = "noxy REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit."

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	debug := flag.Bool("debug", false, "dump tokens and the number of top-level AST statements to stderr before evaluating (the AST itself is not printed)")
	noTypecheck := flag.Bool("no-typecheck", false, "skip static analysis; register declarations and evaluate directly")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		os.Exit(runRepl(*noTypecheck))
	}
	os.Exit(runFile(args[0], *debug, *noTypecheck))
}

func runFile(path string, debug, noTypecheck bool) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return 1
	}

	if debug {
		if derr := dumpDebug(path, string(src)); derr != nil {
			fmt.Fprintln(os.Stderr, red(noxy.Report(derr)))
			return 1
		}
	}

	stdout := func(s string) { fmt.Print(s) }
	if err := noxy.RunSource(path, string(src), stdout, !noTypecheck); err != nil {
		fmt.Fprintln(os.Stderr, red(noxy.Report(err)))
		return 1
	}
	return 0
}

func dumpDebug(file, src string) error {
	toks, err := noxy.NewLexer(file, src).Tokens()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "-- tokens --")
	for _, t := range toks {
		fmt.Fprintf(os.Stderr, "%-6s %-12s %s\n", t.Pos, t.Kind, t.Lexeme)
	}
	prog, err := noxy.ParseFile(file, src)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "-- AST: %d top-level statement(s) --\n", len(prog.Stmts))
	return nil
}

func runRepl(noTypecheck bool) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	stdout := func(s string) { fmt.Print(s) }
	loader := noxy.NewLoader(".", stdout)
	ip := noxy.NewInterpreter("<repl>", loader, stdout)

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			break
		}

		prog, err := noxy.ParseFile("<repl>", code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(noxy.Report(err)))
			continue
		}

		if noTypecheck {
			err = ip.RegisterOnly(prog)
		} else {
			err = ip.Analyze(prog)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(noxy.Report(err)))
			continue
		}
		if err := ip.Evaluate(prog); err != nil {
			fmt.Fprintln(os.Stderr, red(noxy.Report(err)))
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readByParseProbe accumulates lines until they parse as a complete
// program or the parser reports an error that isn't just running out of
// input mid-construct.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == ":quit" {
			return src, true
		}
		_, perr := noxy.ParseFile("<repl>", src)
		if perr == nil {
			return src, true
		}
		if isIncomplete(perr) {
			continue
		}
		return src, true
	}
}

// isIncomplete reports whether perr looks like the input simply ran out
// before a construct closed (an unterminated string/f-string, or the
// parser hitting end-of-input where it expected more) — in which case the
// REPL should keep reading instead of reporting the error.
func isIncomplete(err error) bool {
	switch e := err.(type) {
	case *noxy.ParseError:
		return e.Found == "end of input"
	case *noxy.LexError:
		return strings.Contains(e.Msg, "unterminated")
	}
	return false
}
