// errors.go
//
// The error taxonomy from spec.md §7: each category is a distinct Go type
// carrying a source Pos and a message. Report renders the
// "<file>:<line>:<col>: <kind>: <message>" line spec.md requires on stderr;
// Snippet adds an optional caret-pointer excerpt of the source.
package noxy

import (
	"fmt"
	"strings"
)

// TypeError is raised by the static analyzer (spec.md §4.3/§7).
type TypeError struct {
	Pos Pos
	Msg string
}

func (e *TypeError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// ModuleError covers module-not-found, circular import, an unreadable
// module, a directory module used where a file module is needed, and a
// selected name the module does not export (spec.md §4.5/§7).
type ModuleError struct {
	Pos Pos
	Msg string
}

func (e *ModuleError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// RuntimeError is raised during evaluation (spec.md §4.4/§7): division by
// zero, index out of bounds, missing map key, null-reference access, a
// malformed ord argument, pop on an empty array, or stack overflow.
type RuntimeError struct {
	Pos Pos
	Msg string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

func rtErr(pos Pos, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func typeErr(pos Pos, format string, args ...interface{}) *TypeError {
	return &TypeError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// kindOf labels an error for the "<file>:<line>:<col>: <kind>: <message>"
// line spec.md §7 mandates.
func kindOf(err error) string {
	switch err.(type) {
	case *LexError:
		return "LexError"
	case *ParseError:
		return "ParseError"
	case *TypeError:
		return "TypeError"
	case *ModuleError:
		return "ModuleError"
	case *RuntimeError:
		return "RuntimeError"
	default:
		return "Error"
	}
}

func posOf(err error) (Pos, bool) {
	switch e := err.(type) {
	case *LexError:
		return e.Pos, true
	case *ParseError:
		return e.Pos, true
	case *TypeError:
		return e.Pos, true
	case *ModuleError:
		return e.Pos, true
	case *RuntimeError:
		return e.Pos, true
	default:
		return Pos{}, false
	}
}

// Report renders err as the single-line diagnostic spec.md §7 requires.
func Report(err error) string {
	if pos, ok := posOf(err); ok {
		return fmt.Sprintf("%s: %s: %s", pos, kindOf(err), errMessage(err))
	}
	return fmt.Sprintf("%s: %s", kindOf(err), err.Error())
}

func errMessage(err error) string {
	switch e := err.(type) {
	case *LexError:
		return e.Msg
	case *ParseError:
		s := e.Error()
		if i := strings.Index(s, ": "); i >= 0 {
			return s[i+2:]
		}
		return s
	case *TypeError:
		return e.Msg
	case *ModuleError:
		return e.Msg
	case *RuntimeError:
		return e.Msg
	default:
		return err.Error()
	}
}

// Snippet renders a caret-annotated source excerpt around err's position.
// The cmd/noxy driver does not call it; it prints Report lines only.
// Non-positional errors render as a bare Report line.
func Snippet(err error, src string) string {
	pos, ok := posOf(err)
	if !ok {
		return Report(err)
	}
	lines := strings.Split(src, "\n")
	line := pos.Line
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	col := pos.Col
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", Report(err))
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
