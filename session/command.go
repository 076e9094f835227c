package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/memplace/placement"
)

// Verb names the action of a script command.
type Verb string

// The verbs understood by a Runner.
const (
	VerbAlloc   Verb = "alloc"
	VerbRelease Verb = "release"
	VerbShow    Verb = "show"
	VerbStats   Verb = "stats"
	VerbRegions Verb = "regions"
	VerbPolicy  Verb = "policy"
	VerbQuit    Verb = "quit"
)

var verbAliases = map[string]Verb{
	"alloc":    VerbAlloc,
	"allocate": VerbAlloc,
	"a":        VerbAlloc,
	"release":  VerbRelease,
	"free":     VerbRelease,
	"r":        VerbRelease,
	"show":     VerbShow,
	"draw":     VerbShow,
	"s":        VerbShow,
	"stats":    VerbStats,
	"regions":  VerbRegions,
	"policy":   VerbPolicy,
	"quit":     VerbQuit,
	"exit":     VerbQuit,
	"q":        VerbQuit,
}

// A Command is one parsed script line.
type Command struct {
	Line   int
	Verb   Verb
	Owner  string
	Length int
	Policy placement.Policy
}

// A ParseError reports a script line that could not be understood.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// ParseCommand parses one script line. Blank lines and lines starting with
// '#' yield ok == false and no error.
func ParseCommand(lineNo int, text string) (cmd Command, ok bool, err error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return Command{}, false, nil
	}

	fail := func(msg string) (Command, bool, error) {
		return Command{}, false, &ParseError{Line: lineNo, Text: text, Msg: msg}
	}

	verb, known := verbAliases[strings.ToLower(fields[0])]
	if !known {
		return fail("unknown command")
	}

	cmd = Command{Line: lineNo, Verb: verb}
	args := fields[1:]

	switch verb {
	case VerbAlloc:
		if len(args) != 2 {
			return fail("usage: alloc <owner> <size>")
		}

		length, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			return fail("size must be an integer")
		}

		cmd.Owner = args[0]
		cmd.Length = length
	case VerbRelease:
		if len(args) != 1 {
			return fail("usage: release <owner>")
		}

		cmd.Owner = args[0]
	case VerbPolicy:
		if len(args) != 1 {
			return fail("usage: policy <name>")
		}

		p, parseErr := placement.ParsePolicy(args[0])
		if parseErr != nil {
			return fail("unknown policy")
		}

		cmd.Policy = p
	default:
		if len(args) != 0 {
			return fail(fmt.Sprintf("%s takes no arguments", verb))
		}
	}

	return cmd, true, nil
}
