package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

// A RenderFunc draws the cells of an address space.
type RenderFunc func(cells []string) string

// A Runner executes script commands against a session and writes a report
// of every step.
type Runner struct {
	session *Session
	out     io.Writer
	render  RenderFunc

	numErrors int
}

// NewRunner creates a runner that reports into out.
func NewRunner(s *Session, out io.Writer) *Runner {
	return &Runner{
		session: s,
		out:     out,
	}
}

// WithRenderFunc replaces the plain snapshot with a custom drawing.
func (r *Runner) WithRenderFunc(f RenderFunc) *Runner {
	r.render = f
	return r
}

// NumErrors returns the number of lines that could not be executed.
func (r *Runner) NumErrors() int {
	return r.numErrors
}

// Run executes every command read from in until the input ends, a quit
// command is read or ctx is done. Bad lines are reported and skipped.
func (r *Runner) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		lineNo++

		cmd, ok, err := ParseCommand(lineNo, scanner.Text())
		if err != nil {
			r.reportError(err)
			continue
		}

		if !ok {
			continue
		}

		if cmd.Verb == VerbQuit {
			return nil
		}

		if err := r.Execute(cmd); err != nil {
			r.reportError(err)
		}
	}

	return scanner.Err()
}

// Execute applies one command to the session.
func (r *Runner) Execute(cmd Command) error {
	switch cmd.Verb {
	case VerbAlloc:
		outcome, err := r.session.Allocate(cmd.Owner, cmd.Length)
		if err != nil {
			return fmt.Errorf("line %d: %w", cmd.Line, err)
		}

		r.println(outcome.Report())
		r.show()
	case VerbRelease:
		r.session.Release(cmd.Owner)
		r.println("Released process " + cmd.Owner)
		r.show()
	case VerbShow:
		r.show()
	case VerbStats:
		r.stats()
	case VerbRegions:
		r.regions()
	case VerbPolicy:
		if err := r.session.SetPolicy(cmd.Policy); err != nil {
			return err
		}

		r.println("Policy set to " + cmd.Policy.String())
	case VerbQuit:
	default:
		return fmt.Errorf("line %d: unsupported command %q", cmd.Line, cmd.Verb)
	}

	return nil
}

func (r *Runner) show() {
	r.println("Memory state:")

	if r.render == nil {
		r.println(r.session.Render())
		return
	}

	r.println(r.render(r.session.Cells()))
}

func (r *Runner) stats() {
	st := r.session.Stats()

	fmt.Fprintf(r.out,
		"Total %d, used %d, free %d, regions %d, holes %d, "+
			"largest hole %d, external fragmentation %.2f\n",
		st.TotalSize, st.Used, st.Free, st.NumRegions, st.NumHoles,
		st.LargestHole, st.ExternalFragmentation)
}

func (r *Runner) regions() {
	for _, region := range r.session.Regions() {
		fmt.Fprintf(r.out, "%s\t%d\t%d\n",
			region.Owner, region.Start, region.Length)
	}
}

func (r *Runner) reportError(err error) {
	r.numErrors++

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		fmt.Fprintf(r.out, "Invalid option: %v\n", err)
		return
	}

	fmt.Fprintf(r.out, "Error: %v\n", err)
}

func (r *Runner) println(s string) {
	fmt.Fprintln(r.out, s)
}
