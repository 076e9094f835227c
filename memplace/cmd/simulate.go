package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/sarchlab/memplace/config"
	"github.com/sarchlab/memplace/datarecording"
	"github.com/sarchlab/memplace/instrumentation/hooking"
	"github.com/sarchlab/memplace/instrumentation/tracing"
	"github.com/sarchlab/memplace/placement"
	"github.com/sarchlab/memplace/session"
)

func newSimulateCmd(root *rootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "simulate [script]",
		Short: "Run a placement script.",
		Long: `simulate reads placement commands from the script file, or from ` +
			`the standard input when no file or "-" is given, and prints the ` +
			`outcome of every command followed by the memory snapshot.

Commands:
  alloc <process> <size>   place a region with the current policy
  release <process>        free every region of a process
  policy <name>            switch to first, best, worst or circular
  show                     print the memory snapshot
  stats                    print occupancy and fragmentation
  regions                  list the live regions
  quit                     stop reading`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}

			in, closeIn, err := openScript(cmd, args)
			if err != nil {
				return err
			}
			defer closeIn()

			return runSimulate(cmd, cfg, in, verbose)
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Log every placement and release to stderr")

	return cmd
}

func openScript(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}

	return f, func() { f.Close() }, nil
}

// A simulation is an address space with the hooks requested by the settings
// attached.
type simulation struct {
	space    *placement.AddressSpace
	session  *session.Session
	counter  *tracing.CountTracer
	recorder datarecording.DataRecorder
}

func buildSimulation(cfg config.Config, logOut io.Writer) *simulation {
	sim := &simulation{
		space: placement.MakeBuilder().
			WithTotalSize(cfg.TotalSize).
			Build("Memory"),
		counter: tracing.NewCountTracer(),
	}

	sim.space.AcceptHook(tracing.NewTracerHook(sim.counter, nil))

	if logOut != nil {
		sim.space.AcceptHook(hooking.NewLogHook(log.New(logOut, "", 0), nil))
	}

	if cfg.Record {
		sim.recorder = datarecording.NewDataRecorder(cfg.RecordPath)
		sim.space.AcceptHook(tracing.NewTracerHook(
			tracing.NewDBTracer(sim.recorder), nil))
	}

	sim.session = session.New(sim.space, cfg.Policy)

	return sim
}

// Close flushes and closes the recording, if any.
func (s *simulation) Close() error {
	if s.recorder == nil {
		return nil
	}

	return datarecording.CloseAll(s.recorder)
}

func runSimulate(
	cmd *cobra.Command,
	cfg config.Config,
	in io.Reader,
	verbose bool,
) (err error) {
	var logOut io.Writer
	if verbose {
		logOut = cmd.ErrOrStderr()
	}

	sim := buildSimulation(cfg, logOut)
	defer func() { err = multierr.Append(err, sim.Close()) }()

	out := cmd.OutOrStdout()

	runner := session.NewRunner(sim.session, out)
	if cfg.Color {
		runner.WithRenderFunc(colorRenderFunc())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	err = runner.Run(ctx, in)

	printSummary(out, sim, runner.NumErrors())

	return err
}

func printSummary(out io.Writer, sim *simulation, numErrors int) {
	var placed, failed uint64
	for _, p := range placement.Policies() {
		placed += sim.counter.Placed(p.String())
		failed += sim.counter.Failed(p.String())
	}

	st := sim.session.Stats()

	fmt.Fprintf(out,
		"Summary: %d placed, %d failed, %d released, %d invalid lines; "+
			"%d of %d units used\n",
		placed, failed, sim.counter.Released(), numErrors,
		st.Used, st.TotalSize)
}
