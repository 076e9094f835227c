package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/memplace/config"
	"github.com/sarchlab/memplace/datarecording"
	"github.com/sarchlab/memplace/monitoring"
	"github.com/sarchlab/memplace/session"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var script string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an address space through the monitoring page.",
		Long: `serve keeps an address space alive behind an HTTP server. ` +
			`Processes are allocated and released from the web page or the ` +
			`/api endpoints until the server is interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}

			return runServe(cmd, cfg, script)
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().Int("port", 0,
		"Port of the monitoring server; a random port is used if not set")
	cmd.Flags().Bool("open", false, "Open the monitoring page in a browser")
	cmd.Flags().StringVar(&script, "script", "",
		"Run this script before serving")

	return cmd
}

func runServe(cmd *cobra.Command, cfg config.Config, script string) (err error) {
	if cfg.Record && cfg.RecordPath == "" {
		cfg.RecordPath = "memplace_serve_" + xid.New().String()
	}

	sim := buildSimulation(cfg, nil)
	defer func() { err = multierr.Append(err, sim.Close()) }()

	ctx, stop := signal.NotifyContext(
		cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if script != "" {
		err = preload(ctx, cmd, sim.session, script)
		if err != nil {
			return err
		}
	}

	monitor := monitoring.NewMonitor(sim.session)
	if cfg.MonitorPort != 0 {
		monitor.WithPortNumber(cfg.MonitorPort)
	}

	if sim.recorder != nil {
		reader := datarecording.NewReader(cfg.RecordPath + ".sqlite3")
		defer func() { err = multierr.Append(err, reader.Close()) }()

		monitor.WithTaskRecording(sim.recorder, reader)
	}

	port := monitor.StartServer()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.OpenBrowser {
		g.Go(func() error {
			url := fmt.Sprintf("http://localhost:%d", port)
			if err := browser.OpenURL(url); err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open %s: %v\n", url, err)
			}

			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), 5*time.Second)
		defer cancel()

		return monitor.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func preload(
	ctx context.Context,
	cmd *cobra.Command,
	s *session.Session,
	script string,
) error {
	f, err := os.Open(script)
	if err != nil {
		return err
	}
	defer f.Close()

	return session.NewRunner(s, cmd.OutOrStdout()).Run(ctx, f)
}
