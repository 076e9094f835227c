// Package cmd provides the command-line interface for memplace.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

type rootOptions struct {
	envFile string
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use: "memplace",
		Short: "memplace simulates contiguous memory placement with " +
			"First-Fit, Best-Fit, Worst-Fit and Circular-Fit.",
		Long: `memplace simulates contiguous memory allocation over a ` +
			`fixed-size address space. It runs placement scripts, serves a ` +
			`monitoring page and records every operation into SQLite.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "",
		"Load settings from this file instead of .env")

	cmd.AddCommand(
		newSimulateCmd(opts),
		newServeCmd(opts),
		newPoliciesCmd(),
	)

	return cmd
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It exits the program through atexit so that recordings are
// flushed.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
