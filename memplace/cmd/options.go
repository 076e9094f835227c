package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/memplace/config"
	"github.com/sarchlab/memplace/placement"
)

// addConfigFlags registers the flags that override config.Config fields.
// Defaults shown in the help text are the built-in ones; a flag only takes
// effect when it is given.
func addConfigFlags(flags *pflag.FlagSet) {
	def := config.Default()

	flags.IntP("size", "s", def.TotalSize, "Capacity of the address space")
	flags.StringP("policy", "p", def.Policy.String(),
		"Placement policy: first, best, worst or circular")
	flags.Bool("record", def.Record, "Record every operation into SQLite")
	flags.String("record-path", "",
		"Database name without the .sqlite3 suffix (implies --record)")
	flags.Bool("color", def.Color, "Colour the memory snapshots")
}

// loadConfig resolves the settings: defaults, then the .env file, then the
// environment, then the flags that were given on the command line.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	var files []string
	if opts.envFile != "" {
		files = append(files, opts.envFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()

	if flags.Changed("size") {
		cfg.TotalSize, _ = flags.GetInt("size")
	}

	if flags.Changed("policy") {
		name, _ := flags.GetString("policy")

		cfg.Policy, err = placement.ParsePolicy(name)
		if err != nil {
			return cfg, err
		}
	}

	if flags.Changed("record") {
		cfg.Record, _ = flags.GetBool("record")
	}

	if flags.Changed("record-path") {
		cfg.RecordPath, _ = flags.GetString("record-path")
		cfg.Record = true
	}

	if flags.Changed("color") {
		cfg.Color, _ = flags.GetBool("color")
	}

	if flags.Changed("port") {
		cfg.MonitorPort, _ = flags.GetInt("port")
	}

	if flags.Changed("open") {
		cfg.OpenBrowser, _ = flags.GetBool("open")
	}

	return cfg, cfg.Validate()
}
