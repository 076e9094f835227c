package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/memplace/placement"
)

var policyDescriptions = map[placement.Policy]string{
	placement.FirstFit:    "lowest free offset",
	placement.BestFit:     "free offset leaving the smallest gap after the region",
	placement.WorstFit:    "free offset leaving the largest gap after the region",
	placement.CircularFit: "first free offset at or after the cursor, wrapping to 0",
}

func newPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List the placement policies.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for i, p := range placement.Policies() {
				short := strings.TrimSuffix(strings.ToLower(p.String()), "-fit")

				fmt.Fprintf(cmd.OutOrStdout(), "%d  %-13s %-9s %s\n",
					i+1, p, short, policyDescriptions[p])
			}
		},
	}
}
