package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/gesture"
)

func newRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the classification rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tLABEL\tFINGERS\tCONDITIONS")
			for i, r := range gesture.Rules() {
				conds := make([]string, len(r.Predicates))
				for j, p := range r.Predicates {
					conds[j] = p.String()
				}
				if len(conds) == 0 {
					conds = []string{"-"}
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, r.Label, r.Pattern, strings.Join(conds, ", "))
			}
			return tw.Flush()
		},
	}
}
