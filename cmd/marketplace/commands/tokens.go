package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "Print the settlement token table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := appCtx.Converter.Table()
			tw := newTable()
			fmt.Fprintf(tw, "SYMBOL\tRATE\tMINT\n")
			for _, tok := range table.Tokens {
				fmt.Fprintf(tw, "%s\t%g\t%s\n", tok.Symbol, tok.Rate, tok.Address)
			}
			fmt.Fprintf(tw, "\nbase unit divisor: %d\n", table.BaseUnitDivisor)
			return tw.Flush()
		},
	}
}
