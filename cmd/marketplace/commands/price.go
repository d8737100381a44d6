package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/nft-marketplace/internal/market"
)

// price <base-units>: convert a listing price.
func priceCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "price <base-units>",
		Short: "Convert a base-unit price into settlement tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := parseBasePrice(args[0])
			if err != nil {
				return err
			}

			if token != "" {
				amount, err := appCtx.Converter.ConvertSymbol(base, token)
				if err != nil {
					return err
				}
				fmt.Println(market.Quote{Symbol: token, Amount: amount})
				return nil
			}

			for _, q := range appCtx.Converter.QuoteAll(base) {
				fmt.Println(q)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "only this settlement token")
	return cmd
}
