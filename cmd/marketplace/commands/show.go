package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/nft-marketplace/internal/market"
	"github.com/rovshanmuradov/nft-marketplace/internal/wallet"
)

// show <mint>: resolve the product view of a listed NFT.
func showCmd() *cobra.Command {
	var (
		token string
		as    string
	)

	cmd := &cobra.Command{
		Use:   "show <mint>",
		Short: "Show a listed NFT with its price in the selected token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(context.Background())
			defer cancel()

			session, err := appCtx.Session(args[0])
			if err != nil {
				return err
			}
			if err := session.Load(ctx); err != nil {
				return err
			}
			if token != "" {
				if err := session.SelectToken(token); err != nil {
					return err
				}
			}

			var viewer market.Wallet = wallet.Disconnected{}
			if as != "" {
				pk, err := parsePublicKey(as)
				if err != nil {
					return err
				}
				viewer = wallet.WatchOnly{Address: pk}
			}

			v := session.View()
			tw := newTable()
			fmt.Fprintf(tw, "Name:\t%s\n", v.Detail.Name)
			fmt.Fprintf(tw, "Mint:\t%s\n", v.Detail.Mint)
			fmt.Fprintf(tw, "Image:\t%s\n", v.Detail.Image)
			fmt.Fprintf(tw, "Group:\t%s\n", v.Detail.Group)
			fmt.Fprintf(tw, "Seller:\t%s\n", v.Detail.Seller)
			fmt.Fprintf(tw, "Listing:\t%s\n", v.Detail.Listing.Pubkey)
			fmt.Fprintf(tw, "Price:\t%s %s\n", market.FormatPrice(v.DisplayedPrice), v.Token.Symbol)
			fmt.Fprintf(tw, "Action:\t%s\n", session.Action(viewer))
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "settlement token symbol (default: first in table)")
	cmd.Flags().StringVar(&as, "as", "", "show the action available to this wallet address")
	return cmd
}
