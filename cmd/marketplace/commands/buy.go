package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain/solbc"
	"github.com/rovshanmuradov/nft-marketplace/internal/storage"
)

// buy <mint>: purchase a listed NFT with the configured keypair.
func buyCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "buy <mint>",
		Short: "Buy a listed NFT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(context.Background())
			defer cancel()

			w, err := appCtx.Wallet()
			if err != nil {
				return err
			}

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

			started := time.Now()
			sig, err := session.Buy(ctx, w)

			v := session.View()
			buyer, _ := w.PublicKey()
			appCtx.Record(ctx, storage.Attempt{
				Kind:      "buy",
				Wallet:    buyer,
				Listing:   v.Detail.Listing,
				Token:     v.Token,
				Amount:    v.DisplayedPrice,
				Signature: sig,
				Started:   started,
				Err:       err,
			})
			if err != nil {
				return err
			}
			fmt.Println(sig)

			if ata, err := w.GetATA(v.Detail.Mint, solbc.Token2022ProgramID); err == nil {
				fmt.Println("NFT account:", ata)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "settlement token symbol (default: first in table)")
	return cmd
}
