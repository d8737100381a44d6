package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/nft-marketplace/internal/market"
	"github.com/rovshanmuradov/nft-marketplace/internal/storage"
)

// withdraw <mint>: close your listing. The program rejects non-sellers.
func withdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <mint>",
		Short: "Withdraw your listed NFT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(context.Background())
			defer cancel()

			w, err := appCtx.Wallet()
			if err != nil {
				return err
			}
			mint, err := parsePublicKey(args[0])
			if err != nil {
				return err
			}

			listing, err := appCtx.Directory.Get(ctx, appCtx.Client, mint)
			if err != nil {
				return err
			}

			started := time.Now()
			sig, err := appCtx.Builder.Withdraw(ctx, appCtx.Client, w, market.WithdrawParams{Listing: *listing})

			owner, _ := w.PublicKey()
			appCtx.Record(ctx, storage.Attempt{
				Kind:      "withdraw",
				Wallet:    owner,
				Listing:   *listing,
				Signature: sig,
				Started:   started,
				Err:       err,
			})
			if err != nil {
				return err
			}
			fmt.Println(sig)
			return nil
		},
	}
}
