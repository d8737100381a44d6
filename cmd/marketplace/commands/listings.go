package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/nft-marketplace/internal/export"
	"github.com/rovshanmuradov/nft-marketplace/internal/storage"
)

// listings: print every active listing, or export the snapshot.
func listingsCmd() *cobra.Command {
	var (
		format    string
		outputDir string
		seller    string
		minPrice  uint64
		maxPrice  uint64
	)

	cmd := &cobra.Command{
		Use:   "listings",
		Short: "List active marketplace listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(context.Background())
			defer cancel()

			listings, err := appCtx.Directory.ListAll(ctx, appCtx.Client)
			if err != nil {
				return err
			}

			if appCtx.Journal != nil {
				if err := appCtx.Journal.SaveListingSnapshots(ctx, storage.NewListingSnapshots(listings, time.Now())); err != nil {
					appCtx.Logger.Warn("Failed to journal listings", zap.Error(err))
				}
			}

			if format != "" {
				path, err := appCtx.Exporter.ExportListings(listings, export.ExportOptions{
					Format:       export.ExportFormat(format),
					SellerFilter: seller,
					MinPrice:     minPrice,
					MaxPrice:     maxPrice,
					OutputDir:    outputDir,
				})
				if err != nil {
					return err
				}
				fmt.Println(path)
				return nil
			}

			tw := newTable()
			fmt.Fprintln(tw, "MINT\tSELLER\tPRICE\tLISTING")
			for _, l := range listings {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Mint, l.Seller, appCtx.Converter.FormatBase(l.Price), l.Pubkey)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&format, "export", "", "export format instead of printing (csv|json)")
	cmd.Flags().StringVar(&outputDir, "out", "exports", "export directory")
	cmd.Flags().StringVar(&seller, "seller", "", "export only listings of this seller")
	cmd.Flags().Uint64Var(&minPrice, "min", 0, "minimum base-unit price to export")
	cmd.Flags().Uint64Var(&maxPrice, "max", 0, "maximum base-unit price to export (0 = no limit)")
	return cmd
}
