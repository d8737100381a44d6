package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// history: journaled transactions of the configured wallet, newest first.
func historyCmd() *cobra.Command {
	var (
		limit  int
		offset int
		addr   string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled buy and withdraw attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if appCtx.Journal == nil {
				return errors.New("no journal configured: set journal_dsn")
			}

			if addr == "" {
				w, err := appCtx.Wallet()
				if err != nil {
					return err
				}
				addr = w.String()
			}

			txs, err := appCtx.Journal.ListTransactions(context.Background(), addr, limit, offset)
			if err != nil {
				return err
			}

			tw := newTable()
			fmt.Fprintln(tw, "TIME\tKIND\tMINT\tSTATUS\tSIGNATURE")
			for _, tx := range txs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					tx.CreatedAt.Format("2006-01-02 15:04:05"), tx.Kind, tx.Mint, tx.Status, tx.Signature)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "rows to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().StringVar(&addr, "wallet", "", "wallet address (default: configured keypair)")
	return cmd
}
