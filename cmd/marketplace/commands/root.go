package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	debug       bool
	metricsFile string
	keypairPath string

	appCtx *App
)

func Execute() error {
	root := &cobra.Command{
		Use:           "marketplace",
		Short:         "Solana NFT marketplace client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(configPath, debug)
			if err != nil {
				return err
			}
			appCtx = app
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "config file (yaml or json)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this textfile on exit")
	root.PersistentFlags().StringVar(&keypairPath, "keypair", "", "solana-keygen keypair file (overrides keypair_path)")

	root.AddCommand(listingsCmd(), showCmd(), priceCmd(), tokensCmd(), buyCmd(), withdrawCmd(), historyCmd())

	err := root.Execute()
	// PostRun hooks are skipped when a command fails; failed sends still count.
	if appCtx != nil {
		if metricsFile != "" {
			if werr := appCtx.Metrics.WriteTextfile(metricsFile); werr != nil && err == nil {
				err = werr
			}
		}
		appCtx.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}
