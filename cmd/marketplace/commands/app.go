package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain/solbc"
	"github.com/rovshanmuradov/nft-marketplace/internal/config"
	"github.com/rovshanmuradov/nft-marketplace/internal/export"
	"github.com/rovshanmuradov/nft-marketplace/internal/logger"
	"github.com/rovshanmuradov/nft-marketplace/internal/market"
	"github.com/rovshanmuradov/nft-marketplace/internal/metrics"
	"github.com/rovshanmuradov/nft-marketplace/internal/storage"
	"github.com/rovshanmuradov/nft-marketplace/internal/storage/postgres"
	"github.com/rovshanmuradov/nft-marketplace/internal/wallet"
)

// App is the dependency graph shared by subcommands.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *metrics.Collector
	Client    *solbc.Client
	Directory *market.Directory
	Resolver  *market.Resolver
	Builder   *market.Builder
	Converter *market.Converter
	Exporter  *export.ListingExporter
	Journal   storage.Storage
}

// NewApp loads the config and wires every component.
func NewApp(configPath string, debug bool) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.CreatePrettyLogger(debug || cfg.DebugLogging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	programID, err := cfg.ProgramPublicKey()
	if err != nil {
		return nil, err
	}

	table, err := market.TokenTableFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load token table: %w", err)
	}

	collector := metrics.NewCollector()
	client := solbc.NewClient(cfg.RPCList[0], log,
		solbc.WithMetrics(collector),
		solbc.WithCommitment(cfg.CommitmentType()),
		solbc.WithConfirmTimeout(cfg.ConfirmTimeout()),
	)

	directory := market.NewDirectory(programID, log, collector)
	converter := market.NewConverter(table)

	var journal storage.Storage
	if cfg.JournalDSN != "" {
		if journal, err = postgres.NewStorage(cfg.JournalDSN, log); err != nil {
			return nil, err
		}
		if err := journal.RunMigrations(); err != nil {
			return nil, err
		}
	}

	return &App{
		Config:    cfg,
		Logger:    log,
		Metrics:   collector,
		Client:    client,
		Directory: directory,
		Resolver:  market.NewResolver(directory, solbc.NewMetadataReader(log, cfg.MetadataTimeout()), log),
		Builder: market.NewBuilder(programID, log,
			market.WithBuilderMetrics(collector),
			market.WithConfirmCommitment(cfg.CommitmentType()),
		),
		Converter: converter,
		Exporter:  export.NewListingExporter(log, converter),
		Journal:   journal,
	}, nil
}

// Session opens a product session for mint on the configured connection.
func (a *App) Session(mint string) (*market.Session, error) {
	pk, err := parsePublicKey(mint)
	if err != nil {
		return nil, err
	}
	return market.NewSession(pk, a.Client, a.Resolver, a.Builder, a.Converter, a.Logger), nil
}

// Wallet loads the signing keypair. The --keypair flag wins over keypair_path.
func (a *App) Wallet() (*wallet.Wallet, error) {
	path := keypairPath
	if path == "" {
		path = a.Config.KeypairPath
	}
	if path == "" {
		return nil, errors.New("no keypair configured: use --keypair or keypair_path")
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, rest)
	}
	return wallet.LoadKeypairFile(path, a.Logger)
}

// Record journals a buy or withdraw attempt. Journal failures are logged only.
func (a *App) Record(ctx context.Context, attempt storage.Attempt) {
	if a.Journal == nil {
		return
	}
	if err := a.Journal.SaveTransaction(ctx, storage.NewTransactionRecord(attempt)); err != nil {
		a.Logger.Warn("Failed to journal transaction", zap.Error(err))
	}
}

// Close flushes the logger and closes the journal.
func (a *App) Close() {
	if a.Journal != nil {
		if err := a.Journal.Close(); err != nil {
			a.Logger.Warn("Failed to close journal", zap.Error(err))
		}
	}
	if err := a.Logger.Sync(); err != nil {
		if !os.IsNotExist(err) &&
			err.Error() != "sync /dev/stdout: invalid argument" &&
			err.Error() != "sync /dev/stderr: inappropriate ioctl for device" {
			fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
		}
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
