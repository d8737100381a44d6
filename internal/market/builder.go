// internal/market/builder.go
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain"
	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain/solbc"
	"github.com/rovshanmuradov/nft-marketplace/internal/logger"
	"github.com/rovshanmuradov/nft-marketplace/internal/metrics"
)

// Wallet is the signer injected into every on-chain action. A wallet that
// reports no public key is not connected.
type Wallet interface {
	PublicKey() (solana.PublicKey, bool)
	SignAndSend(ctx context.Context, conn blockchain.Client, tx *solana.Transaction) (solana.Signature, error)
}

// Builder assembles, submits and confirms marketplace transactions.
type Builder struct {
	programID  solana.PublicKey
	commitment rpc.CommitmentType
	logger     *zap.Logger
	metrics    *metrics.Collector
	analyzer   *solbc.ErrorAnalyzer
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

func WithBuilderMetrics(m *metrics.Collector) BuilderOption {
	return func(b *Builder) { b.metrics = m }
}

// WithConfirmCommitment sets the commitment a submission must reach.
func WithConfirmCommitment(c rpc.CommitmentType) BuilderOption {
	return func(b *Builder) { b.commitment = c }
}

func NewBuilder(programID solana.PublicKey, log *zap.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{
		programID:  programID,
		commitment: rpc.CommitmentConfirmed,
		logger:     log.Named("tx-builder"),
		analyzer:   solbc.NewErrorAnalyzer(log),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// submit signs via the wallet, sends once and waits for confirmation.
// Nothing here is retried.
func (b *Builder) submit(
	ctx context.Context,
	conn blockchain.Client,
	w Wallet,
	kind string,
	payer solana.PublicKey,
	instructions []solana.Instruction,
) (sig solana.Signature, err error) {
	opLogger := logger.WithOperation(b.logger, kind)
	defer logger.TrackPerformance(opLogger, kind)()

	start := time.Now()
	defer func() { b.metrics.ObserveTransaction(kind, start, err) }()

	blockhash, err := conn.GetRecentBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, b.txError(kind, solana.Signature{}, fmt.Errorf("failed to get recent blockhash: %w", err))
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, b.txError(kind, solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err))
	}

	sig, err = w.SignAndSend(ctx, conn, tx)
	if err != nil {
		return solana.Signature{}, b.txError(kind, solana.Signature{}, err)
	}
	opLogger.Info("Transaction sent", zap.String("signature", sig.String()))

	if err = conn.WaitForTransactionConfirmation(ctx, sig, b.commitment); err != nil {
		return sig, b.txError(kind, sig, err)
	}
	opLogger.Info("Transaction confirmed", zap.String("signature", sig.String()))

	return sig, nil
}

func (b *Builder) txError(kind string, sig solana.Signature, err error) *TransactionError {
	txErr := &TransactionError{Kind: kind, Signature: sig, Err: err}
	if anchorErr, ok := b.analyzer.ExtractAnchorError(err); ok {
		txErr.Program = anchorErr
	}
	b.logger.Error("Transaction failed",
		zap.String("kind", kind),
		zap.String("signature", sig.String()),
		zap.Error(txErr))
	return txErr
}
