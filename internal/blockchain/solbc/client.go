// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain"
	"github.com/rovshanmuradov/nft-marketplace/internal/metrics"
)

const (
	defaultConfirmTimeout = 30 * time.Second
	confirmPollInterval   = 500 * time.Millisecond
)

var (
	// ErrConfirmationTimeout is returned when a signature is not confirmed in time.
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")

	errPending = errors.New("transaction not yet confirmed")
)

// TransactionFailedError carries the on-chain error of a landed but failed transaction.
type TransactionFailedError struct {
	Signature solana.Signature
	Err       interface{}
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction %s failed on-chain: %v", e.Signature, e.Err)
}

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc            *rpc.Client
	logger         *zap.Logger
	metrics        *metrics.Collector
	commitment     rpc.CommitmentType
	confirmTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records every RPC call on the collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithCommitment sets the commitment used for reads and preflight.
func WithCommitment(commitment rpc.CommitmentType) Option {
	return func(c *Client) { c.commitment = commitment }
}

// WithConfirmTimeout bounds WaitForTransactionConfirmation.
func WithConfirmTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.confirmTimeout = d
		}
	}
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		rpc:            rpc.New(rpcURL),
		logger:         logger.Named("solbc-client"),
		commitment:     rpc.CommitmentConfirmed,
		confirmTimeout: defaultConfirmTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRecentBlockhash получает последний blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	start := time.Now()
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	c.metrics.ObserveRPC("getLatestBlockhash", start, err)
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// SendTransaction отправляет транзакцию с preflight-проверкой на настроенном commitment.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return c.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
		PreflightCommitment: c.commitment,
	})
}

// SendTransactionWithOpts отправляет транзакцию с заданными опциями.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	start := time.Now()
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	c.metrics.ObserveRPC("sendTransaction", start, err)
	if err != nil {
		c.logger.Error("SendTransactionWithOpts error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// GetAccountInfo получает информацию об аккаунте.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	start := time.Now()
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	c.metrics.ObserveRPC("getAccountInfo", start, err)
	if err != nil {
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// GetProgramAccountsWithOpts получает все аккаунты программы с опциями фильтрации.
func (c *Client) GetProgramAccountsWithOpts(
	ctx context.Context,
	programID solana.PublicKey,
	opts *rpc.GetProgramAccountsOpts,
) (rpc.GetProgramAccountsResult, error) {
	if opts != nil && opts.Commitment == "" {
		opts.Commitment = c.commitment
	}

	start := time.Now()
	accounts, err := c.rpc.GetProgramAccountsWithOpts(ctx, programID, opts)
	c.metrics.ObserveRPC("getProgramAccounts", start, err)
	if err != nil {
		c.logger.Debug("GetProgramAccountsWithOpts error",
			zap.String("program_id", programID.String()),
			zap.Error(err))
		return nil, err
	}
	return accounts, nil
}

// GetSignatureStatuses получает статусы транзакций.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	start := time.Now()
	result, err := c.rpc.GetSignatureStatuses(ctx, false, signatures...)
	c.metrics.ObserveRPC("getSignatureStatuses", start, err)
	if err != nil {
		c.logger.Debug("GetSignatureStatuses error", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// WaitForTransactionConfirmation polls the signature status until it reaches the
// requested commitment, fails on-chain, or the confirm timeout elapses.
func (c *Client) WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error {
	return waitForConfirmation(ctx, signature, commitment, c.confirmTimeout, c.GetSignatureStatuses, c.logger)
}

type statusFetcher func(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)

func waitForConfirmation(
	ctx context.Context,
	signature solana.Signature,
	commitment rpc.CommitmentType,
	timeout time.Duration,
	fetch statusFetcher,
	logger *zap.Logger,
) error {
	op := func() (struct{}, error) {
		statuses, err := fetch(ctx, signature)
		if err != nil {
			logger.Warn("Error getting signature statuses", zap.Error(err))
			return struct{}{}, err
		}
		if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
			return struct{}{}, errPending
		}

		status := statuses.Value[0]
		if status.Err != nil {
			return struct{}{}, backoff.Permanent(&TransactionFailedError{Signature: signature, Err: status.Err})
		}
		if reachedCommitment(status.ConfirmationStatus, commitment) {
			return struct{}{}, nil
		}
		return struct{}{}, errPending
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(confirmPollInterval)),
		backoff.WithMaxElapsedTime(timeout),
	)
	if err == nil {
		return nil
	}

	var failed *TransactionFailedError
	if errors.As(err, &failed) {
		return failed
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %s: %v", ErrConfirmationTimeout, signature, err)
}

func reachedCommitment(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	switch want {
	case rpc.CommitmentFinalized:
		return status == rpc.ConfirmationStatusFinalized
	case rpc.CommitmentProcessed:
		return status == rpc.ConfirmationStatusProcessed ||
			status == rpc.ConfirmationStatusConfirmed ||
			status == rpc.ConfirmationStatusFinalized
	default:
		return status == rpc.ConfirmationStatusConfirmed ||
			status == rpc.ConfirmationStatusFinalized
	}
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)
