// internal/storage/journal.go
package storage

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/nft-marketplace/internal/market"
	"github.com/rovshanmuradov/nft-marketplace/internal/storage/models"
)

// Attempt describes one buy or withdraw call and its outcome.
type Attempt struct {
	Kind      string
	Wallet    solana.PublicKey
	Listing   market.Listing
	Token     market.SettlementToken
	Amount    float64
	Signature solana.Signature
	Started   time.Time
	Err       error
}

// NewTransactionRecord converts an attempt into a journal row. Attempts that
// never produced a signature are "rejected", signed ones that failed are "failed".
func NewTransactionRecord(a Attempt) *models.Transaction {
	tx := &models.Transaction{
		WalletAddress: a.Wallet.String(),
		Kind:          a.Kind,
		Mint:          a.Listing.Mint.String(),
		Listing:       a.Listing.Pubkey.String(),
		Seller:        a.Listing.Seller.String(),
		BasePrice:     a.Listing.Price,
		Status:        models.StatusConfirmed,
	}
	if !a.Signature.IsZero() {
		tx.Signature = a.Signature.String()
	}
	if a.Kind == "buy" {
		tx.TokenSymbol = a.Token.Symbol
		tx.TokenMint = a.Token.Address.String()
		tx.Amount = a.Amount
	}
	if !a.Started.IsZero() {
		tx.ExecutionTime = time.Since(a.Started).Seconds()
	}

	if a.Err != nil {
		tx.ErrorMessage = a.Err.Error()
		tx.Status = models.StatusFailed
		if a.Signature.IsZero() {
			tx.Status = models.StatusRejected
		}
		var txErr *market.TransactionError
		if errors.As(a.Err, &txErr) && txErr.Program != nil {
			code := txErr.Program.Code
			tx.ProgramError = &code
		}
	}
	return tx
}

// NewListingSnapshots converts a directory scan into snapshot rows.
func NewListingSnapshots(listings []market.Listing, seen time.Time) []*models.ListingSnapshot {
	out := make([]*models.ListingSnapshot, 0, len(listings))
	for _, l := range listings {
		out = append(out, &models.ListingSnapshot{
			Mint:     l.Mint.String(),
			Listing:  l.Pubkey.String(),
			Seller:   l.Seller.String(),
			Escrow:   l.ListingAccount.String(),
			Price:    l.Price,
			LastSeen: seen,
		})
	}
	return out
}
