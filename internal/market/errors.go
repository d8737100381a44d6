// internal/market/errors.go
package market

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain/solbc"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("listing not found")
	// ErrWalletNotConnected is returned before any transaction is built.
	ErrWalletNotConnected = errors.New("wallet not connected")
	// ErrUnknownToken is returned for a symbol absent from the token table.
	ErrUnknownToken = errors.New("unknown settlement token")
	// ErrListingClosed is returned when acting on a sold or withdrawn listing.
	ErrListingClosed = errors.New("listing is no longer active")
	// ErrNotLoaded is returned when a session action runs before a successful Load.
	ErrNotLoaded = errors.New("product not loaded")
)

// FetchError wraps a failed read of program or mint accounts.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError reports a mint with no active listing.
type NotFoundError struct {
	Mint solana.PublicKey
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no active listing for mint %s", e.Mint)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// TransactionError wraps any failure to build, sign, submit or confirm a
// marketplace transaction.
type TransactionError struct {
	Kind      string
	Signature solana.Signature
	Program   *solbc.AnchorError
	Err       error
}

func (e *TransactionError) Error() string {
	msg := fmt.Sprintf("%s transaction failed", e.Kind)
	if !e.Signature.IsZero() {
		msg += fmt.Sprintf(" (signature %s)", e.Signature)
	}
	if e.Program != nil {
		msg += ": " + e.Program.String()
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }
