// internal/market/directory.go
package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain"
	"github.com/rovshanmuradov/nft-marketplace/internal/metrics"
)

// Listing is an active marketplace listing. Pubkey is the listing PDA,
// ListingAccount the escrow token account holding the NFT, Price base units.
type Listing struct {
	Pubkey         solana.PublicKey
	Mint           solana.PublicKey
	Seller         solana.PublicKey
	ListingAccount solana.PublicKey
	Price          uint64
}

// Directory enumerates listings owned by the marketplace program.
type Directory struct {
	programID solana.PublicKey
	logger    *zap.Logger
	metrics   *metrics.Collector
}

func NewDirectory(programID solana.PublicKey, logger *zap.Logger, m *metrics.Collector) *Directory {
	return &Directory{
		programID: programID,
		logger:    logger.Named("directory"),
		metrics:   m,
	}
}

func (d *Directory) ProgramID() solana.PublicKey {
	return d.programID
}

// ListAll returns every active listing. Each call queries the chain again.
func (d *Directory) ListAll(ctx context.Context, conn blockchain.Client) ([]Listing, error) {
	accounts, err := conn.GetProgramAccountsWithOpts(ctx, d.programID, &rpc.GetProgramAccountsOpts{
		Encoding: solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: 0,
					Bytes:  solana.Base58(ListingDiscriminator),
				},
			},
		},
	})
	if err != nil {
		return nil, &FetchError{Op: "listings", Err: err}
	}

	listings := make([]Listing, 0, len(accounts))
	for _, acc := range accounts {
		if acc == nil || acc.Account == nil || acc.Account.Data == nil {
			return nil, &FetchError{Op: "listings", Err: errors.New("empty account in program scan")}
		}
		listing, err := DecodeListing(acc.Pubkey, acc.Account.Data.GetBinary())
		if err != nil {
			return nil, &FetchError{Op: "listings", Err: err}
		}
		listings = append(listings, listing)
	}

	d.metrics.SetActiveListings(len(listings))
	d.logger.Info("Listings fetched", zap.Int("count", len(listings)))
	return listings, nil
}

// Get reads the listing of a mint directly from its PDA.
func (d *Directory) Get(ctx context.Context, conn blockchain.Client, mint solana.PublicKey) (*Listing, error) {
	address, _, err := FindListingAddress(d.programID, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive listing address: %w", err)
	}

	acc, err := conn.GetAccountInfo(ctx, address)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, &NotFoundError{Mint: mint}
		}
		return nil, &FetchError{Op: "listing " + address.String(), Err: err}
	}
	if acc == nil || acc.Value == nil {
		return nil, &NotFoundError{Mint: mint}
	}

	listing, err := DecodeListing(address, acc.Value.Data.GetBinary())
	if err != nil {
		return nil, &FetchError{Op: "listing " + address.String(), Err: err}
	}
	return &listing, nil
}

// FindByMint returns the listing for mint, if any.
func FindByMint(listings []Listing, mint solana.PublicKey) (*Listing, bool) {
	for i := range listings {
		if listings[i].Mint.Equals(mint) {
			return &listings[i], true
		}
	}
	return nil, false
}
