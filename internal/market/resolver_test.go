// internal/market/resolver_test.go
package market

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain/solbc"
)

func newTestResolver(t *testing.T, md MetadataSource) *Resolver {
	logger := zaptest.NewLogger(t)
	return NewResolver(NewDirectory(testProgramID, logger, nil), md, logger)
}

func TestResolve(t *testing.T) {
	chain := newFakeChain()
	seller := solana.NewWallet().PublicKey()
	l := chain.addListing(t, seller, 5_000_000)

	md := new(mockMetadata)
	md.On("GetTokenMetadata", mock.Anything, chain, l.Mint).Return(metadataFor(l.Mint, "cat"), nil)

	detail, err := newTestResolver(t, md).Resolve(context.Background(), chain, l.Mint, &l)
	require.NoError(t, err)

	assert.Equal(t, "cat", detail.Name)
	assert.Equal(t, "https://cdn.example.com/cat.png", detail.Image)
	assert.Equal(t, seller, detail.Seller)
	assert.Equal(t, uint64(5_000_000), detail.Price)
	assert.Equal(t, l, detail.Listing)
	md.AssertExpectations(t)
}

func TestResolveWithoutListing(t *testing.T) {
	md := new(mockMetadata)
	r := newTestResolver(t, md)
	mint := solana.NewWallet().PublicKey()

	_, err := r.Resolve(context.Background(), newFakeChain(), mint, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	other := Listing{Mint: solana.NewWallet().PublicKey()}
	_, err = r.Resolve(context.Background(), newFakeChain(), mint, &other)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, mint, nf.Mint)

	md.AssertNotCalled(t, "GetTokenMetadata", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveMetadataFailure(t *testing.T) {
	chain := newFakeChain()
	l := chain.addListing(t, solana.NewWallet().PublicKey(), 1)

	md := new(mockMetadata)
	md.On("GetTokenMetadata", mock.Anything, chain, l.Mint).Return(nil, solbc.ErrNoMetadata)

	_, err := newTestResolver(t, md).Resolve(context.Background(), chain, l.Mint, &l)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.ErrorIs(t, err, solbc.ErrNoMetadata)
}

func TestLookup(t *testing.T) {
	chain := newFakeChain()
	l := chain.addListing(t, solana.NewWallet().PublicKey(), 7_000_000)
	chain.addListing(t, solana.NewWallet().PublicKey(), 1)

	md := new(mockMetadata)
	md.On("GetTokenMetadata", mock.Anything, chain, l.Mint).Return(metadataFor(l.Mint, "owl"), nil)

	detail, err := newTestResolver(t, md).Lookup(context.Background(), chain, l.Mint)
	require.NoError(t, err)
	assert.Equal(t, "owl", detail.Name)
	assert.Equal(t, l.Pubkey, detail.Listing.Pubkey)
}

func TestLookupUnknownMint(t *testing.T) {
	chain := newFakeChain()
	chain.addListing(t, solana.NewWallet().PublicKey(), 1)
	mint := solana.NewWallet().PublicKey()

	md := new(mockMetadata)
	md.On("GetTokenMetadata", mock.Anything, chain, mint).Return(nil, solbc.ErrMintNotFound)

	_, err := newTestResolver(t, md).Lookup(context.Background(), chain, mint)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupScanFailure(t *testing.T) {
	chain := newFakeChain()
	chain.scanErr = errBoom
	mint := solana.NewWallet().PublicKey()

	md := new(mockMetadata)
	md.On("GetTokenMetadata", mock.Anything, chain, mint).Return(metadataFor(mint, "x"), nil).Maybe()

	_, err := newTestResolver(t, md).Lookup(context.Background(), chain, mint)

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}
