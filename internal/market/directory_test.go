// internal/market/directory_test.go
package market

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/nft-marketplace/internal/metrics"
)

func TestListAll(t *testing.T) {
	chain := newFakeChain()
	sellerA := solana.NewWallet().PublicKey()
	sellerB := solana.NewWallet().PublicKey()
	a := chain.addListing(t, sellerA, 5_000_000)
	b := chain.addListing(t, sellerB, 1_250_000)

	// unrelated program account without the Listing discriminator
	chain.accounts[solana.NewWallet().PublicKey()] = make([]byte, ListingAccountSize)

	collector := metrics.NewCollector()
	dir := NewDirectory(testProgramID, zaptest.NewLogger(t), collector)

	first, err := dir.ListAll(context.Background(), chain)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Listing{a, b}, first)

	second, err := dir.ListAll(context.Background(), chain)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
	assert.Equal(t, 2, chain.scans)

	expected := `
# HELP nft_market_directory_active_listings Number of listings returned by the last directory scan.
# TYPE nft_market_directory_active_listings gauge
nft_market_directory_active_listings 2
`
	assert.NoError(t, testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected),
		"nft_market_directory_active_listings"))

	got, ok := FindByMint(first, b.Mint)
	require.True(t, ok)
	assert.Equal(t, sellerB, got.Seller)

	_, ok = FindByMint(first, solana.NewWallet().PublicKey())
	assert.False(t, ok)
}

func TestListAllEmpty(t *testing.T) {
	dir := NewDirectory(testProgramID, zaptest.NewLogger(t), nil)

	listings, err := dir.ListAll(context.Background(), newFakeChain())

	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestListAllFetchError(t *testing.T) {
	chain := newFakeChain()
	chain.scanErr = errBoom
	dir := NewDirectory(testProgramID, zaptest.NewLogger(t), nil)

	_, err := dir.ListAll(context.Background(), chain)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.ErrorIs(t, err, errBoom)
}

func TestListAllUndecodableAccount(t *testing.T) {
	chain := newFakeChain()
	// matches the discriminator filter but is truncated
	chain.accounts[solana.NewWallet().PublicKey()] = append([]byte{}, ListingDiscriminator...)
	dir := NewDirectory(testProgramID, zaptest.NewLogger(t), nil)

	_, err := dir.ListAll(context.Background(), chain)

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestDirectoryGet(t *testing.T) {
	chain := newFakeChain()
	l := chain.addListing(t, solana.NewWallet().PublicKey(), 42)
	dir := NewDirectory(testProgramID, zaptest.NewLogger(t), nil)

	got, err := dir.Get(context.Background(), chain, l.Mint)
	require.NoError(t, err)
	assert.Equal(t, l, *got)

	_, err = dir.Get(context.Background(), chain, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrNotFound)
}
