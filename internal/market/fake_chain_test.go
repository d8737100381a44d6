// internal/market/fake_chain_test.go
package market

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain"
	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain/solbc"
	"github.com/rovshanmuradov/nft-marketplace/internal/wallet"
)

var testProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

// fakeChain stands in for the RPC node and the marketplace program. It enforces
// the seller check of withdraw the way the program does.
type fakeChain struct {
	mu         sync.Mutex
	accounts   map[solana.PublicKey][]byte
	sent       []*solana.Transaction
	scans      int
	scanErr    error
	confirmErr error
}

func newFakeChain() *fakeChain {
	return &fakeChain{accounts: make(map[solana.PublicKey][]byte)}
}

func (f *fakeChain) addListing(t *testing.T, seller solana.PublicKey, price uint64) Listing {
	t.Helper()
	mint := solana.NewWallet().PublicKey()
	pda, bump, err := FindListingAddress(testProgramID, mint)
	require.NoError(t, err)

	l := Listing{
		Pubkey:         pda,
		Mint:           mint,
		Seller:         seller,
		ListingAccount: solana.NewWallet().PublicKey(),
		Price:          price,
	}
	data, err := EncodeListing(l, bump)
	require.NoError(t, err)

	f.mu.Lock()
	f.accounts[pda] = data
	f.mu.Unlock()
	return l
}

func (f *fakeChain) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeChain) hasAccount(pk solana.PublicKey) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.accounts[pk]
	return ok
}

func (f *fakeChain) GetRecentBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{9, 9, 9}, nil
}

func (f *fakeChain) GetAccountInfo(_ context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.accounts[pubkey]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{Value: &rpc.Account{
		Owner: testProgramID,
		Data:  rpc.DataBytesOrJSONFromBytes(data),
	}}, nil
}

func (f *fakeChain) GetProgramAccountsWithOpts(_ context.Context, programID solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if f.scanErr != nil {
		return nil, f.scanErr
	}

	var out rpc.GetProgramAccountsResult
	for pk, data := range f.accounts {
		if programID.Equals(testProgramID) && matchesFilters(data, opts) {
			out = append(out, &rpc.KeyedAccount{
				Pubkey:  pk,
				Account: &rpc.Account{Owner: programID, Data: rpc.DataBytesOrJSONFromBytes(data)},
			})
		}
	}
	return out, nil
}

func matchesFilters(data []byte, opts *rpc.GetProgramAccountsOpts) bool {
	if opts == nil {
		return true
	}
	for _, flt := range opts.Filters {
		if flt.Memcmp == nil {
			continue
		}
		start := int(flt.Memcmp.Offset)
		end := start + len(flt.Memcmp.Bytes)
		if len(data) < end || !bytes.Equal(data[start:end], flt.Memcmp.Bytes) {
			return false
		}
	}
	return true
}

func (f *fakeChain) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return f.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{})
}

func (f *fakeChain) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, _ blockchain.TransactionOptions) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)

	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, err
	}

	keys := tx.Message.AccountKeys
	for i, ci := range tx.Message.Instructions {
		if !keys[ci.ProgramIDIndex].Equals(testProgramID) {
			continue
		}
		signer := keys[ci.Accounts[0]]
		listingIdx := 1
		if bytes.HasPrefix(ci.Data, buyDiscriminator) {
			listingIdx = 2
		}
		listing := keys[ci.Accounts[listingIdx]]

		data, ok := f.accounts[listing]
		if !ok {
			return solana.Signature{}, simulationError(i, 3012, "AccountNotInitialized", "The program expected this account to be already initialized")
		}
		l, err := DecodeListing(listing, data)
		if err != nil {
			return solana.Signature{}, err
		}
		if bytes.HasPrefix(ci.Data, withdrawDiscriminator) && !l.Seller.Equals(signer) {
			return solana.Signature{}, simulationError(i, 2001, "ConstraintHasOne", "A has one constraint was violated")
		}
		delete(f.accounts, listing)
	}
	return tx.Signatures[0], nil
}

func simulationError(ix, code int, name, msg string) error {
	return &jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed: Error processing Instruction: custom program error",
		Data: map[string]interface{}{
			"err": map[string]interface{}{
				"InstructionError": []interface{}{float64(ix), map[string]interface{}{"Custom": float64(code)}},
			},
			"logs": []interface{}{
				"Program log: AnchorError caused by account: listing. Error Code: " + name +
					". Error Number: " + strconv.Itoa(code) + ". Error Message: " + msg + ".",
			},
		},
	}
}

func (f *fakeChain) WaitForTransactionConfirmation(context.Context, solana.Signature, rpc.CommitmentType) error {
	return f.confirmErr
}

var _ blockchain.Client = (*fakeChain)(nil)

// mockMetadata is a testify mock of MetadataSource.
type mockMetadata struct {
	mock.Mock
}

func (m *mockMetadata) GetTokenMetadata(ctx context.Context, client blockchain.Client, mint solana.PublicKey) (*solbc.TokenMetadata, error) {
	args := m.Called(ctx, client, mint)
	md, _ := args.Get(0).(*solbc.TokenMetadata)
	return md, args.Error(1)
}

func metadataFor(mint solana.PublicKey, name string) *solbc.TokenMetadata {
	return &solbc.TokenMetadata{
		Mint:  mint,
		Name:  name,
		Image: "https://cdn.example.com/" + name + ".png",
		Group: solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"),
	}
}

func newTestWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.NewWallet(solana.NewWallet().PrivateKey.String(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return w
}

func walletKey(w Wallet) solana.PublicKey {
	pk, _ := w.PublicKey()
	return pk
}

var errBoom = errors.New("boom")
