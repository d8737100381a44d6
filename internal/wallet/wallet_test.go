// internal/wallet/wallet_test.go
package wallet

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var token2022 = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

func TestNewWallet(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	w, err := NewWallet(base58.Encode(key), zaptest.NewLogger(t))
	require.NoError(t, err)

	pub, ok := w.PublicKey()
	assert.True(t, ok)
	assert.Equal(t, key.PublicKey(), pub)
	assert.Equal(t, key.PublicKey().String(), w.String())

	_, err = NewWallet("not-base58-0OIl", zaptest.NewLogger(t))
	assert.Error(t, err)

	_, err = NewWallet(base58.Encode([]byte{1, 2, 3}), zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestLoadKeypairFile(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	raw := make([]int, len(key))
	for i, b := range key {
		raw[i] = int(b)
	}
	content, err := json.Marshal(raw)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, content, 0600))

	w, err := LoadKeypairFile(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	pub, _ := w.PublicKey()
	assert.Equal(t, key.PublicKey(), pub)

	_, err = LoadKeypairFile(filepath.Join(t.TempDir(), "absent.json"), zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestGetATAUsesTokenProgram(t *testing.T) {
	w := newWallet(solana.NewWallet().PrivateKey, zaptest.NewLogger(t))
	mint := solana.NewWallet().PublicKey()

	legacy, err := w.GetATA(mint, solana.TokenProgramID)
	require.NoError(t, err)
	expected, _, err := solana.FindAssociatedTokenAddress(w.PrivateKey.PublicKey(), mint)
	require.NoError(t, err)
	assert.Equal(t, expected, legacy)

	modern, err := w.GetATA(mint, token2022)
	require.NoError(t, err)
	assert.NotEqual(t, legacy, modern)

	cached, err := w.GetATA(mint, token2022)
	require.NoError(t, err)
	assert.Equal(t, modern, cached)
}

func TestCreateATAIdempotentInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	ix, err := CreateATAIdempotentInstruction(payer, payer, mint, token2022)
	require.NoError(t, err)

	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, ix.ProgramID())
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)

	accounts := ix.Accounts()
	require.Len(t, accounts, 6)
	assert.True(t, accounts[0].IsSigner)
	ata, _ := FindATA(payer, mint, token2022)
	assert.Equal(t, ata, accounts[1].PublicKey)
	assert.Equal(t, token2022, accounts[5].PublicKey)
}

func TestSignTransaction(t *testing.T) {
	w := newWallet(solana.NewWallet().PrivateKey, zaptest.NewLogger(t))
	owner, _ := w.PublicKey()
	mint := solana.NewWallet().PublicKey()

	ix, err := CreateATAIdempotentInstruction(owner, owner, mint, token2022)
	require.NoError(t, err)
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{1}, solana.TransactionPayer(owner))
	require.NoError(t, err)

	require.NoError(t, w.SignTransaction(tx))
	require.Len(t, tx.Signatures, 1)
	assert.NoError(t, tx.VerifySignatures())

	foreign := solana.NewWallet().PublicKey()
	tx, err = solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{1}, solana.TransactionPayer(foreign))
	require.NoError(t, err)
	assert.ErrorIs(t, w.SignTransaction(tx), ErrSignerMissing)
}

func TestDisconnectedAndWatchOnly(t *testing.T) {
	_, ok := Disconnected{}.PublicKey()
	assert.False(t, ok)
	_, err := Disconnected{}.SignAndSend(context.Background(), nil, nil)
	assert.Error(t, err)

	addr := solana.NewWallet().PublicKey()
	pub, ok := WatchOnly{Address: addr}.PublicKey()
	assert.True(t, ok)
	assert.Equal(t, addr, pub)
	_, err = WatchOnly{Address: addr}.SignAndSend(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrSignerMissing)
}
