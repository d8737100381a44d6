// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain"
)

// ErrSignerMissing is returned when a transaction requires a signature this wallet cannot produce.
var ErrSignerMissing = errors.New("transaction requires a signer not held by the wallet")

// Wallet представляет кошелёк Solana с локальным ключом.
type Wallet struct {
	PrivateKey solana.PrivateKey
	logger     *zap.Logger

	mu       sync.Mutex
	ataCache map[string]solana.PublicKey // Кеш ATA: owner|mint|program -> address
}

// NewWallet создаёт кошелёк из base58-encoded приватного ключа.
func NewWallet(privateKeyBase58 string, logger *zap.Logger) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(strings.TrimSpace(privateKeyBase58))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	return newWallet(solana.PrivateKey(privateKeyBytes), logger), nil
}

// LoadKeypairFile читает ключ в формате solana-keygen (JSON-массив из 64 байт).
func LoadKeypairFile(path string, logger *zap.Logger) (*Wallet, error) {
	privateKey, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair %s: %w", path, err)
	}
	return newWallet(privateKey, logger), nil
}

func newWallet(privateKey solana.PrivateKey, logger *zap.Logger) *Wallet {
	return &Wallet{
		PrivateKey: privateKey,
		logger:     logger.Named("wallet"),
		ataCache:   make(map[string]solana.PublicKey),
	}
}

// PublicKey returns the wallet address. A keypair wallet is always connected.
func (w *Wallet) PublicKey() (solana.PublicKey, bool) {
	return w.PrivateKey.PublicKey(), true
}

// SignTransaction подписывает транзакцию приватным ключом кошелька.
func (w *Wallet) SignTransaction(tx *solana.Transaction) error {
	owner := w.PrivateKey.PublicKey()
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(owner) {
			return &w.PrivateKey
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignerMissing, err)
	}
	return nil
}

// SignAndSend подписывает транзакцию и отправляет её через переданное соединение.
func (w *Wallet) SignAndSend(ctx context.Context, conn blockchain.Client, tx *solana.Transaction) (solana.Signature, error) {
	if err := w.SignTransaction(tx); err != nil {
		return solana.Signature{}, err
	}
	sig, err := conn.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	w.logger.Debug("transaction submitted", zap.String("signature", sig.String()))
	return sig, nil
}

// GetATA возвращает ATA кошелька для mint под указанной токен-программой.
// Если адрес уже был вычислен ранее, возвращается значение из кеша.
func (w *Wallet) GetATA(mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	owner := w.PrivateKey.PublicKey()
	key := owner.String() + "|" + mint.String() + "|" + tokenProgram.String()

	w.mu.Lock()
	defer w.mu.Unlock()
	if ata, ok := w.ataCache[key]; ok {
		return ata, nil
	}
	ata, err := FindATA(owner, mint, tokenProgram)
	if err != nil {
		return solana.PublicKey{}, err
	}
	w.ataCache[key] = ata
	return ata, nil
}

// String возвращает публичный ключ кошелька.
func (w *Wallet) String() string {
	return w.PrivateKey.PublicKey().String()
}

// Disconnected is a wallet with no key; every on-chain action fails before building.
type Disconnected struct{}

func (Disconnected) PublicKey() (solana.PublicKey, bool) { return solana.PublicKey{}, false }

func (Disconnected) SignAndSend(context.Context, blockchain.Client, *solana.Transaction) (solana.Signature, error) {
	return solana.Signature{}, errors.New("wallet not connected")
}

// WatchOnly knows its address but cannot sign. Used to preview which action a
// given wallet would take.
type WatchOnly struct {
	Address solana.PublicKey
}

func (w WatchOnly) PublicKey() (solana.PublicKey, bool) { return w.Address, true }

func (w WatchOnly) SignAndSend(context.Context, blockchain.Client, *solana.Transaction) (solana.Signature, error) {
	return solana.Signature{}, ErrSignerMissing
}
