// internal/market/buy.go
package market

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain"
	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain/solbc"
	"github.com/rovshanmuradov/nft-marketplace/internal/wallet"
)

// BuyParams selects the listing and the settlement token to pay with.
type BuyParams struct {
	Listing Listing
	Token   SettlementToken
}

// Buy purchases the listed NFT for the connected wallet. It fails with
// ErrWalletNotConnected before building anything, and with *TransactionError
// for every later failure.
func (b *Builder) Buy(ctx context.Context, conn blockchain.Client, w Wallet, p BuyParams) (solana.Signature, error) {
	buyer, ok := w.PublicKey()
	if !ok {
		return solana.Signature{}, ErrWalletNotConnected
	}

	instructions, err := b.BuyInstructions(buyer, p)
	if err != nil {
		return solana.Signature{}, b.txError("buy", solana.Signature{}, err)
	}

	sig, err := b.submit(ctx, conn, w, "buy", buyer, instructions)
	if err != nil {
		return sig, err
	}

	b.logger.Info("Purchase completed",
		zap.String("mint", p.Listing.Mint.String()),
		zap.String("token", p.Token.Symbol),
		zap.String("signature", sig.String()))
	return sig, nil
}

// BuyInstructions returns [create buyer NFT ATA (idempotent), buy].
func (b *Builder) BuyInstructions(buyer solana.PublicKey, p BuyParams) ([]solana.Instruction, error) {
	l := p.Listing

	// Шаг 1: ATA покупателя для NFT (Token-2022)
	createATA, err := wallet.CreateATAIdempotentInstruction(buyer, buyer, l.Mint, solbc.Token2022ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to build buyer ATA instruction: %w", err)
	}
	buyerNFT, err := wallet.FindATA(buyer, l.Mint, solbc.Token2022ProgramID)
	if err != nil {
		return nil, err
	}

	// Шаг 2: платёжные аккаунты; для SOL это сами кошельки
	buyerPayment, sellerPayment := buyer, l.Seller
	if !p.Token.IsNative() {
		if buyerPayment, err = wallet.FindATA(buyer, p.Token.Address, solana.TokenProgramID); err != nil {
			return nil, err
		}
		if sellerPayment, err = wallet.FindATA(l.Seller, p.Token.Address, solana.TokenProgramID); err != nil {
			return nil, err
		}
	}

	// Шаг 3: инструкция buy; порядок аккаунтов задан программой
	data := make([]byte, len(buyDiscriminator))
	copy(data, buyDiscriminator)

	accounts := []*solana.AccountMeta{
		{PublicKey: buyer, IsSigner: true, IsWritable: true},
		{PublicKey: l.Seller, IsSigner: false, IsWritable: true},
		{PublicKey: l.Pubkey, IsSigner: false, IsWritable: true},
		{PublicKey: l.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: l.ListingAccount, IsSigner: false, IsWritable: true},
		{PublicKey: buyerNFT, IsSigner: false, IsWritable: true},
		{PublicKey: p.Token.Address, IsSigner: false, IsWritable: false},
		{PublicKey: buyerPayment, IsSigner: false, IsWritable: true},
		{PublicKey: sellerPayment, IsSigner: false, IsWritable: true},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solbc.Token2022ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SPLAssociatedTokenAccountProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return []solana.Instruction{
		createATA,
		solana.NewInstruction(b.programID, accounts, data),
	}, nil
}
