// internal/market/withdraw.go
package market

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain"
	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain/solbc"
	"github.com/rovshanmuradov/nft-marketplace/internal/wallet"
)

// WithdrawParams names the listing to close.
type WithdrawParams struct {
	Listing Listing
}

// Withdraw returns the escrowed NFT to the connected wallet and closes the
// listing. Only the program decides whether the wallet is the seller; a
// rejection surfaces as *TransactionError.
func (b *Builder) Withdraw(ctx context.Context, conn blockchain.Client, w Wallet, p WithdrawParams) (solana.Signature, error) {
	owner, ok := w.PublicKey()
	if !ok {
		return solana.Signature{}, ErrWalletNotConnected
	}

	ix, err := b.WithdrawInstruction(owner, p)
	if err != nil {
		return solana.Signature{}, b.txError("withdraw", solana.Signature{}, err)
	}

	sig, err := b.submit(ctx, conn, w, "withdraw", owner, []solana.Instruction{ix})
	if err != nil {
		return sig, err
	}

	b.logger.Info("Listing withdrawn",
		zap.String("mint", p.Listing.Mint.String()),
		zap.String("signature", sig.String()))
	return sig, nil
}

func (b *Builder) WithdrawInstruction(owner solana.PublicKey, p WithdrawParams) (solana.Instruction, error) {
	l := p.Listing

	ownerNFT, err := wallet.FindATA(owner, l.Mint, solbc.Token2022ProgramID)
	if err != nil {
		return nil, err
	}

	data := make([]byte, len(withdrawDiscriminator))
	copy(data, withdrawDiscriminator)

	accounts := []*solana.AccountMeta{
		{PublicKey: owner, IsSigner: true, IsWritable: true},
		{PublicKey: l.Pubkey, IsSigner: false, IsWritable: true},
		{PublicKey: l.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: l.ListingAccount, IsSigner: false, IsWritable: true},
		{PublicKey: ownerNFT, IsSigner: false, IsWritable: true},
		{PublicKey: solbc.Token2022ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SPLAssociatedTokenAccountProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(b.programID, accounts, data), nil
}
