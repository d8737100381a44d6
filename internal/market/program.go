// internal/market/program.go
package market

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const listingSeed = "listing"

// ListingAccountSize is discriminator + seller + mint + escrow + price + bump.
const ListingAccountSize = 8 + 32*3 + 8 + 1

var (
	// ListingDiscriminator prefixes every Listing account owned by the program.
	ListingDiscriminator = accountDiscriminator("Listing")

	buyDiscriminator      = instructionDiscriminator("buy")
	withdrawDiscriminator = instructionDiscriminator("withdraw")
)

func accountDiscriminator(name string) []byte {
	h := sha256.Sum256([]byte("account:" + name))
	return h[:8]
}

func instructionDiscriminator(name string) []byte {
	h := sha256.Sum256([]byte("global:" + name))
	return h[:8]
}

// listingAccount mirrors the on-chain Listing layout after the discriminator.
type listingAccount struct {
	Seller solana.PublicKey
	Mint   solana.PublicKey
	Escrow solana.PublicKey
	Price  uint64
	Bump   uint8
}

// DecodeListing parses a raw Listing account.
func DecodeListing(pubkey solana.PublicKey, data []byte) (Listing, error) {
	if len(data) < ListingAccountSize {
		return Listing{}, fmt.Errorf("listing %s: invalid data length %d", pubkey, len(data))
	}
	if !bytes.Equal(data[:8], ListingDiscriminator) {
		return Listing{}, fmt.Errorf("listing %s: discriminator mismatch", pubkey)
	}

	var acc listingAccount
	if err := bin.NewBorshDecoder(data[8:]).Decode(&acc); err != nil {
		return Listing{}, fmt.Errorf("listing %s: %w", pubkey, err)
	}

	return Listing{
		Pubkey:         pubkey,
		Mint:           acc.Mint,
		Seller:         acc.Seller,
		ListingAccount: acc.Escrow,
		Price:          acc.Price,
	}, nil
}

// EncodeListing produces the account bytes DecodeListing reads.
func EncodeListing(l Listing, bump uint8) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(ListingDiscriminator)
	err := bin.NewBorshEncoder(buf).Encode(listingAccount{
		Seller: l.Seller,
		Mint:   l.Mint,
		Escrow: l.ListingAccount,
		Price:  l.Price,
		Bump:   bump,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FindListingAddress derives the listing PDA of a mint.
func FindListingAddress(programID, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte(listingSeed), mint.Bytes()},
		programID,
	)
}
