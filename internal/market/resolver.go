// internal/market/resolver.go
package market

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain"
	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain/solbc"
)

// ProductDetail is the read-only view of one listed NFT.
type ProductDetail struct {
	Mint    solana.PublicKey
	Name    string
	Image   string
	Group   solana.PublicKey
	Seller  solana.PublicKey
	Price   uint64
	Listing Listing
}

// MetadataSource reads mint metadata. Satisfied by *solbc.MetadataReader.
type MetadataSource interface {
	GetTokenMetadata(ctx context.Context, client blockchain.Client, mint solana.PublicKey) (*solbc.TokenMetadata, error)
}

// Resolver joins listing data with mint metadata.
type Resolver struct {
	directory *Directory
	metadata  MetadataSource
	logger    *zap.Logger
}

func NewResolver(directory *Directory, metadata MetadataSource, logger *zap.Logger) *Resolver {
	return &Resolver{
		directory: directory,
		metadata:  metadata,
		logger:    logger.Named("resolver"),
	}
}

// Resolve builds the product view of mint from an already fetched listing.
// A nil listing, or one for another mint, is a NotFoundError.
func (r *Resolver) Resolve(
	ctx context.Context,
	conn blockchain.Client,
	mint solana.PublicKey,
	listing *Listing,
) (*ProductDetail, error) {
	if listing == nil || !listing.Mint.Equals(mint) {
		return nil, &NotFoundError{Mint: mint}
	}

	md, err := r.metadata.GetTokenMetadata(ctx, conn, mint)
	if err != nil {
		return nil, &FetchError{Op: "mint metadata", Err: err}
	}
	return r.detail(md, *listing), nil
}

// Lookup scans the directory and reads the mint metadata concurrently, then
// joins them. The listing scan decides NotFound before metadata errors count.
func (r *Resolver) Lookup(ctx context.Context, conn blockchain.Client, mint solana.PublicKey) (*ProductDetail, error) {
	var (
		listings []Listing
		md       *solbc.TokenMetadata
		mdErr    error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		listings, err = r.directory.ListAll(gctx, conn)
		return err
	})
	g.Go(func() error {
		md, mdErr = r.metadata.GetTokenMetadata(gctx, conn, mint)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	listing, ok := FindByMint(listings, mint)
	if !ok {
		return nil, &NotFoundError{Mint: mint}
	}
	if mdErr != nil {
		return nil, &FetchError{Op: "mint metadata", Err: mdErr}
	}
	return r.detail(md, *listing), nil
}

func (r *Resolver) detail(md *solbc.TokenMetadata, listing Listing) *ProductDetail {
	r.logger.Info("Listing resolved",
		zap.String("mint", listing.Mint.String()),
		zap.String("listing", listing.Pubkey.String()))

	return &ProductDetail{
		Mint:    listing.Mint,
		Name:    md.Name,
		Image:   md.Image,
		Group:   md.Group,
		Seller:  listing.Seller,
		Price:   listing.Price,
		Listing: listing,
	}
}
