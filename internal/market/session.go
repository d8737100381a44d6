// internal/market/session.go
package market

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/nft-marketplace/internal/blockchain"
)

// RequestState is the lifecycle of one product view load.
type RequestState int

const (
	StateIdle RequestState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("RequestState(%d)", int(s))
	}
}

// ListingState only leaves Active after a confirmed transaction.
type ListingState int

const (
	ListingActive ListingState = iota
	ListingSold
	ListingWithdrawn
)

func (s ListingState) String() string {
	switch s {
	case ListingActive:
		return "active"
	case ListingSold:
		return "sold"
	case ListingWithdrawn:
		return "withdrawn"
	default:
		return fmt.Sprintf("ListingState(%d)", int(s))
	}
}

// Action is what a given wallet can do with the product.
type Action int

const (
	ActionConnect Action = iota
	ActionBuy
	ActionWithdraw
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionWithdraw:
		return "withdraw"
	default:
		return "connect"
	}
}

// View is a snapshot of the session.
type View struct {
	State          RequestState
	Err            error
	Detail         *ProductDetail
	ListingState   ListingState
	Token          SettlementToken
	DisplayedPrice float64
}

// Session holds the request state of one product page: load, token choice,
// and the buy or withdraw that closes the listing.
type Session struct {
	mint      solana.PublicKey
	conn      blockchain.Client
	resolver  *Resolver
	builder   *Builder
	converter *Converter
	logger    *zap.Logger

	mu           sync.Mutex
	state        RequestState
	err          error
	detail       *ProductDetail
	listingState ListingState
	token        SettlementToken
	displayed    float64
}

func NewSession(
	mint solana.PublicKey,
	conn blockchain.Client,
	resolver *Resolver,
	builder *Builder,
	converter *Converter,
	logger *zap.Logger,
) *Session {
	return &Session{
		mint:      mint,
		conn:      conn,
		resolver:  resolver,
		builder:   builder,
		converter: converter,
		logger:    logger.Named("session").With(zap.String("mint", mint.String())),
		token:     converter.Table().Default(),
	}
}

// Load fetches the product. A failed load stays Failed until Load is called again.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.err = nil
	s.mu.Unlock()

	detail, err := s.resolver.Lookup(ctx, s.conn, s.mint)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateFailed
		s.err = err
		s.logger.Warn("Product load failed", zap.Error(err))
		return err
	}
	s.state = StateReady
	s.detail = detail
	s.listingState = ListingActive
	s.displayed = s.converter.Convert(detail.Price, s.token)
	return nil
}

// SelectToken switches the settlement token and recomputes the displayed price.
func (s *Session) SelectToken(symbol string) error {
	tok, ok := s.converter.Table().Lookup(symbol)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	if s.detail != nil {
		s.displayed = s.converter.Convert(s.detail.Price, tok)
	}
	return nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		State:          s.state,
		Err:            s.err,
		Detail:         s.detail,
		ListingState:   s.listingState,
		Token:          s.token,
		DisplayedPrice: s.displayed,
	}
}

// Action reports Withdraw when the wallet is the seller, Buy for any other
// connected wallet and Connect otherwise.
func (s *Session) Action(w Wallet) Action {
	pub, ok := w.PublicKey()
	if !ok {
		return ActionConnect
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail != nil && s.detail.Seller.Equals(pub) {
		return ActionWithdraw
	}
	return ActionBuy
}

// Buy purchases with the selected token; Sold is set only after confirmation.
func (s *Session) Buy(ctx context.Context, w Wallet) (solana.Signature, error) {
	detail, token, err := s.active()
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.builder.Buy(ctx, s.conn, w, BuyParams{Listing: detail.Listing, Token: token})
	if err != nil {
		return sig, err
	}
	s.close(ListingSold)
	return sig, nil
}

// Withdraw closes the listing; Withdrawn is set only after confirmation.
func (s *Session) Withdraw(ctx context.Context, w Wallet) (solana.Signature, error) {
	detail, _, err := s.active()
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.builder.Withdraw(ctx, s.conn, w, WithdrawParams{Listing: detail.Listing})
	if err != nil {
		return sig, err
	}
	s.close(ListingWithdrawn)
	return sig, nil
}

func (s *Session) active() (*ProductDetail, SettlementToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady || s.detail == nil {
		return nil, SettlementToken{}, ErrNotLoaded
	}
	if s.listingState != ListingActive {
		return nil, SettlementToken{}, fmt.Errorf("%w: %s", ErrListingClosed, s.listingState)
	}
	return s.detail, s.token, nil
}

func (s *Session) close(next ListingState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listingState = next
	s.logger.Info("Listing closed", zap.String("state", next.String()))
}
