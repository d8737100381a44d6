// internal/market/tokens.go
package market

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"

	"github.com/rovshanmuradov/nft-marketplace/internal/config"
)

// NativeMint identifies settlement in native SOL.
var NativeMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// SettlementToken is a currency a listing can be paid in.
type SettlementToken struct {
	Symbol  string
	Address solana.PublicKey
	Rate    float64
}

// IsNative reports whether payment moves lamports instead of SPL tokens.
func (t SettlementToken) IsNative() bool {
	return t.Address.Equals(NativeMint)
}

// TokenTable is the settlement currency table, loaded once at startup.
type TokenTable struct {
	BaseUnitDivisor uint64
	Tokens          []SettlementToken
}

// DefaultTokenTable returns the built-in USDC / USDT / SOL table.
func DefaultTokenTable() TokenTable {
	return TokenTable{
		BaseUnitDivisor: config.DefaultBaseUnitDivisor,
		Tokens: []SettlementToken{
			{Symbol: "USDC", Address: solana.MustPublicKeyFromBase58("Gh9ZwEmdLJ8DscKNTkTqPbNwLNNBjuSzaG9Vp2KGtKJr"), Rate: 1},
			{Symbol: "USDT", Address: solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"), Rate: 1.01},
			{Symbol: "SOL", Address: NativeMint, Rate: 0.0000567},
		},
	}
}

// Lookup finds a token by symbol, case-insensitively.
func (t TokenTable) Lookup(symbol string) (SettlementToken, bool) {
	for _, tok := range t.Tokens {
		if strings.EqualFold(tok.Symbol, symbol) {
			return tok, true
		}
	}
	return SettlementToken{}, false
}

// Rate implements RateSource with the static table.
func (t TokenTable) Rate(symbol string) (float64, error) {
	tok, ok := t.Lookup(symbol)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
	}
	return tok.Rate, nil
}

// Default is the token selected before the user picks one.
func (t TokenTable) Default() SettlementToken {
	if len(t.Tokens) == 0 {
		return SettlementToken{}
	}
	return t.Tokens[0]
}

func (t TokenTable) Validate() error {
	if t.BaseUnitDivisor == 0 {
		return errors.New("base unit divisor must be positive")
	}
	if len(t.Tokens) == 0 {
		return errors.New("token table is empty")
	}
	seen := make(map[string]struct{}, len(t.Tokens))
	for _, tok := range t.Tokens {
		key := strings.ToUpper(tok.Symbol)
		if key == "" {
			return errors.New("token without symbol")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate token %s", tok.Symbol)
		}
		seen[key] = struct{}{}
		if tok.Rate <= 0 {
			return fmt.Errorf("token %s: rate must be positive", tok.Symbol)
		}
	}
	return nil
}

type tokenFile struct {
	BaseUnitDivisor uint64               `yaml:"base_unit_divisor"`
	Tokens          []config.TokenConfig `yaml:"tokens"`
}

// LoadTokenTable reads a YAML token table file.
func LoadTokenTable(path string) (TokenTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TokenTable{}, fmt.Errorf("failed to read token table: %w", err)
	}

	var f tokenFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return TokenTable{}, fmt.Errorf("failed to parse token table: %w", err)
	}
	if f.BaseUnitDivisor == 0 {
		f.BaseUnitDivisor = config.DefaultBaseUnitDivisor
	}

	return buildTable(f.BaseUnitDivisor, f.Tokens)
}

// TokenTableFromConfig resolves the table in order: tokens_file, then
// settlement_tokens, then the built-in defaults.
func TokenTableFromConfig(cfg *config.Config) (TokenTable, error) {
	if cfg.TokensFile != "" {
		return LoadTokenTable(cfg.TokensFile)
	}
	if len(cfg.SettlementTokens) == 0 {
		table := DefaultTokenTable()
		if cfg.BaseUnitDivisor != 0 {
			table.BaseUnitDivisor = cfg.BaseUnitDivisor
		}
		return table, nil
	}
	return buildTable(cfg.BaseUnitDivisor, cfg.SettlementTokens)
}

func buildTable(divisor uint64, rows []config.TokenConfig) (TokenTable, error) {
	table := TokenTable{BaseUnitDivisor: divisor}
	for _, row := range rows {
		addr, err := solana.PublicKeyFromBase58(row.Address)
		if err != nil {
			return TokenTable{}, fmt.Errorf("token %s: invalid address: %w", row.Symbol, err)
		}
		table.Tokens = append(table.Tokens, SettlementToken{
			Symbol:  row.Symbol,
			Address: addr,
			Rate:    row.Rate,
		})
	}
	if err := table.Validate(); err != nil {
		return TokenTable{}, err
	}
	return table, nil
}
