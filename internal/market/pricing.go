// internal/market/pricing.go
package market

import (
	"fmt"
	"strconv"
)

// RateSource supplies exchange rates per settlement symbol. TokenTable is the
// only implementation; a live price feed would plug in here.
type RateSource interface {
	Rate(symbol string) (float64, error)
}

// Converter turns base-unit listing prices into settlement token amounts.
type Converter struct {
	table TokenTable
	rates RateSource
}

func NewConverter(table TokenTable) *Converter {
	return &Converter{table: table, rates: table}
}

// Convert returns (basePrice / divisor) * token.Rate.
func (c *Converter) Convert(basePrice uint64, token SettlementToken) float64 {
	return float64(basePrice) / float64(c.table.BaseUnitDivisor) * token.Rate
}

// ConvertSymbol converts using the rate the RateSource reports for symbol.
func (c *Converter) ConvertSymbol(basePrice uint64, symbol string) (float64, error) {
	rate, err := c.rates.Rate(symbol)
	if err != nil {
		return 0, err
	}
	return float64(basePrice) / float64(c.table.BaseUnitDivisor) * rate, nil
}

func (c *Converter) Table() TokenTable {
	return c.table
}

// FormatPrice renders an amount with six decimals.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// FormatBase renders a base-unit price as a displayed amount, e.g. 5000000 -> "5.000000".
func (c *Converter) FormatBase(basePrice uint64) string {
	return FormatPrice(float64(basePrice) / float64(c.table.BaseUnitDivisor))
}

// Quote is one priced line of a listing.
type Quote struct {
	Symbol string
	Amount float64
}

func (q Quote) String() string {
	return fmt.Sprintf("%s %s", FormatPrice(q.Amount), q.Symbol)
}

// QuoteAll prices a listing in every settlement token of the table.
func (c *Converter) QuoteAll(basePrice uint64) []Quote {
	quotes := make([]Quote, 0, len(c.table.Tokens))
	for _, tok := range c.table.Tokens {
		quotes = append(quotes, Quote{Symbol: tok.Symbol, Amount: c.Convert(basePrice, tok)})
	}
	return quotes
}
