// internal/market/pricing_test.go
package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	table := DefaultTokenTable()
	c := NewConverter(table)

	usdc, _ := table.Lookup("USDC")
	usdt, _ := table.Lookup("USDT")

	tests := []struct {
		name  string
		price uint64
		token SettlementToken
		want  string
	}{
		{"usdc five units", 5_000_000, usdc, "5.000000"},
		{"usdt five units", 5_000_000, usdt, "5.050000"},
		{"zero price", 0, usdt, "0.000000"},
		{"sub unit price", 250_000, usdc, "0.250000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(c.Convert(tt.price, tt.token)))
		})
	}
}

func TestConvertSymbol(t *testing.T) {
	c := NewConverter(DefaultTokenTable())

	got, err := c.ConvertSymbol(5_000_000, "usdt")
	require.NoError(t, err)
	assert.InDelta(t, 5.05, got, 1e-9)

	got, err = c.ConvertSymbol(10_000_000, "SOL")
	require.NoError(t, err)
	assert.InDelta(t, 0.000567, got, 1e-12)

	_, err = c.ConvertSymbol(5_000_000, "BONK")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestQuoteAll(t *testing.T) {
	c := NewConverter(DefaultTokenTable())

	quotes := c.QuoteAll(2_000_000)

	require.Len(t, quotes, 3)
	assert.Equal(t, "2.000000 USDC", quotes[0].String())
	assert.Equal(t, "2.020000 USDT", quotes[1].String())
	assert.Equal(t, "SOL", quotes[2].Symbol)
	assert.Equal(t, "2.000000", c.FormatBase(2_000_000))
}
