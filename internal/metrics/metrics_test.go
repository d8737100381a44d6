// internal/metrics/metrics_test.go
package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCountsOutcomes(t *testing.T) {
	c := NewCollector()

	c.ObserveTransaction("buy", time.Now(), nil)
	c.ObserveTransaction("buy", time.Now(), errors.New("insufficient funds"))
	c.ObserveTransaction("withdraw", time.Now(), nil)
	c.ObserveRPC("getProgramAccounts", time.Now(), nil)
	c.SetActiveListings(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.transactions.WithLabelValues("buy", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transactions.WithLabelValues("buy", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transactions.WithLabelValues("withdraw", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rpcRequests.WithLabelValues("getProgramAccounts", "success")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.listings))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveRPC("getAccountInfo", time.Now(), nil)
		c.ObserveTransaction("buy", time.Now(), nil)
		c.SetActiveListings(1)
	})
	assert.Nil(t, c.Registry())
	assert.NoError(t, c.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector()
	c.ObserveTransaction("withdraw", time.Now(), nil)

	path := filepath.Join(t.TempDir(), "market.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nft_market_tx_total")
}
