// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validConfigYAML = `
rpc_list:
  - https://api.devnet.solana.com
  - https://rpc.ankr.com/solana_devnet
program_id: 6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P
commitment: finalized
confirm_timeout_ms: 20000
debug_logging: true
settlement_tokens:
  - symbol: USDC
    address: Gh9ZwEmdLJ8DscKNTkTqPbNwLNNBjuSzaG9Vp2KGtKJr
    rate: 1
  - symbol: USDT
    address: Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB
    rate: 1.01
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "valid config",
			file:    "config.yaml",
			content: validConfigYAML,
			check: func(t *testing.T, cfg *Config) {
				assert.Len(t, cfg.RPCList, 2)
				assert.Equal(t, rpc.CommitmentFinalized, cfg.CommitmentType())
				assert.Equal(t, 20*time.Second, cfg.ConfirmTimeout())
				assert.Equal(t, time.Duration(DefaultMetadataTimeoutMs)*time.Millisecond, cfg.MetadataTimeout())
				assert.Equal(t, uint64(DefaultBaseUnitDivisor), cfg.BaseUnitDivisor)
				require.Len(t, cfg.SettlementTokens, 2)
				assert.Equal(t, "USDT", cfg.SettlementTokens[1].Symbol)
				assert.InDelta(t, 1.01, cfg.SettlementTokens[1].Rate, 1e-12)
			},
		},
		{
			name:    "json config",
			file:    "config.json",
			content: `{"rpc_list": ["http://127.0.0.1:8899"], "program_id": "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultCommitment, cfg.Commitment)
				assert.Equal(t, rpc.CommitmentConfirmed, cfg.CommitmentType())
			},
		},
		{
			name:    "missing program id",
			file:    "config.json",
			content: `{"rpc_list": ["https://api.devnet.solana.com"]}`,
			wantErr: true,
		},
		{
			name:    "bad rpc scheme",
			file:    "config.json",
			content: `{"rpc_list": ["ftp://example.com"], "program_id": "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"}`,
			wantErr: true,
		},
		{
			name:    "bad commitment",
			file:    "config.json",
			content: `{"rpc_list": ["https://api.devnet.solana.com"], "program_id": "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P", "commitment": "eventual"}`,
			wantErr: true,
		},
		{
			name: "non positive token rate",
			file: "config.json",
			content: `{"rpc_list": ["https://api.devnet.solana.com"], "program_id": "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P",
				"settlement_tokens": [{"symbol": "USDC", "address": "Gh9ZwEmdLJ8DscKNTkTqPbNwLNNBjuSzaG9Vp2KGtKJr", "rate": 0}]}`,
			wantErr: true,
		},
		{
			name:    "invalid json syntax",
			file:    "config.json",
			content: "{invalid json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.file, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("NFT_MARKET_RPC_LIST", " http://localhost:8899 , http://localhost:8900 ,")
	t.Setenv("NFT_MARKET_KEYPAIR", "/tmp/id.json")
	t.Setenv("NFT_MARKET_JOURNAL_DSN", "postgres://market@localhost/market")

	cfg, err := LoadConfig(writeConfig(t, "config.yaml", validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:8899", "http://localhost:8900"}, cfg.RPCList)
	assert.Equal(t, "/tmp/id.json", cfg.KeypairPath)
	assert.Equal(t, "postgres://market@localhost/market", cfg.JournalDSN)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
