// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"
)

// TokenConfig is one row of the settlement token table.
type TokenConfig struct {
	Symbol  string  `mapstructure:"symbol" yaml:"symbol"`
	Address string  `mapstructure:"address" yaml:"address"`
	Rate    float64 `mapstructure:"rate" yaml:"rate"`
}

type Config struct {
	RPCList           []string      `mapstructure:"rpc_list"`
	ProgramID         string        `mapstructure:"program_id"`
	Commitment        string        `mapstructure:"commitment"`
	ConfirmTimeoutMs  int           `mapstructure:"confirm_timeout_ms"`
	MetadataTimeoutMs int           `mapstructure:"metadata_timeout_ms"`
	DebugLogging      bool          `mapstructure:"debug_logging"`
	KeypairPath       string        `mapstructure:"keypair_path"`
	TokensFile        string        `mapstructure:"tokens_file"`
	BaseUnitDivisor   uint64        `mapstructure:"base_unit_divisor"`
	SettlementTokens  []TokenConfig `mapstructure:"settlement_tokens"`
	JournalDSN        string        `mapstructure:"journal_dsn"`
}

const (
	DefaultCommitment        = "confirmed"
	DefaultConfirmTimeoutMs  = 30000
	DefaultMetadataTimeoutMs = 5000
	DefaultBaseUnitDivisor   = 1_000_000
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"commitment":          DefaultCommitment,
		"confirm_timeout_ms":  DefaultConfirmTimeoutMs,
		"metadata_timeout_ms": DefaultMetadataTimeoutMs,
		"base_unit_divisor":   DefaultBaseUnitDivisor,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

// ProgramPublicKey returns the marketplace program address.
func (c *Config) ProgramPublicKey() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(c.ProgramID)
}

// CommitmentType maps the configured commitment onto the rpc constant.
func (c *Config) CommitmentType() rpc.CommitmentType {
	switch c.Commitment {
	case "processed":
		return rpc.CommitmentProcessed
	case "finalized":
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}

func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutMs) * time.Millisecond
}

func (c *Config) MetadataTimeout() time.Duration {
	return time.Duration(c.MetadataTimeoutMs) * time.Millisecond
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if cfg.ProgramID == "" {
		return errors.New("missing program_id in configuration")
	}
	if _, err := cfg.ProgramPublicKey(); err != nil {
		return fmt.Errorf("invalid program_id: %w", err)
	}
	switch cfg.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("invalid commitment %q", cfg.Commitment)
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	for _, t := range cfg.SettlementTokens {
		if t.Symbol == "" {
			return errors.New("settlement token without symbol")
		}
		if _, err := solana.PublicKeyFromBase58(t.Address); err != nil {
			return fmt.Errorf("settlement token %s: invalid address: %w", t.Symbol, err)
		}
		if t.Rate <= 0 {
			return fmt.Errorf("settlement token %s: rate must be positive", t.Symbol)
		}
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.ConfirmTimeoutMs <= 0 {
		return errors.New("invalid confirm_timeout_ms")
	}
	if cfg.MetadataTimeoutMs <= 0 {
		return errors.New("invalid metadata_timeout_ms")
	}
	if cfg.BaseUnitDivisor == 0 {
		return errors.New("invalid base_unit_divisor")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("NFT_MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if programID := v.GetString("PROGRAM_ID"); programID != "" {
		cfg.ProgramID = programID
	}

	if keypair := v.GetString("KEYPAIR"); keypair != "" {
		cfg.KeypairPath = keypair
	}

	if dsn := v.GetString("JOURNAL_DSN"); dsn != "" {
		cfg.JournalDSN = dsn
	}

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, u := range rpcs {
			clean := strings.TrimSpace(u)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
	return nil
}
