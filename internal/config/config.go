package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultVehicleAddress is the ledger identity of the vehicle itself when VEHICLE_ADDRESS is unset.
const DefaultVehicleAddress = "0x5354430000000000000000000000000000000001"

// Config holds application configuration (env + Viper).
type Config struct {
	Env         string
	Port        string
	DatabaseURL string // Postgres DSN; empty means local SQLite at SQLitePath
	SQLitePath  string
	RedisURL    string

	Owner          common.Address
	PlatformWallet common.Address
	VehicleAddress common.Address
	UnitAsset      string

	MaxSupply             *uint256.Int
	LockPeriod            time.Duration
	SalePrice             decimal.Decimal // quote currency per whole unit
	BuybackPrice          decimal.Decimal
	UnitDecimals          int32
	QuoteDecimals         int32
	PaymentDecimals       int32
	DistributionBatchSize uint64

	OracleSource   string // static | redis
	QuoteUSDRate   string
	PaymentUSDRate string
	FeedDecimals   uint8
	OracleMaxAge   time.Duration

	CustodyWebhookSecret string
	FrontendURLEndsWith  string
	DevPassword          string
	HealthAdminKey       string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SQLITE_PATH", "vehicle.db")
	v.SetDefault("VEHICLE_ADDRESS", DefaultVehicleAddress)
	v.SetDefault("UNIT_ASSET", "STC")
	v.SetDefault("MAX_SUPPLY", "84000000000000000000000")
	v.SetDefault("LOCK_PERIOD", (4 * 365 * 24 * time.Hour).String())
	v.SetDefault("SALE_PRICE", "1")
	v.SetDefault("BUYBACK_PRICE", "1")
	v.SetDefault("UNIT_DECIMALS", 18)
	v.SetDefault("QUOTE_DECIMALS", 18)
	v.SetDefault("PAYMENT_DECIMALS", 18)
	v.SetDefault("DISTRIBUTION_BATCH_SIZE", 200)
	v.SetDefault("ORACLE_SOURCE", "static")
	v.SetDefault("QUOTE_USD_RATE", "100000000")
	v.SetDefault("PAYMENT_USD_RATE", "100000000")
	v.SetDefault("FEED_DECIMALS", 8)
	v.SetDefault("ORACLE_MAX_AGE", "0s")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:                   v.GetString("APP_ENV"),
		Port:                  v.GetString("PORT"),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		SQLitePath:            v.GetString("SQLITE_PATH"),
		RedisURL:              v.GetString("REDIS_URL"),
		UnitAsset:             strings.TrimSpace(v.GetString("UNIT_ASSET")),
		UnitDecimals:          v.GetInt32("UNIT_DECIMALS"),
		QuoteDecimals:         v.GetInt32("QUOTE_DECIMALS"),
		PaymentDecimals:       v.GetInt32("PAYMENT_DECIMALS"),
		DistributionBatchSize: v.GetUint64("DISTRIBUTION_BATCH_SIZE"),
		OracleSource:          strings.ToLower(v.GetString("ORACLE_SOURCE")),
		QuoteUSDRate:          v.GetString("QUOTE_USD_RATE"),
		PaymentUSDRate:        v.GetString("PAYMENT_USD_RATE"),
		FeedDecimals:          uint8(v.GetUint("FEED_DECIMALS")),
		CustodyWebhookSecret:  v.GetString("CUSTODY_WEBHOOK_SECRET"),
		FrontendURLEndsWith:   v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:           v.GetString("DEV_PASSWORD"),
		HealthAdminKey:        v.GetString("HEALTH_ADMIN_KEY"),
	}

	var err error
	if cfg.Owner, err = address(v, "OWNER_ADDRESS", true); err != nil {
		return nil, err
	}
	if cfg.PlatformWallet, err = address(v, "PLATFORM_WALLET", false); err != nil {
		return nil, err
	}
	if cfg.VehicleAddress, err = address(v, "VEHICLE_ADDRESS", true); err != nil {
		return nil, err
	}
	if cfg.MaxSupply, err = uint256.FromDecimal(v.GetString("MAX_SUPPLY")); err != nil {
		return nil, fmt.Errorf("config: MAX_SUPPLY: %w", err)
	}
	if cfg.LockPeriod, err = time.ParseDuration(v.GetString("LOCK_PERIOD")); err != nil {
		return nil, fmt.Errorf("config: LOCK_PERIOD: %w", err)
	}
	if cfg.OracleMaxAge, err = time.ParseDuration(v.GetString("ORACLE_MAX_AGE")); err != nil {
		return nil, fmt.Errorf("config: ORACLE_MAX_AGE: %w", err)
	}
	if cfg.SalePrice, err = price(v, "SALE_PRICE"); err != nil {
		return nil, err
	}
	if cfg.BuybackPrice, err = price(v, "BUYBACK_PRICE"); err != nil {
		return nil, err
	}
	if cfg.UnitAsset == "" || strings.EqualFold(cfg.UnitAsset, "native") {
		return nil, fmt.Errorf("config: UNIT_ASSET %q is reserved or empty", cfg.UnitAsset)
	}
	if cfg.DistributionBatchSize == 0 {
		return nil, fmt.Errorf("config: DISTRIBUTION_BATCH_SIZE must be positive")
	}
	if cfg.OracleSource != "static" && cfg.OracleSource != "redis" {
		return nil, fmt.Errorf("config: ORACLE_SOURCE must be static or redis, got %q", cfg.OracleSource)
	}
	if cfg.OracleSource == "static" && cfg.OracleMaxAge > 0 {
		return nil, fmt.Errorf("config: ORACLE_MAX_AGE applies to redis feeds only; static rates never refresh")
	}
	return cfg, nil
}

func address(v *viper.Viper, key string, required bool) (common.Address, error) {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		if required {
			return common.Address{}, fmt.Errorf("config: %s is required", key)
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("config: %s is not a hex address: %q", key, s)
	}
	return common.HexToAddress(s), nil
}

func price(v *viper.Viper, key string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: %s: %w", key, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("config: %s must be positive", key)
	}
	return d, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
