package config

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwner = "0x00000000000000000000000000000000000000aa"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OWNER_ADDRESS", testOwner)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, common.HexToAddress(testOwner), cfg.Owner)
	assert.Equal(t, common.HexToAddress(DefaultVehicleAddress), cfg.VehicleAddress)
	assert.Equal(t, "84000000000000000000000", cfg.MaxSupply.Dec())
	assert.Equal(t, 4*365*24*time.Hour, cfg.LockPeriod)
	assert.Equal(t, "1", cfg.SalePrice.String())
	assert.Equal(t, "STC", cfg.UnitAsset)
	assert.Equal(t, "static", cfg.OracleSource)
	assert.Equal(t, uint8(8), cfg.FeedDecimals)
	assert.Equal(t, uint64(200), cfg.DistributionBatchSize)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingOwner(t *testing.T) {
	t.Setenv("OWNER_ADDRESS", "")
	_, err := Load()
	assert.ErrorContains(t, err, "OWNER_ADDRESS")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"PLATFORM_WALLET": "not-an-address",
		"MAX_SUPPLY":      "-5",
		"LOCK_PERIOD":     "four years",
		"SALE_PRICE":      "0",
		"UNIT_ASSET":      "native",
		"ORACLE_SOURCE":   "http",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("OWNER_ADDRESS", testOwner)
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoad_StaticOracleRejectsMaxAge(t *testing.T) {
	t.Setenv("OWNER_ADDRESS", testOwner)
	t.Setenv("ORACLE_MAX_AGE", "1h")
	_, err := Load()
	assert.ErrorContains(t, err, "ORACLE_MAX_AGE")

	t.Setenv("ORACLE_SOURCE", "redis")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.OracleMaxAge)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OWNER_ADDRESS", testOwner)
	t.Setenv("SALE_PRICE", "12.5")
	t.Setenv("LOCK_PERIOD", "1h")
	t.Setenv("ORACLE_SOURCE", "REDIS")
	t.Setenv("DISTRIBUTION_BATCH_SIZE", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "12.5", cfg.SalePrice.String())
	assert.Equal(t, time.Hour, cfg.LockPeriod)
	assert.Equal(t, "redis", cfg.OracleSource)
	assert.Equal(t, uint64(3), cfg.DistributionBatchSize)
}
