package database

import (
	"testing"

	"stocktochain-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_MigratesAndRoundTripsAmounts(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	big, err := domain.ParseAmount("84000000000000000000000")
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.LedgerSupply{Asset: "STC", Total: big}).Error)

	var got domain.LedgerSupply
	require.NoError(t, db.Where("asset = ?", "STC").First(&got).Error)
	assert.Equal(t, "84000000000000000000000", got.Total.String())
}
