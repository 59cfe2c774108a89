package vehicle

import (
	"math/big"
	"testing"

	"stocktochain-backend/internal/application/oracle"
	"stocktochain-backend/internal/domain"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyback_SoleInvestorEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.openSale(t, alice)
	f.buy(t, alice, 1)

	require.NoError(t, f.svc.Transfer(f.ctx, alice, vehicle, units(1)))
	f.advanceTo(t, domain.StatusBuybackActive)

	res, err := f.svc.BuybackBatch(f.ctx, owner, 0, 1, units(1))
	require.NoError(t, err)
	assert.True(t, res.Finalized)
	assert.Equal(t, 1, res.Investors)
	assert.Equal(t, units(1), res.Paid.U256())
	assert.Equal(t, units(1), res.Burned.U256())

	assert.True(t, f.supply(t).IsZero())
	assert.Equal(t, units(1), f.native(t, alice))

	inv, err := f.svc.Investor(f.ctx, alice)
	require.NoError(t, err)
	assert.True(t, inv.TotalUnitsPurchased.IsZero())
	assert.Equal(t, units(1), inv.RepurchasedUnits.U256())

	st, err := f.svc.State(f.ctx)
	require.NoError(t, err)
	assert.True(t, st.BuybackFinalized)

	_, err = f.svc.BuybackBatch(f.ctx, owner, 0, 1, new(uint256.Int))
	assert.ErrorIs(t, err, ErrBuybackFinalized)
}

func TestBuyback_Preconditions(t *testing.T) {
	f := newFixture(t)
	f.openSale(t, alice, bob)
	f.buy(t, alice, 1)
	f.buy(t, bob, 1)

	_, err := f.svc.BuybackBatch(f.ctx, owner, 0, 2, units(2))
	assert.ErrorIs(t, err, ErrBuybackNotActive)
	_, err = f.svc.BeginBuyback(f.ctx, owner, units(2))
	assert.ErrorIs(t, err, ErrBuybackNotActive)

	f.advanceTo(t, domain.StatusBuybackActive)

	_, err = f.svc.BuybackBatch(f.ctx, alice, 0, 2, units(2))
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = f.svc.BuybackBatch(f.ctx, owner, 1, 1, units(2))
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = f.svc.BuybackBatch(f.ctx, owner, 0, 3, units(2))
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = f.svc.BuybackBatch(f.ctx, owner, 0, 1, new(uint256.Int).Sub(units(2), uint256.NewInt(1)))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	require.NoError(t, f.svc.Pause(f.ctx, owner))
	_, err = f.svc.BuybackBatch(f.ctx, owner, 0, 1, units(2))
	assert.ErrorIs(t, err, ErrPaused)
	require.NoError(t, f.svc.Unpause(f.ctx, owner))

	st, err := f.svc.State(f.ctx)
	require.NoError(t, err)
	assert.False(t, st.BuybackBegun())
	assert.True(t, f.native(t, alice).IsZero())
	assert.Equal(t, units(2), f.native(t, vehicle))
}

func TestBuyback_FinalBatchNeedsReturnedUnits(t *testing.T) {
	f := newFixture(t)
	f.openSale(t, alice)
	f.buy(t, alice, 2)
	f.advanceTo(t, domain.StatusBuybackActive)

	_, err := f.svc.BuybackBatch(f.ctx, owner, 0, 1, units(2))
	assert.ErrorIs(t, err, ErrNoTokensToBuyBack)

	// partial return is not enough either
	require.NoError(t, f.svc.Transfer(f.ctx, alice, vehicle, units(1)))
	_, err = f.svc.BuybackBatch(f.ctx, owner, 0, 1, units(2))
	assert.ErrorIs(t, err, ErrNoTokensToBuyBack)

	assert.True(t, f.native(t, alice).IsZero())
	inv, err := f.svc.Investor(f.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, units(2), inv.TotalUnitsPurchased.U256())
	st, err := f.svc.State(f.ctx)
	require.NoError(t, err)
	assert.False(t, st.BuybackBegun())
}

func TestBuyback_ExplicitBeginFreezesPriceAndRerunsPayNothing(t *testing.T) {
	f := newFixture(t)
	f.openSale(t, alice, bob, carol)
	f.buy(t, alice, 1)
	f.buy(t, bob, 1)
	f.buy(t, carol, 2)
	f.advanceTo(t, domain.StatusBuybackActive)

	st, err := f.svc.BeginBuyback(f.ctx, owner, units(5))
	require.NoError(t, err)
	assert.Equal(t, units(4), st.FinalRepurchasePrice.U256())
	assert.Equal(t, units(4), st.FinalSupplySnapshot.U256())

	_, err = f.svc.BeginBuyback(f.ctx, owner, units(5))
	assert.ErrorIs(t, err, ErrBuybackBegun)

	// a later price move does not change the frozen price
	f.quote.Update(big.NewInt(300000000))

	res, err := f.svc.BuybackBatch(f.ctx, owner, 0, 2, new(uint256.Int))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Investors)
	assert.Equal(t, units(2), res.Paid.U256())
	assert.False(t, res.Finalized)

	res, err = f.svc.BuybackBatch(f.ctx, owner, 0, 2, new(uint256.Int))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Investors)
	assert.True(t, res.Paid.IsZero())
	assert.Equal(t, units(1), f.native(t, alice))
	assert.Equal(t, units(1), f.native(t, bob))

	require.NoError(t, f.svc.Transfer(f.ctx, alice, vehicle, units(1)))
	require.NoError(t, f.svc.Transfer(f.ctx, bob, vehicle, units(1)))
	require.NoError(t, f.svc.Transfer(f.ctx, carol, vehicle, units(2)))

	res, err = f.svc.BuybackBatch(f.ctx, owner, 1, 3, new(uint256.Int))
	require.NoError(t, err)
	assert.True(t, res.Finalized)
	assert.Equal(t, 1, res.Investors)
	assert.Equal(t, units(2), res.Paid.U256())
	assert.Equal(t, units(4), res.Burned.U256())
	assert.Equal(t, units(2), f.native(t, carol))
	assert.True(t, f.supply(t).IsZero())

	// sale proceeds and the excess of the begin funds stay with the vehicle
	assert.Equal(t, units(5), f.native(t, vehicle))
}

func TestBuyback_RepurchasedInvestorsSkipLaterDistributions(t *testing.T) {
	f := newFixture(t)
	f.openSale(t, alice, bob)
	f.buy(t, alice, 1)
	f.buy(t, bob, 1)
	f.advanceTo(t, domain.StatusBuybackActive)

	_, err := f.svc.BuybackBatch(f.ctx, owner, 0, 1, units(2))
	require.NoError(t, err)

	_, err = f.svc.Distribute(f.ctx, owner, uint256.NewInt(100))
	require.NoError(t, err)
	assert.True(t, unclaimed(t, f, alice).IsZero())
	assert.Equal(t, uint64(50), unclaimed(t, f, bob).Uint64())
}

func TestBuyback_InvalidOracleOnBegin(t *testing.T) {
	f := newFixture(t)
	f.openSale(t, alice)
	f.buy(t, alice, 1)
	f.advanceTo(t, domain.StatusBuybackActive)
	f.quote.Update(big.NewInt(-1))

	_, err := f.svc.BeginBuyback(f.ctx, owner, units(1))
	assert.ErrorIs(t, err, oracle.ErrInvalidPrice)
}
