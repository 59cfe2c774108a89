package oracle

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/holiman/uint256"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitFeed() *StaticFeed {
	return NewStaticFeed(big.NewInt(100000000), 8)
}

func newAdapter(quote, payment Feed) *Adapter {
	return &Adapter{Quote: quote, Payment: payment, QuoteDecimals: 18, PaymentDecimals: 18}
}

func TestConvert_UnitRatesAreIdentity(t *testing.T) {
	a := newAdapter(unitFeed(), unitFeed())
	out, err := a.Convert(context.Background(), uint256.NewInt(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), out.Uint64())
}

func TestConvert_ScalesByRatesAndDecimals(t *testing.T) {
	// 1 quote = 1.10 USD (8 decimals), 1 payment = 0.55 USD (6 decimals) => 1 quote buys 2 payment.
	quote := NewStaticFeed(big.NewInt(110000000), 8)
	payment := NewStaticFeed(big.NewInt(550000), 6)
	a := &Adapter{Quote: quote, Payment: payment, QuoteDecimals: 2, PaymentDecimals: 18}

	out, err := a.Convert(context.Background(), uint256.NewInt(300)) // 3.00 quote
	require.NoError(t, err)
	assert.Equal(t, "6000000000000000000", out.Dec())
}

func TestConvert_RoundsDown(t *testing.T) {
	quote := NewStaticFeed(big.NewInt(1), 0)
	payment := NewStaticFeed(big.NewInt(3), 0)
	a := newAdapter(quote, payment)
	out, err := a.Convert(context.Background(), uint256.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), out.Uint64())
}

func TestConvert_InvalidReadings(t *testing.T) {
	for _, v := range []int64{0, -5} {
		bad := NewStaticFeed(big.NewInt(v), 8)
		_, err := newAdapter(bad, unitFeed()).Convert(context.Background(), uint256.NewInt(1))
		assert.True(t, errors.Is(err, ErrInvalidPrice), "quote %d", v)

		_, err = newAdapter(unitFeed(), bad).Convert(context.Background(), uint256.NewInt(1))
		assert.True(t, errors.Is(err, ErrInvalidPrice), "payment %d", v)
	}
}

func TestConvert_ReReadsEveryCall(t *testing.T) {
	quote := unitFeed()
	a := newAdapter(quote, unitFeed())
	_, err := a.Convert(context.Background(), uint256.NewInt(1))
	require.NoError(t, err)

	quote.Update(big.NewInt(0))
	_, err = a.Convert(context.Background(), uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	quote.Update(big.NewInt(200000000))
	out, err := a.Convert(context.Background(), uint256.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), out.Uint64())
}

func TestConvert_StaleReading(t *testing.T) {
	a := newAdapter(unitFeed(), unitFeed())
	a.MaxAge = time.Minute
	a.Now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err := a.Convert(context.Background(), uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrStalePrice)
}

func TestConvert_MissingFeed(t *testing.T) {
	_, err := newAdapter(nil, unitFeed()).Convert(context.Background(), uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrFeedUnavailable)
}

func TestPriceUnits(t *testing.T) {
	a := newAdapter(unitFeed(), unitFeed())
	oneUnit := uint256.MustFromDecimal("1000000000000000000")

	out, err := a.PriceUnits(context.Background(), oneUnit, decimal.RequireFromString("1"), 18)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", out.Dec())

	out, err = a.PriceUnits(context.Background(), oneUnit, decimal.RequireFromString("2.5"), 18)
	require.NoError(t, err)
	assert.Equal(t, "2500000000000000000", out.Dec())
}

func TestRedisFeed(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	feed := &RedisFeed{Client: rdb, Key: KeyQuoteUSD}
	_, err = feed.LatestRate(ctx)
	assert.ErrorIs(t, err, ErrFeedUnavailable)

	stamp := time.Unix(1700000000, 0)
	require.NoError(t, Publish(ctx, rdb, KeyQuoteUSD, Reading{Value: big.NewInt(108000000), Decimals: 8, UpdatedAt: stamp}))

	r, err := feed.LatestRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "108000000", r.Value.String())
	assert.Equal(t, uint8(8), r.Decimals)
	assert.True(t, stamp.Equal(r.UpdatedAt))

	mr.HSet(KeyQuoteUSD, "answer", "garbage")
	_, err = feed.LatestRate(ctx)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}
