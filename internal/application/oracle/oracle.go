package oracle

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"stocktochain-backend/internal/pkg/apperror"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice     = apperror.New(apperror.KindOracle, "INVALID_PRICE_DATA", "Invalid price feed data")
	ErrStalePrice       = apperror.New(apperror.KindOracle, "STALE_PRICE_DATA", "Price feed data is stale")
	ErrFeedUnavailable  = apperror.New(apperror.KindOracle, "PRICE_FEED_UNAVAILABLE", "Price feed unavailable")
	ErrConversionBounds = apperror.New(apperror.KindOracle, "PRICE_OUT_OF_RANGE", "Converted amount exceeds 256 bits")
)

// Reading is one exchange-rate observation: Value / 10^Decimals USD per currency unit.
type Reading struct {
	Value     *big.Int
	Decimals  uint8
	UpdatedAt time.Time
}

// Feed reports the latest exchange rate of one currency against USD.
type Feed interface {
	LatestRate(ctx context.Context) (Reading, error)
}

// Adapter converts quote-currency amounts to payment-currency amounts using two feeds.
// Both feeds are read on every call; nothing is cached and nothing is retried.
type Adapter struct {
	Quote           Feed // quote currency -> USD
	Payment         Feed // payment currency -> USD
	QuoteDecimals   int32
	PaymentDecimals int32
	MaxAge          time.Duration // zero disables the staleness check
	Now             func() time.Time
}

// Convert returns quoteAmount (quote base units) expressed in payment base units, rounded down.
func (a *Adapter) Convert(ctx context.Context, quoteAmount *uint256.Int) (*uint256.Int, error) {
	q, err := a.read(ctx, a.Quote)
	if err != nil {
		return nil, fmt.Errorf("quote feed: %w", err)
	}
	p, err := a.read(ctx, a.Payment)
	if err != nil {
		return nil, fmt.Errorf("payment feed: %w", err)
	}

	num := new(big.Int).Mul(quoteAmount.ToBig(), q.Value)
	num.Mul(num, pow10(int64(a.PaymentDecimals)+int64(p.Decimals)))
	den := new(big.Int).Mul(p.Value, pow10(int64(a.QuoteDecimals)+int64(q.Decimals)))
	out, overflow := uint256.FromBig(num.Quo(num, den))
	if overflow {
		return nil, ErrConversionBounds
	}
	return out, nil
}

// PriceUnits returns the payment-currency cost of units (unitDecimals base units per whole unit)
// at pricePerUnit quote currency per whole unit.
func (a *Adapter) PriceUnits(ctx context.Context, units *uint256.Int, pricePerUnit decimal.Decimal, unitDecimals int32) (*uint256.Int, error) {
	quote := decimal.NewFromBigInt(units.ToBig(), 0).
		Mul(pricePerUnit).
		Shift(a.QuoteDecimals - unitDecimals).
		Floor()
	quoteAmount, overflow := uint256.FromBig(quote.BigInt())
	if overflow {
		return nil, ErrConversionBounds
	}
	return a.Convert(ctx, quoteAmount)
}

func (a *Adapter) read(ctx context.Context, f Feed) (Reading, error) {
	if f == nil {
		return Reading{}, ErrFeedUnavailable
	}
	r, err := f.LatestRate(ctx)
	if err != nil {
		return Reading{}, err
	}
	if r.Value == nil || r.Value.Sign() <= 0 {
		return Reading{}, ErrInvalidPrice
	}
	if a.MaxAge > 0 && a.now().Sub(r.UpdatedAt) > a.MaxAge {
		return Reading{}, ErrStalePrice
	}
	return r, nil
}

func (a *Adapter) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}
