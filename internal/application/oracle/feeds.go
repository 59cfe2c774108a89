package oracle

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StaticFeed holds a rate set by configuration or by an operator; Update moves it.
type StaticFeed struct {
	mu      sync.RWMutex
	reading Reading
}

// NewStaticFeed returns a feed reporting value with the given decimals.
func NewStaticFeed(value *big.Int, decimals uint8) *StaticFeed {
	f := &StaticFeed{}
	f.reading = Reading{Value: new(big.Int).Set(value), Decimals: decimals, UpdatedAt: time.Now()}
	return f
}

// ParseStaticFeed builds a StaticFeed from a base-10 integer string.
func ParseStaticFeed(value string, decimals uint8) (*StaticFeed, error) {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("oracle: invalid rate %q", value)
	}
	return NewStaticFeed(v, decimals), nil
}

// Update replaces the reported value and stamps it now.
func (f *StaticFeed) Update(value *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reading.Value = new(big.Int).Set(value)
	f.reading.UpdatedAt = time.Now()
}

func (f *StaticFeed) LatestRate(ctx context.Context) (Reading, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	r := f.reading
	r.Value = new(big.Int).Set(f.reading.Value)
	return r, nil
}

// RedisFeed reads a rate published by an external price relay into a Redis hash
// with fields answer, decimals and updated_at (unix seconds).
type RedisFeed struct {
	Client *redis.Client
	Key    string
}

// Redis keys used by the default deployment.
const (
	KeyQuoteUSD   = "oracle:quote_usd"
	KeyPaymentUSD = "oracle:payment_usd"
)

func (f *RedisFeed) LatestRate(ctx context.Context) (Reading, error) {
	fields, err := f.Client.HGetAll(ctx, f.Key).Result()
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %s: %v", ErrFeedUnavailable, f.Key, err)
	}
	if len(fields) == 0 {
		return Reading{}, fmt.Errorf("%w: %s not published", ErrFeedUnavailable, f.Key)
	}
	value, ok := new(big.Int).SetString(fields["answer"], 10)
	if !ok {
		return Reading{}, ErrInvalidPrice
	}
	decimals, err := strconv.ParseUint(fields["decimals"], 10, 8)
	if err != nil {
		return Reading{}, ErrInvalidPrice
	}
	updated, err := strconv.ParseInt(fields["updated_at"], 10, 64)
	if err != nil {
		return Reading{}, ErrInvalidPrice
	}
	return Reading{Value: value, Decimals: uint8(decimals), UpdatedAt: time.Unix(updated, 0)}, nil
}

// Publish writes r under key in the layout RedisFeed reads.
func Publish(ctx context.Context, rdb *redis.Client, key string, r Reading) error {
	return rdb.HSet(ctx, key,
		"answer", r.Value.String(),
		"decimals", strconv.Itoa(int(r.Decimals)),
		"updated_at", strconv.FormatInt(r.UpdatedAt.Unix(), 10),
	).Err()
}
