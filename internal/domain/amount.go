package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
)

// Amount is a 256-bit unsigned quantity (units or payment-currency base units).
// It is stored as a base-10 string so SQLite never coerces it to a float.
type Amount struct {
	v uint256.Int
}

// NewAmount copies v into an Amount. A nil v yields zero.
func NewAmount(v *uint256.Int) Amount {
	var a Amount
	if v != nil {
		a.v.Set(v)
	}
	return a
}

// AmountFromUint64 is shorthand for small literal amounts.
func AmountFromUint64(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// ParseAmount parses a base-10 string.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if err := a.v.SetFromDecimal(s); err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return a, nil
}

// U256 returns a copy safe for arithmetic.
func (a Amount) U256() *uint256.Int {
	return new(uint256.Int).Set(&a.v)
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

func (a Amount) String() string {
	return a.v.Dec()
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return a.v.Dec(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		a.v.Clear()
		return nil
	case []byte:
		return a.v.SetFromDecimal(string(v))
	case string:
		return a.v.SetFromDecimal(v)
	case int64:
		if v < 0 {
			return errors.New("negative value for Amount")
		}
		a.v.SetUint64(uint64(v))
		return nil
	default:
		return fmt.Errorf("unsupported type %T for Amount", value)
	}
}

// MarshalJSON renders the amount as a quoted decimal string; JSON numbers lose precision past 2^53.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.v.Dec())
}

// UnmarshalJSON accepts a quoted decimal string or a bare integer.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	if s == "" || s == "null" {
		a.v.Clear()
		return nil
	}
	return a.v.SetFromDecimal(s)
}
