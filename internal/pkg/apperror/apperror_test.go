package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSample = New(KindTimelock, "STILL_LOCKED", "Must wait before claiming profits")

func TestAs_UnwrapsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("claim: %w", errSample)
	assert.True(t, errors.Is(wrapped, errSample))
	e := As(wrapped)
	if assert.NotNil(t, e) {
		assert.Equal(t, "STILL_LOCKED", e.Code)
	}
	assert.Equal(t, KindTimelock, KindOf(wrapped))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Nil(t, As(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindAuthorization: 403,
		KindState:         409,
		KindValidation:    400,
		KindFunds:         402,
		KindOracle:        502,
		KindTimelock:      423,
		KindInvariant:     422,
		KindNotFound:      404,
		KindInternal:      500,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), string(kind))
	}
}
