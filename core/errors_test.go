package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := E(KindInvalidSignature, "bad signature")
	assert.Equal(t, KindInvalidSignature, KindOf(err))
	assert.True(t, IsKind(err, KindInvalidSignature))
	assert.False(t, IsKind(err, KindNotFound))

	// Kind survives wrapping with %w.
	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, KindInvalidSignature, KindOf(wrapped))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindStorageUnavailable, "storage unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "bad signature", Message(E(KindInvalidSignature, "bad signature")))
	// Unclassified causes never leak to clients.
	assert.Equal(t, "internal server error", Message(errors.New("pq: deadlock detected")))
}
