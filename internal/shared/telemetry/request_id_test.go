package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetachKeepsOnlyRequestID(t *testing.T) {
	parent, cancel := context.WithCancel(WithRequestID(context.Background(), "req-1"))
	cancel()

	detached := Detach(parent)

	assert.NoError(t, detached.Err())
	assert.Equal(t, "req-1", RequestIDFromContext(detached))
	assert.Equal(t, "", RequestIDFromContext(Detach(context.Background())))
}
