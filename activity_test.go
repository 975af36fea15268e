package identity_test

import (
	"context"
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
)

func TestActivitySinkFunc(t *testing.T) {
	t.Run("delegates to the wrapped function", func(t *testing.T) {
		var got identity.ActivityEvent
		sink := identity.ActivitySinkFunc(func(ctx context.Context, event identity.ActivityEvent) error {
			got = event
			return nil
		})

		err := sink.Record(context.Background(), identity.ActivityEvent{
			EventType: identity.ActivityEventLoginSuccess,
			UserID:    "user-123",
		})

		assert.NoError(t, err)
		assert.Equal(t, identity.ActivityEventLoginSuccess, got.EventType)
		assert.Equal(t, "user-123", got.UserID)
	})

	t.Run("nil func records nothing", func(t *testing.T) {
		var sink identity.ActivitySinkFunc

		err := sink.Record(context.Background(), identity.ActivityEvent{})

		assert.NoError(t, err)
	})
}
