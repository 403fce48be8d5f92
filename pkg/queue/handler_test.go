package queue_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacs/tenantkit/pkg/queue"
)

func TestNewTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("name derived from payload type", func(t *testing.T) {
		t.Parallel()

		h := queue.NewTaskHandler(func(ctx context.Context, p syncPayload) error { return nil })
		assert.Equal(t, "queue_test.syncPayload", h.Name())

		hp := queue.NewTaskHandler(func(ctx context.Context, p *syncPayload) error { return nil })
		assert.Equal(t, "queue_test.syncPayload", hp.Name())
	})

	t.Run("decodes payload", func(t *testing.T) {
		t.Parallel()

		var got syncPayload
		h := queue.NewTaskHandler(func(ctx context.Context, p syncPayload) error {
			got = p
			return nil
		})

		require.NoError(t, h.Handle(context.Background(), json.RawMessage(`{"key":"abc"}`)))
		assert.Equal(t, "abc", got.Key)
	})

	t.Run("malformed payload", func(t *testing.T) {
		t.Parallel()

		h := queue.NewTaskHandler(func(ctx context.Context, p syncPayload) error { return nil })
		require.Error(t, h.Handle(context.Background(), json.RawMessage(`{`)))
	})
}

func TestNewNamedTaskHandler(t *testing.T) {
	t.Parallel()

	h := queue.NewNamedTaskHandler("device.sync", func(ctx context.Context, p syncPayload) error { return nil })
	assert.Equal(t, "device.sync", h.Name())
}
