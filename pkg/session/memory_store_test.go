package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacs/tenantkit/pkg/session"
)

func TestMemoryStore_CRUD(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(0)
	ctx := context.Background()

	sess := session.NewSession("tok-1", nil, nil, time.Hour)
	sess.Set("key", "value")
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	v, ok := got.GetString("key")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	got.Set("key", "updated")
	require.NoError(t, store.Update(ctx, got))

	require.NoError(t, store.Delete(ctx, "tok-1"))
	_, err = store.Get(ctx, "tok-1")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestMemoryStore_CopyOnRead(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(0)
	ctx := context.Background()

	sess := session.NewSession("tok-1", nil, nil, time.Hour)
	require.NoError(t, store.Create(ctx, sess))

	first, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	first.Set("local", true)

	second, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	_, ok := second.Get("local")
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, session.NewSession("tok-1", nil, nil, 5*time.Millisecond)))

	time.Sleep(10 * time.Millisecond)

	_, err := store.Get(ctx, "tok-1")
	require.ErrorIs(t, err, session.ErrSessionExpired)
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, session.NewSession("short", nil, nil, time.Millisecond)))
	require.NoError(t, store.Create(ctx, session.NewSession("long", nil, nil, time.Hour)))

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.DeleteExpired(ctx))

	_, err := store.Get(ctx, "short")
	require.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = store.Get(ctx, "long")
	require.NoError(t, err)
}

func TestMemoryStore_DeleteByUserID(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(0)
	ctx := context.Background()

	userID := uuid.New()
	otherID := uuid.New()

	require.NoError(t, store.Create(ctx, session.NewSession("tok-1", &userID, nil, time.Hour)))
	require.NoError(t, store.Create(ctx, session.NewSession("tok-2", &userID, nil, time.Hour)))
	require.NoError(t, store.Create(ctx, session.NewSession("tok-3", &otherID, nil, time.Hour)))

	require.NoError(t, store.DeleteByUserID(ctx, userID))

	_, err := store.Get(ctx, "tok-1")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = store.Get(ctx, "tok-2")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = store.Get(ctx, "tok-3")
	require.NoError(t, err)
}

func TestMemoryStore_Concurrency(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			token := uuid.New().String()
			sess := session.NewSession(token, nil, nil, time.Hour)
			if err := store.Create(ctx, sess); err != nil {
				t.Error(err)
				return
			}
			if _, err := store.Get(ctx, token); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}
