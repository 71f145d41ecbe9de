// internal/session/session_test.go
package session

import (
	"context"
	"testing"
	"time"

	"clearance-portal/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, ttl time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewManager(client, ttl, logger.NewTestLogger(t)), mr
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	created, err := m.Create(ctx, "adm-1", "admin")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "adm-1", created.AdminID)
	assert.Equal(t, "admin", created.Username)

	got, err := m.Get(ctx, created.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.Token, got.Token)
	assert.Equal(t, created.AdminID, got.AdminID)
	assert.Equal(t, created.Username, got.Username)
}

func TestGet_UnknownTokenReturnsSentinel(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	got, err := m.Get(context.Background(), "no-such-token")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionsExpire(t *testing.T) {
	m, mr := newTestManager(t, time.Minute)
	ctx := context.Background()

	created, err := m.Create(ctx, "adm-1", "admin")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	got, err := m.Get(ctx, created.Token)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDestroy(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	created, err := m.Create(ctx, "adm-1", "admin")
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, created.Token))

	got, err := m.Get(ctx, created.Token)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDestroy_UnknownTokenIsNoOp(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	assert.NoError(t, m.Destroy(context.Background(), "no-such-token"))
}

func TestSessionsAreIsolatedByToken(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	first, err := m.Create(ctx, "adm-1", "admin")
	require.NoError(t, err)
	second, err := m.Create(ctx, "adm-2", "clerk")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	require.NoError(t, m.Destroy(ctx, first.Token))

	got, err := m.Get(ctx, second.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "adm-2", got.AdminID)
}
