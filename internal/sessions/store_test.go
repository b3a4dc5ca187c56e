package sessions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

var alice = models.Session{
	Role:     models.RoleStudent,
	Course:   "CS101",
	UserID:   "alice",
	FullName: "Alice Example",
}

// exerciseStore is the contract every Store shares.
func exerciseStore(t *testing.T, s Store, revokes bool) {
	ctx := context.Background()

	token, err := s.Create(ctx, alice)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := s.Get(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice, *got)

	other, err := s.Create(ctx, alice)
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "tokens must be unique per login")

	missing, err := s.Get(ctx, "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, missing)

	empty, err := s.Get(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = s.Create(ctx, models.Session{Role: "root", Course: "CS101", UserID: "x"})
	assert.Error(t, err)

	require.NoError(t, s.Delete(ctx, token))
	if revokes {
		gone, err := s.Get(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, gone)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour), true)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ms := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	ms.now = func() time.Time { return now }

	token, err := ms.Create(context.Background(), alice)
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	got, err := ms.Get(context.Background(), token)
	require.NoError(t, err)
	assert.NotNil(t, got)

	now = now.Add(time.Second)
	got, err = ms.Get(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJWTStore(t *testing.T) {
	js, err := NewJWTStore("test-secret", time.Hour)
	require.NoError(t, err)

	exerciseStore(t, js, false)
}

func TestJWTStore_RejectsForeignAndExpiredTokens(t *testing.T) {
	js, err := NewJWTStore("test-secret", time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("other secret", func(t *testing.T) {
		foreign, err := NewJWTStore("another-secret", time.Minute)
		require.NoError(t, err)
		token, err := foreign.Create(ctx, alice)
		require.NoError(t, err)

		got, err := js.Get(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("expired", func(t *testing.T) {
		issued := time.Now().Add(-time.Hour)
		js.now = func() time.Time { return issued }
		token, err := js.Create(ctx, alice)
		require.NoError(t, err)

		js.now = time.Now
		got, err := js.Get(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("garbage", func(t *testing.T) {
		got, err := js.Get(ctx, "definitely.not.ajwt")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	_, err = NewJWTStore("", time.Minute)
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("redis container tests are skipped in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := DialRedis(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()))
	require.NoError(t, err)

	rs := NewRedisStore(client, "test:session:{token}", time.Minute)
	defer rs.Close()

	exerciseStore(t, rs, true)

	token, err := rs.Create(ctx, alice)
	require.NoError(t, err)
	ttl, err := client.TTL(ctx, rs.key(token)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}
