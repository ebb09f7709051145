package integration

import (
	"context"
	"os/exec"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pageza/whatscooking/backend/internal/middleware"
	"github.com/pageza/whatscooking/backend/internal/service"
)

func setupRedis(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
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
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisSignupStore(t *testing.T) {
	client := setupRedis(t)
	store := service.NewRedisSignupStore(client)
	ctx := context.Background()

	pending := &service.PendingSignup{
		FullName:     "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$hash",
	}

	require.NoError(t, store.PutPending(ctx, "tok-1", pending, time.Minute))
	got, err := store.GetPending(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, pending, got)

	require.NoError(t, store.DeletePending(ctx, "tok-1"))
	_, err = store.GetPending(ctx, "tok-1")
	assert.Error(t, err)

	require.NoError(t, store.PutOTP(ctx, "ada@example.com", "123456", time.Minute))
	code, err := store.GetOTP(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	require.NoError(t, store.DeleteOTP(ctx, "ada@example.com"))
	_, err = store.GetOTP(ctx, "ada@example.com")
	assert.Error(t, err)
}

func TestRateLimiterAgainstRedis(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	limiter := middleware.NewRateLimiter(client, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     3,
		KeyPrefix: "ratelimit:test",
	})

	for i := 0; i < 3; i++ {
		allowed, _, _, err := limiter.IsAllowed(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, remaining, _, err := limiter.IsAllowed(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	// Other clients have their own window.
	allowed, _, _, err = limiter.IsAllowed(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, allowed)

	// Every counter key carries a TTL so a window can never throttle forever.
	keys, err := client.Keys(ctx, "ratelimit:test:*").Result()
	require.NoError(t, err)
	require.NotEmpty(t, keys)
	for _, key := range keys {
		ttl, err := client.TTL(ctx, key).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0), "counter key %s must expire", key)
	}
}

func TestRedisSignupStoreTTL(t *testing.T) {
	client := setupRedis(t)
	store := service.NewRedisSignupStore(client)
	ctx := context.Background()

	require.NoError(t, store.PutOTP(ctx, "ttl@example.com", "654321", time.Second))
	time.Sleep(1500 * time.Millisecond)

	_, err := store.GetOTP(ctx, "ttl@example.com")
	assert.Error(t, err, "OTP must expire with its TTL")
}
