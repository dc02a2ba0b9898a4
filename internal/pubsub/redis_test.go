package pubsub

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// redisClient uses REDIS_TEST_ADDR when set, otherwise starts a container.
// The test is skipped when neither is available.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		if os.Getenv("CONTRACT_TESTS") != "1" {
			t.Skip("set CONTRACT_TESTS=1 or REDIS_TEST_ADDR to run redis tests")
		}
		testcontainers.SkipIfProviderIsNotHealthy(t)
		c, err := testcontainers.Run(ctx, "redis:7-alpine",
			testcontainers.WithExposedPorts("6379/tcp"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("Ready to accept connections").WithStartupTimeout(60*time.Second),
			),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Terminate(ctx) })
		addr, err = c.Endpoint(ctx, "")
		require.NoError(t, err)
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})
	require.NoError(t, client.Ping(ctx).Err())
	t.Cleanup(func() { client.FlushDB(ctx) })
	return client
}

func TestRedisStreamPublisher_AppendsToGameStream(t *testing.T) {
	client := redisClient(t)
	pub := NewRedisStreamPublisher(client, "scorekeeper.games", 100)
	t.Cleanup(func() { _ = pub.Close() })
	ctx := context.Background()
	require.NoError(t, pub.Ping(ctx))

	play := Event{Type: EventPlayAdded, GameID: "g-7", At: 1}
	end := Event{Type: EventGameEnded, GameID: "g-7", At: 2}
	require.NoError(t, pub.Publish(ctx, play))
	require.NoError(t, pub.Publish(ctx, end))

	msgs, err := client.XRange(ctx, pub.StreamKey("g-7"), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "game.play", msgs[0].Values["type"])
	assert.Equal(t, "g-7", msgs[1].Values["game_id"])

	var got Event
	require.NoError(t, json.Unmarshal([]byte(msgs[1].Values["data"].(string)), &got))
	assert.Equal(t, EventGameEnded, got.Type)
	assert.Equal(t, int64(2), got.At)
}
