package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/scorekeeper-service/internal/model"
)

func runEmbeddedNATS(t *testing.T) string {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded nats not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns.ClientURL()
}

func TestJetStreamPublisher_PublishesPerGameSubject(t *testing.T) {
	url := runEmbeddedNATS(t)

	pub, err := NewJetStreamPublisher(url, "SCOREKEEPER_TEST", "scorekeeper.games")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })
	require.NoError(t, pub.Ping(context.Background()))

	// a second publisher must reuse the existing stream
	again, err := NewJetStreamPublisher(url, "SCOREKEEPER_TEST", "scorekeeper.games")
	require.NoError(t, err)
	_ = again.Close()

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()
	js, err := nc.JetStream()
	require.NoError(t, err)
	sub, err := js.SubscribeSync("scorekeeper.games.g-1", nats.DeliverAll())
	require.NoError(t, err)

	g := model.Game{ID: "g-1", Status: model.StatusActive}
	ev := Event{Type: EventGameUpdated, GameID: g.ID, Game: &g, At: 42}
	require.NoError(t, pub.Publish(context.Background(), ev))

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, string(EventGameUpdated), msg.Header.Get("Event-Type"))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, "g-1", got.GameID)
	assert.Equal(t, int64(42), got.At)
	require.NotNil(t, got.Game)
	assert.Equal(t, model.StatusActive, got.Game.Status)
}
