package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/scorekeeper-service/internal/handler"
	"github.com/maxviazov/scorekeeper-service/internal/model"
	"github.com/maxviazov/scorekeeper-service/internal/pubsub"
	"github.com/maxviazov/scorekeeper-service/internal/repository"
)

func newStreamServer(t *testing.T, svc *stubService) (*httptest.Server, *pubsub.Broker) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	broker := pubsub.NewBroker()
	r := gin.New()
	handler.Register(r, nil, svc, svc, broker, zerolog.New(io.Discard))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(broker.Close)
	return srv, broker
}

func dial(t *testing.T, srv *httptest.Server, gameID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/games/" + gameID + "/stream"
	return websocket.DefaultDialer.Dial(url, nil)
}

func readEvent(t *testing.T, conn *websocket.Conn) pubsub.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev pubsub.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestStream_SnapshotThenEvents(t *testing.T) {
	svc := &stubService{game: model.Game{ID: "g-1", Status: model.StatusActive, GameClockSeconds: 600}}
	srv, broker := newStreamServer(t, svc)

	conn, _, err := dial(t, srv, "g-1")
	require.NoError(t, err)
	defer conn.Close()

	first := readEvent(t, conn)
	assert.Equal(t, pubsub.EventSnapshot, first.Type)
	require.NotNil(t, first.Game)
	assert.Equal(t, 600, first.Game.GameClockSeconds)

	require.Eventually(t, func() bool { return broker.Subscribers("g-1") == 1 }, time.Second, 5*time.Millisecond)
	tick := model.Game{ID: "g-1", GameClockSeconds: 599}
	broker.Publish(pubsub.Event{Type: pubsub.EventGameUpdated, GameID: "g-2"})
	broker.Publish(pubsub.Event{Type: pubsub.EventClockTick, GameID: "g-1", Game: &tick})

	ev := readEvent(t, conn)
	assert.Equal(t, pubsub.EventClockTick, ev.Type, "other games' events are not streamed")
	assert.Equal(t, 599, ev.Game.GameClockSeconds)

	broker.Publish(pubsub.Event{Type: pubsub.EventGameDeleted, GameID: "g-1"})
	assert.Equal(t, pubsub.EventGameDeleted, readEvent(t, conn).Type)
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "stream closes after deletion: %v", err)

	require.Eventually(t, func() bool { return broker.Subscribers("g-1") == 0 }, time.Second, 5*time.Millisecond)
}

func TestStream_ClientDisconnectUnsubscribes(t *testing.T) {
	svc := &stubService{game: model.Game{ID: "g-1"}}
	srv, broker := newStreamServer(t, svc)

	conn, _, err := dial(t, srv, "g-1")
	require.NoError(t, err)
	readEvent(t, conn)
	require.Equal(t, 1, broker.Subscribers("g-1"))

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return broker.Subscribers("g-1") == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestStream_UnknownGame(t *testing.T) {
	svc := &stubService{err: repository.ErrNotFound}
	srv, broker := newStreamServer(t, svc)

	_, resp, err := dial(t, srv, "missing")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Zero(t, broker.Subscribers("missing"))
}
