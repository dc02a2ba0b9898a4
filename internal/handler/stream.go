package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/maxviazov/scorekeeper-service/internal/pubsub"
	"github.com/maxviazov/scorekeeper-service/internal/service"
	"github.com/maxviazov/scorekeeper-service/pkg/response"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Viewers only send control frames.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// scoreboards are embedded on arbitrary pages
	CheckOrigin: func(*http.Request) bool { return true },
}

// StreamHandler pushes game events to websocket viewers. A stream opens
// with a snapshot event and ends after the game is deleted.
type StreamHandler struct {
	games  service.GameService
	broker *pubsub.Broker
	log    zerolog.Logger
}

func NewStreamHandler(games service.GameService, broker *pubsub.Broker, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		games:  games,
		broker: broker,
		log:    logger.With().Str("module", "handler").Str("component", "stream").Logger(),
	}
}

func (h *StreamHandler) Register(r *gin.RouterGroup) {
	r.GET("/games/:id/stream", h.stream)
}

func (h *StreamHandler) stream(c *gin.Context) {
	id := c.Param("id")
	// subscribe first so nothing between the snapshot and the first event is lost
	sub := h.broker.Subscribe(id)
	defer h.broker.Unsubscribe(sub)

	g, err := h.games.GetGame(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already answered with an HTTP error
		h.log.Debug().Err(err).Str("game_id", id).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	h.log.Debug().Str("game_id", id).Msg("viewer connected")

	done := make(chan struct{})
	go readPump(conn, done)

	snapshot := pubsub.Event{Type: pubsub.EventSnapshot, GameID: id, Game: &g, At: time.Now().UnixMilli()}
	if err := writeEvent(conn, snapshot); err != nil {
		return
	}
	h.writePump(conn, sub, done)
	h.log.Debug().Str("game_id", id).Msg("viewer disconnected")
}

// readPump drains control frames so pongs are seen, and closes done when
// the peer goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) writePump(conn *websocket.Conn, sub <-chan pubsub.Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub:
			if !ok {
				// broker shut down
				closeStream(conn, websocket.CloseGoingAway, "shutting down")
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				h.log.Debug().Err(err).Str("game_id", ev.GameID).Msg("websocket write failed")
				return
			}
			if ev.Type == pubsub.EventGameDeleted {
				closeStream(conn, websocket.CloseNormalClosure, "game deleted")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev pubsub.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

func closeStream(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
