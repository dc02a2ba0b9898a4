package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/scorekeeper-service/internal/pubsub"
	"github.com/maxviazov/scorekeeper-service/internal/service"
)

// APIV1Prefix is the base path of every game route.
const APIV1Prefix = "/api/v1"

// Register mounts all public routes on the given engine.
// Accepts service layer dependencies for API endpoints.
func Register(r *gin.Engine, checks Checks, games service.GameService, live service.LiveService, events *pubsub.Broker, logger zerolog.Logger) {
	h := NewHealthHandler(checks)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewGameHandler(games).Register(api)
		NewLiveHandler(live).Register(api)
		NewStreamHandler(games, events, logger).Register(api)
	}
}
