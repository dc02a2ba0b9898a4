package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/scorekeeper-service/internal/model"
	"github.com/maxviazov/scorekeeper-service/internal/service"
	"github.com/maxviazov/scorekeeper-service/pkg/response"
)

// LiveHandler serves scorekeeping commands. Each answers with the new snapshot.
type LiveHandler struct {
	svc service.LiveService
}

func NewLiveHandler(svc service.LiveService) *LiveHandler { return &LiveHandler{svc: svc} }

func (h *LiveHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/games/:id")
	{
		g.POST("/stats", h.recordStat)
		g.POST("/clock/toggle", h.command(service.LiveService.ToggleClock))
		g.POST("/clock/reset", h.command(service.LiveService.ResetClock))
		g.POST("/period/advance", h.command(service.LiveService.AdvancePeriod))
		g.POST("/possession/toggle", h.command(service.LiveService.TogglePossession))
		g.POST("/timeouts", h.callTimeout)
		g.POST("/teams/:side/players/:player_id/court", h.toggleOnCourt)
		g.POST("/end", h.command(service.LiveService.EndGame))
	}
}

type recordStatRequest struct {
	Side     model.Side     `json:"side"`
	PlayerID string         `json:"playerId"`
	Type     model.StatType `json:"type"`
}

type timeoutRequest struct {
	Side model.Side `json:"side"`
}

// command adapts a body-less command to a gin handler.
func (h *LiveHandler) command(fn func(svc service.LiveService, ctx context.Context, id string) (model.Game, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		game, err := fn(h.svc, c.Request.Context(), c.Param("id"))
		if err != nil {
			response.WriteError(c, err)
			return
		}
		response.WriteData(c, http.StatusOK, game)
	}
}

func (h *LiveHandler) recordStat(c *gin.Context) {
	var req recordStatRequest
	if !bindJSON(c, &req) {
		return
	}
	game, err := h.svc.RecordStat(c.Request.Context(), c.Param("id"), req.Side, req.PlayerID, req.Type)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *LiveHandler) callTimeout(c *gin.Context) {
	var req timeoutRequest
	if !bindJSON(c, &req) {
		return
	}
	game, err := h.svc.CallTimeout(c.Request.Context(), c.Param("id"), req.Side)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *LiveHandler) toggleOnCourt(c *gin.Context) {
	game, err := h.svc.ToggleOnCourt(c.Request.Context(), c.Param("id"), model.Side(c.Param("side")), c.Param("player_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}
