package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/scorekeeper-service/internal/model"
	"github.com/maxviazov/scorekeeper-service/internal/repository"
	"github.com/maxviazov/scorekeeper-service/internal/service"
	"github.com/maxviazov/scorekeeper-service/pkg/response"
)

// GameHandler serves stored games, their read models and the correction path.
type GameHandler struct {
	svc service.GameService
}

func NewGameHandler(svc service.GameService) *GameHandler { return &GameHandler{svc: svc} }

func (h *GameHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/games")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/:id", h.getByID)
		g.PUT("/:id", h.replace)
		g.PATCH("/:id", h.patch)
		g.DELETE("/:id", h.delete)

		g.POST("/:id/plays", h.appendPlay)
		g.GET("/:id/plays", h.playByPlay)
		g.PATCH("/:id/teams/:side", h.patchTeam)
		g.PATCH("/:id/teams/:side/players/:player_id", h.patchPlayer)

		g.GET("/:id/boxscore", h.boxScore)
		g.GET("/:id/scoreboard", h.scoreboard)
	}
}

// bindJSON decodes the body into dst; parse details stay internal.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return false
	}
	return true
}

func (h *GameHandler) create(c *gin.Context) {
	var req model.GameSetup
	if !bindJSON(c, &req) {
		return
	}
	game, err := h.svc.CreateGame(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, game)
}

func (h *GameHandler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	res, err := h.svc.ListGames(c.Request.Context(), repository.Page{Limit: limit, Offset: offset})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *GameHandler) getByID(c *gin.Context) {
	game, err := h.svc.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) replace(c *gin.Context) {
	var req model.Game
	if !bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	if req.ID != "" && req.ID != id {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	req.ID = id
	game, err := h.svc.ReplaceGame(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) patch(c *gin.Context) {
	var req model.GamePatch
	if !bindJSON(c, &req) {
		return
	}
	game, err := h.svc.PatchGame(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) delete(c *gin.Context) {
	if err := h.svc.DeleteGame(c.Request.Context(), c.Param("id")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) appendPlay(c *gin.Context) {
	var req model.PlayInput
	if !bindJSON(c, &req) {
		return
	}
	game, err := h.svc.AppendPlay(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, game)
}

func (h *GameHandler) patchTeam(c *gin.Context) {
	var req model.TeamPatch
	if !bindJSON(c, &req) {
		return
	}
	game, err := h.svc.PatchTeam(c.Request.Context(), c.Param("id"), model.Side(c.Param("side")), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) patchPlayer(c *gin.Context) {
	var req model.PlayerPatch
	if !bindJSON(c, &req) {
		return
	}
	game, err := h.svc.PatchPlayer(c.Request.Context(), c.Param("id"), model.Side(c.Param("side")), c.Param("player_id"), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) boxScore(c *gin.Context) {
	box, err := h.svc.BoxScore(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, box)
}

func (h *GameHandler) scoreboard(c *gin.Context) {
	sb, err := h.svc.Scoreboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, sb)
}

// playByPlay lists the play log, newest first unless order=asc.
func (h *GameHandler) playByPlay(c *gin.Context) {
	var newestFirst bool
	switch c.DefaultQuery("order", "desc") {
	case "desc":
		newestFirst = true
	case "asc":
	default:
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	plays, err := h.svc.PlayByPlay(c.Request.Context(), c.Param("id"), newestFirst)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, plays)
}
