// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: use-case coordination, gating of live commands,
// validation and domain error shaping. Transitions themselves live in package game.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/scorekeeper-service/internal/model"
	"github.com/maxviazov/scorekeeper-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

var (
	// ErrGameCompleted rejects live commands on a finished game (maps to HTTP 409).
	ErrGameCompleted = errors.New("game is completed")
	// ErrPeriodLimit rejects advancing past regulation plus the allowed overtimes.
	ErrPeriodLimit = errors.New("no periods left")
)

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

func invalidField(field, msg string) error {
	return newInvalidInput([]FieldError{{Field: field, Message: msg}})
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// GameService covers the stored side of a game: creation, reads, read
// models and the correction path that edits a game outside live scoring.
type GameService interface {
	CreateGame(ctx context.Context, setup model.GameSetup) (model.Game, error)
	GetGame(ctx context.Context, id string) (model.Game, error)
	ListGames(ctx context.Context, page repository.Page) (repository.PageResult[model.Game], error)
	ReplaceGame(ctx context.Context, g model.Game) (model.Game, error)
	PatchGame(ctx context.Context, id string, p model.GamePatch) (model.Game, error)
	DeleteGame(ctx context.Context, id string) error

	AppendPlay(ctx context.Context, id string, in model.PlayInput) (model.Game, error)
	PatchTeam(ctx context.Context, id string, side model.Side, p model.TeamPatch) (model.Game, error)
	PatchPlayer(ctx context.Context, id string, side model.Side, playerID string, p model.PlayerPatch) (model.Game, error)

	BoxScore(ctx context.Context, id string) (model.BoxScore, error)
	Scoreboard(ctx context.Context, id string) (model.Scoreboard, error)
	PlayByPlay(ctx context.Context, id string, newestFirst bool) ([]model.Play, error)
}

// LiveService covers scorekeeping commands against a game in progress.
// Every command is rejected with ErrGameCompleted once the game ended.
type LiveService interface {
	RecordStat(ctx context.Context, id string, side model.Side, playerID string, st model.StatType) (model.Game, error)
	ToggleClock(ctx context.Context, id string) (model.Game, error)
	ResetClock(ctx context.Context, id string) (model.Game, error)
	AdvancePeriod(ctx context.Context, id string) (model.Game, error)
	TogglePossession(ctx context.Context, id string) (model.Game, error)
	CallTimeout(ctx context.Context, id string, side model.Side) (model.Game, error)
	ToggleOnCourt(ctx context.Context, id string, side model.Side, playerID string) (model.Game, error)
	EndGame(ctx context.Context, id string) (model.Game, error)
}
