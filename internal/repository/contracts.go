package repository

import (
	"context"

	"github.com/maxviazov/scorekeeper-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// GameRepository persists whole game aggregates: rosters, stats and the play log
// travel together. Partial updates are shallow merges, last write wins per field.
// Every method returns ErrNotFound for an unknown game id.
type GameRepository interface {
	// Create stores a new game; a duplicate id yields ErrAlreadyExists.
	Create(ctx context.Context, g model.Game) (model.Game, error)
	GetByID(ctx context.Context, id string) (model.Game, error)
	// List returns games newest first by creation time.
	List(ctx context.Context, p Page) (PageResult[model.Game], error)
	// Save replaces the stored snapshot with g, play log included.
	Save(ctx context.Context, g model.Game) error
	Update(ctx context.Context, id string, p model.GamePatch) (model.Game, error)
	Delete(ctx context.Context, id string) error
	// AppendPlay adds play to the end of the log; a duplicate play id yields ErrAlreadyExists.
	AppendPlay(ctx context.Context, id string, play model.Play) (model.Game, error)
	UpdateTeam(ctx context.Context, id string, side model.Side, p model.TeamPatch) (model.Game, error)
	// UpdatePlayer yields ErrNotFound when the player is not on side's roster.
	UpdatePlayer(ctx context.Context, id string, side model.Side, playerID string, p model.PlayerPatch) (model.Game, error)
}
