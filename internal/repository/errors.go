package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Storage errors shared by every GameRepository backend. Handlers map them to
// HTTP codes through pkg/response.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
)

// MapPgError folds pgx failures into the storage errors above. A missing game
// row is ErrNotFound, a duplicate game or play id is ErrAlreadyExists, and a
// lost race between two writers of the same game is ErrConflict. Anything
// else is returned as is.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return ErrAlreadyExists
	case pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation:
		return ErrConflict
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return ErrConflict
	}
	return err
}
