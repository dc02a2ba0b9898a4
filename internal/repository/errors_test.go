package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	other := errors.New("boom")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, ErrAlreadyExists},
		{"wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation}), ErrAlreadyExists},
		{"fk", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, ErrConflict},
		{"check", &pgconn.PgError{Code: pgerrcode.CheckViolation}, ErrConflict},
		{"serialization", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, ErrConflict},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, ErrConflict},
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("load game: %w", pgx.ErrNoRows), ErrNotFound},
		{"other pg code", &pgconn.PgError{Code: pgerrcode.UndefinedTable}, &pgconn.PgError{Code: pgerrcode.UndefinedTable}},
		{"passthrough", other, other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapPgError(tc.in))
		})
	}
}

func TestPageSanitize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageLimit, Offset: 0}, Page{Limit: 0, Offset: -3}.Sanitize())
	assert.Equal(t, Page{Limit: 5, Offset: 10}, Page{Limit: 5, Offset: 10}.Sanitize())
}
