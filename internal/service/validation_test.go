package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/scorekeeper-service/internal/model"
)

func TestFieldPath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"GameSetup.sport", "sport"},
		{"GameSetup.homeTeam.players[3].name", "homeTeam.players[3].name"},
		{"sport", "sport"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, fieldPath(tc.in))
		})
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	s := model.GameSetup{
		Sport:    "curling",
		HomeTeam: model.TeamSetup{Name: "H", Abbreviation: "TOOLONG"},
		AwayTeam: model.TeamSetup{Name: "A", Abbreviation: "A"},
	}
	err := validateStruct(newValidator(), s)

	got := map[string]string{}
	for _, fe := range FieldErrors(err) {
		got[fe.Field] = fe.Message
	}
	assert.Equal(t, "must be one of basketball|hockey|football|baseball|volleyball|soccer", got["sport"])
	assert.Equal(t, "is required", got["rules"])
	assert.Equal(t, "length must be <= 4", got["homeTeam.abbreviation"])
}

func TestFieldErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(nil))
	assert.Nil(t, FieldErrors(errors.New("boom")))
	assert.Nil(t, newInvalidInput(nil))

	err := fmt.Errorf("create: %w", invalidField("side", "bad"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []FieldError{{Field: "side", Message: "bad"}}, FieldErrors(err))
}
