package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/scorekeeper-service/internal/model"
)

// newValidator reports fields by their json names so field errors match the request body.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs v over s and converts failures to an aggregated field error.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		fe = append(fe, FieldError{Field: fieldPath(e.Namespace()), Message: tagMessage(e)})
	}
	return newInvalidInput(fe)
}

// fieldPath drops the root struct name: "GameSetup.homeTeam.name" -> "homeTeam.name".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func tagMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(e.Param(), " ", "|")
	case "max":
		if e.Kind() == reflect.String {
			return "length must be <= " + e.Param()
		}
		return "must be <= " + e.Param()
	case "gte":
		return "must be >= " + e.Param()
	case "lte":
		return "must be <= " + e.Param()
	default:
		return fmt.Sprintf("failed %q check", e.Tag())
	}
}

// validateSetup adds the cross-field checks the struct tags cannot express.
func validateSetup(v *validator.Validate, s model.GameSetup) error {
	if err := validateStruct(v, s); err != nil {
		return err
	}
	var fe []FieldError
	fe = append(fe, duplicateNumbers("homeTeam", s.HomeTeam)...)
	fe = append(fe, duplicateNumbers("awayTeam", s.AwayTeam)...)
	return newInvalidInput(fe)
}

func duplicateNumbers(field string, t model.TeamSetup) []FieldError {
	var fe []FieldError
	seen := make(map[int]bool, len(t.Players))
	for i, p := range t.Players {
		if seen[p.Number] {
			fe = append(fe, FieldError{
				Field:   fmt.Sprintf("%s.players[%d].number", field, i),
				Message: fmt.Sprintf("number %d is already taken", p.Number),
			})
		}
		seen[p.Number] = true
	}
	return fe
}

func parseSide(side model.Side) error {
	if !side.Valid() {
		return invalidField("side", "must be one of home|away")
	}
	return nil
}

func parseStatType(st model.StatType) error {
	if !st.Valid() {
		return invalidField("type", "unknown stat type")
	}
	return nil
}
