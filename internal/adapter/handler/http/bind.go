package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sm8ta/mongo_user_service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

// bindUserInput decodes the body into input field by field. An empty body binds as an empty
// candidate. A known field with the wrong JSON type is left unset and recorded in input.Mistyped,
// so the validator reports it together with every other violation.
func bindUserInput(c *gin.Context, input *domain.UserInput) (bool, error) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		newErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return false, err
	}

	fields := []struct {
		name   string
		decode func(json.RawMessage) error
	}{
		{"name", func(m json.RawMessage) error { return decodeField(m, &input.Name) }},
		{"email", func(m json.RawMessage) error { return decodeField(m, &input.Email) }},
		{"age", func(m json.RawMessage) error { return decodeField(m, &input.Age) }},
		{"role", func(m json.RawMessage) error { return decodeField(m, &input.Role) }},
	}

	for _, f := range fields {
		value, ok := raw[f.name]
		if !ok {
			continue
		}

		err := f.decode(value)
		if err == nil {
			continue
		}

		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			newErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
			return false, err
		}
		input.Mistyped = append(input.Mistyped, f.name)
	}

	return true, nil
}

// decodeField only touches dst when the value decodes cleanly. JSON null leaves it nil.
func decodeField[T any](value json.RawMessage, dst **T) error {
	var v *T
	if err := json.Unmarshal(value, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}
