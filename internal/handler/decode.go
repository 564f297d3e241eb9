package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/templui/accounts/internal/service"
	"github.com/templui/accounts/internal/validation"
)

const maxJSONBody = 1 << 20 // 1MB

var validate = validation.New()

// decodeJSON reads a single JSON object into dst, rejecting unknown fields,
// then runs the struct's validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		return service.BadRequest(describeDecodeError(err))
	}

	if dec.More() {
		return service.BadRequest("request body must contain a single JSON object")
	}

	err = validate.Struct(dst)
	if err != nil {
		var fe *validation.FieldError
		if errors.As(err, &fe) {
			return service.BadRequest(fe.Error())
		}
		return service.Internal(err)
	}

	return nil
}

func describeDecodeError(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError

	switch {
	case errors.Is(err, io.EOF):
		return "request body is empty"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "request body is not valid JSON"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("%s has the wrong type", typeErr.Field)
	case errors.As(err, &maxErr):
		return "request body is too large"
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return strings.TrimPrefix(err.Error(), "json: ") + " is not allowed"
	default:
		return "invalid request body"
	}
}
