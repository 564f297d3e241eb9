package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/accounts/internal/service"
)

type errorBody struct {
	Message string `json:"message"`
}

// Message is the body of responses that only carry a status text.
type Message struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.ErrorContext(r.Context(), "render json failed", "error", err, "path", r.URL.Path)
	}
}

// Error maps err to a status and writes {"message": ...}. Internal causes are
// logged and never shown to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		svcErr = service.Internal(err)
	}

	status := svcErr.Kind.Status()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
	}

	JSON(w, r, status, errorBody{Message: svcErr.Message})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
