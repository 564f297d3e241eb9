package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/accounts/internal/ctxkeys"
	"github.com/templui/accounts/internal/model"
	"github.com/templui/accounts/internal/service"
)

type stubAuthenticator struct {
	token string
	user  *model.User
	err   error
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != s.token {
		return nil, service.ErrNotAuthorized
	}
	u := *s.user
	return &u, nil
}

func TestRequireAuth(t *testing.T) {
	auth := &stubAuthenticator{
		token: "good",
		user:  &model.User{ID: "u1", Email: "a@x.com", PasswordHash: "hash"},
	}

	var seen *model.User
	h := RequireAuth(auth)(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.User(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid bearer", "Bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"lowercase scheme", "bearer good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/users/current", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "u1", seen.ID)
				assert.Empty(t, seen.PasswordHash)
			} else {
				assert.Nil(t, seen)
				assert.JSONEq(t, `{"message":"Not authorized"}`, rec.Body.String())
			}
		})
	}
}

func TestRequireAuth_StoreFailure(t *testing.T) {
	auth := &stubAuthenticator{err: service.Internal(errors.New("db down"))}
	h := RequireAuth(auth)(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("first"), mw("second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestRequestIDAndLogging(t *testing.T) {
	var id string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = ctxkeys.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}), RequestID, RequestLogging)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/current", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "given-id", id)
}
