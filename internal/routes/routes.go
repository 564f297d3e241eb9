package routes

import (
	"net/http"

	"github.com/templui/accounts/internal/app"
	"github.com/templui/accounts/internal/handler"
	"github.com/templui/accounts/internal/middleware"
	"github.com/templui/accounts/internal/storage"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	user := handler.NewUserHandler(app.UserService)
	health := handler.NewHealthHandler(app.DB)

	requireAuth := middleware.RequireAuth(app.AuthService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)

	// Avatars written by local storage
	local, ok := app.Storage.(*storage.LocalStorage)
	if ok {
		mux.Handle("GET /avatars/", http.FileServer(local.FileSystem()))
	}

	// Registration and verification
	mux.HandleFunc("POST /api/users/register", auth.Register)
	mux.HandleFunc("GET /api/users/verify/{verificationToken}", auth.VerifyEmail)
	mux.HandleFunc("POST /api/users/verify", auth.ResendVerification)
	mux.HandleFunc("POST /api/users/login", auth.Login)

	// Subscription changes are addressed by id and do not require a session
	mux.HandleFunc("PATCH /api/users/{userId}/subscription", user.UpdateSubscription)

	// ============================================================================
	// PROTECTED ROUTES (require a live session)
	// ============================================================================

	mux.HandleFunc("GET /api/users/current", requireAuth(user.Current))
	mux.HandleFunc("POST /api/users/logout", requireAuth(auth.Logout))
	mux.HandleFunc("PATCH /api/users/avatars", requireAuth(user.UpdateAvatar))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogging,
	)
}
