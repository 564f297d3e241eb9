package handler

import (
	"net/http"

	"github.com/templui/accounts/internal/ctxkeys"
	"github.com/templui/accounts/internal/model"
	"github.com/templui/accounts/internal/render"
	"github.com/templui/accounts/internal/service"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type registerResponse struct {
	User model.PublicUser `json:"user"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusCreated, registerResponse{User: user.Public()})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	err := h.authService.VerifyEmail(r.Context(), r.PathValue("verificationToken"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, render.Message{Message: "Verification successful"})
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	err = h.authService.ResendVerification(r.Context(), req.Email)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, render.Message{Message: "Verification email sent"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, loginResponse{Token: token, User: user.Public()})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.authService.Logout(r.Context(), ctxkeys.User(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.NoContent(w)
}
