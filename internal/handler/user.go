package handler

import (
	"errors"
	"net/http"

	"github.com/templui/accounts/internal/ctxkeys"
	"github.com/templui/accounts/internal/render"
	"github.com/templui/accounts/internal/service"
	"github.com/templui/accounts/internal/validation"
)

// Multipart overhead on top of the largest accepted image.
const maxAvatarBody = validation.MaxAvatarSize + 1<<20

type subscriptionRequest struct {
	Subscription string `json:"subscription" validate:"required,plan"`
}

type avatarResponse struct {
	AvatarURL string `json:"avatarURL"`
}

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, http.StatusOK, h.userService.Current(ctxkeys.User(r.Context())))
}

// UpdateSubscription accepts only {"subscription": ...}; any other key is rejected.
func (h *UserHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("userId")
	err := service.ValidateID(id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req subscriptionRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	user, err := h.userService.UpdateSubscription(r.Context(), id, req.Subscription)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, user.Public())
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBody)
	err := r.ParseMultipartForm(validation.MaxAvatarSize)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			render.Error(w, r, service.BadRequest("avatar is too large"))
			return
		}
		render.Error(w, r, service.ErrMissingAvatar)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("avatar")
	if err != nil {
		render.Error(w, r, service.ErrMissingAvatar)
		return
	}
	defer func() { _ = file.Close() }()

	ref, err := h.userService.UpdateAvatar(r.Context(), user, file, header.Filename, header.Size)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, avatarResponse{AvatarURL: ref})
}
