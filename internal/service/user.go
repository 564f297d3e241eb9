package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/templui/accounts/internal/imaging"
	"github.com/templui/accounts/internal/model"
	"github.com/templui/accounts/internal/repository"
	"github.com/templui/accounts/internal/validation"
)

type UserService struct {
	userRepository repository.UserRepository
	fileService    *FileService
}

func NewUserService(userRepository repository.UserRepository, fileService *FileService) *UserService {
	return &UserService{
		userRepository: userRepository,
		fileService:    fileService,
	}
}

func (s *UserService) Current(user *model.User) model.PublicUser {
	return user.Public()
}

// ValidateID rejects strings that cannot be an account id.
func ValidateID(id string) error {
	_, err := uuid.Parse(id)
	if err != nil {
		return BadRequest(fmt.Sprintf("%s is not valid id", id))
	}
	return nil
}

// UpdateSubscription changes only the plan of the account with the given id.
func (s *UserService) UpdateSubscription(ctx context.Context, id, plan string) (*model.User, error) {
	err := ValidateID(id)
	if err != nil {
		return nil, err
	}

	if !model.IsPlan(plan) {
		return nil, BadRequest("subscription must be one of: " + strings.Join(model.Plans, ", "))
	}

	user, err := s.userRepository.Update(ctx, id, model.UserUpdate{Subscription: &plan})
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, Internal(fmt.Errorf("failed to update subscription: %w", err))
	}

	slog.InfoContext(ctx, "subscription updated", "user_id", id, "subscription", plan)
	return user, nil
}

// UpdateAvatar validates, normalizes and stores an uploaded image, then
// records its reference on the account.
func (s *UserService) UpdateAvatar(ctx context.Context, user *model.User, file io.ReadSeeker, filename string, size int64) (string, error) {
	if file == nil {
		return "", ErrMissingAvatar
	}

	err := validation.ValidateFile(file, filename, size, validation.AvatarConstraints)
	if err != nil {
		return "", &Error{Kind: KindBadRequest, Message: err.Error(), Err: err}
	}

	ref, err := s.fileService.SaveAvatar(ctx, user.ID, filename, file)
	if errors.Is(err, imaging.ErrImageTooLarge) {
		return "", &Error{Kind: KindBadRequest, Message: fmt.Sprintf("avatar must be at most %dx%d pixels", imaging.MaxDimension, imaging.MaxDimension), Err: err}
	}
	if err != nil {
		return "", Internal(err)
	}

	_, err = s.userRepository.Update(ctx, user.ID, model.UserUpdate{AvatarURL: &ref})
	if err != nil {
		return "", Internal(fmt.Errorf("failed to update avatar: %w", err))
	}

	if user.AvatarURL != "" && user.AvatarURL != ref {
		err = s.fileService.RemoveAvatar(ctx, user.ID, user.AvatarURL)
		if err != nil {
			slog.WarnContext(ctx, "failed to remove previous avatar", "user_id", user.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "avatar updated", "user_id", user.ID, "avatar_url", ref)
	return ref, nil
}
