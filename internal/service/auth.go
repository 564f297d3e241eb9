package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/templui/accounts/internal/model"
	"github.com/templui/accounts/internal/repository"
)

// AuthService runs registration, email verification and sessions.
type AuthService struct {
	userRepository  repository.UserRepository
	tokenRepository repository.TokenRepository
	hasher          *PasswordHasher
	sessions        *SessionIssuer
	emailService    *EmailService
}

func NewAuthService(
	userRepository repository.UserRepository,
	tokenRepository repository.TokenRepository,
	hasher *PasswordHasher,
	sessions *SessionIssuer,
	emailService *EmailService,
) *AuthService {
	return &AuthService{
		userRepository:  userRepository,
		tokenRepository: tokenRepository,
		hasher:          hasher,
		sessions:        sessions,
		emailService:    emailService,
	}
}

// Register creates an unverified account and mails its verification link.
// A failed send is reported but the account is kept.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	_, err := s.userRepository.ByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailInUse
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, Internal(fmt.Errorf("failed to check email: %w", err))
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, Internal(err)
	}

	verificationToken, err := GenerateToken()
	if err != nil {
		return nil, Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	user := &model.User{
		ID:                uuid.New().String(),
		Email:             email,
		PasswordHash:      hash,
		AvatarURL:         GravatarURL(email),
		Subscription:      model.PlanStarter,
		VerificationToken: &verificationToken,
	}

	err = s.userRepository.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailInUse
		}
		return nil, Internal(fmt.Errorf("failed to create user: %w", err))
	}

	err = s.issueVerification(ctx, user, verificationToken)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// issueVerification records the token in the ledger and sends the link.
func (s *AuthService) issueVerification(ctx context.Context, user *model.User, token string) error {
	err := s.tokenRepository.Create(ctx, &model.Token{
		UserID: user.ID,
		Type:   model.TokenTypeEmailVerify,
		Token:  token,
	})
	if err != nil {
		return Internal(fmt.Errorf("failed to record verification token: %w", err))
	}

	err = s.emailService.SendVerificationEmail(ctx, user.Email, token)
	if err != nil {
		return Internal(err)
	}
	return nil
}

// VerifyEmail consumes a verification token. Replaying a consumed token
// returns ErrAlreadyVerified, an unknown token ErrUserNotFound.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrUserNotFound
	}

	// ConsumeToken is atomic, so of two concurrent requests only one gets here
	consumed, err := s.tokenRepository.ConsumeToken(ctx, token)
	if err == nil {
		return s.markVerified(ctx, consumed.UserID)
	}
	if !errors.Is(err, repository.ErrTokenNotFound) {
		return Internal(fmt.Errorf("failed to consume token: %w", err))
	}

	existing, err := s.tokenRepository.ByToken(ctx, token)
	if err == nil && existing.IsUsed() {
		return s.finishConsumed(ctx, existing.UserID)
	}
	if err != nil && !errors.Is(err, repository.ErrTokenNotFound) {
		return Internal(fmt.Errorf("failed to look up token: %w", err))
	}

	// Accounts whose ledger row was never written still carry the token themselves
	user, err := s.userRepository.ByVerificationToken(ctx, token)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return Internal(fmt.Errorf("failed to get user: %w", err))
	}
	return s.markVerified(ctx, user.ID)
}

// finishConsumed handles a token whose ledger row is already used. The account
// update may have failed after consumption, so an unverified owner is completed here.
func (s *AuthService) finishConsumed(ctx context.Context, userID string) error {
	user, err := s.userRepository.ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return Internal(fmt.Errorf("failed to get user: %w", err))
	}
	if user.Verify {
		return ErrAlreadyVerified
	}

	slog.WarnContext(ctx, "completing verification for consumed token", "user_id", userID)
	return s.markVerified(ctx, userID)
}

func (s *AuthService) markVerified(ctx context.Context, userID string) error {
	verified := true
	cleared := ""
	_, err := s.userRepository.Update(ctx, userID, model.UserUpdate{
		Verify:            &verified,
		VerificationToken: &cleared,
	})
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return Internal(fmt.Errorf("failed to verify user: %w", err))
	}

	slog.InfoContext(ctx, "email verified", "user_id", userID)
	return nil
}

// ResendVerification mails the pending verification link again.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepository.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrEmailNotFound
	}
	if err != nil {
		return Internal(fmt.Errorf("failed to get user: %w", err))
	}

	if user.Verify {
		return ErrAlreadyVerified
	}

	if user.VerificationToken != nil && *user.VerificationToken != "" {
		err = s.emailService.SendVerificationEmail(ctx, user.Email, *user.VerificationToken)
		if err != nil {
			return Internal(err)
		}
		return nil
	}

	// Unverified without a token: reissue one
	token, err := GenerateToken()
	if err != nil {
		return Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	user, err = s.userRepository.Update(ctx, user.ID, model.UserUpdate{VerificationToken: &token})
	if err != nil {
		return Internal(fmt.Errorf("failed to store token: %w", err))
	}

	return s.issueVerification(ctx, user, token)
}

// Login checks credentials and stores a fresh session token on the account.
// Unknown email, unverified account and wrong password all return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepository.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn the same bcrypt time as a real comparison
			s.hasher.VerifyNothing(ctx, password)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, Internal(fmt.Errorf("failed to get user: %w", err))
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		if err := ctx.Err(); err != nil {
			return "", nil, Internal(err)
		}
		return "", nil, ErrInvalidCredentials
	}

	if !user.Verify {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return "", nil, Internal(err)
	}

	user, err = s.userRepository.Update(ctx, user.ID, model.UserUpdate{Token: &token})
	if err != nil {
		return "", nil, Internal(fmt.Errorf("failed to store session: %w", err))
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return token, user, nil
}

// Logout clears the stored session so the token stops authenticating.
func (s *AuthService) Logout(ctx context.Context, user *model.User) error {
	cleared := ""
	_, err := s.userRepository.Update(ctx, user.ID, model.UserUpdate{Token: &cleared})
	if err != nil {
		return Internal(fmt.Errorf("failed to clear session: %w", err))
	}

	slog.InfoContext(ctx, "user logged out", "user_id", user.ID)
	return nil
}

// Authenticate resolves a bearer token to its account. The token must be
// validly signed, unexpired and equal to the session stored on the account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.sessions.Verify(token)
	if err != nil {
		return nil, ErrNotAuthorized
	}

	user, err := s.userRepository.ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, Internal(fmt.Errorf("failed to get user: %w", err))
	}

	if !user.HasSession() || subtle.ConstantTimeCompare([]byte(*user.Token), []byte(token)) != 1 {
		return nil, ErrNotAuthorized
	}

	return user, nil
}
