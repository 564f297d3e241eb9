package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

type PasswordHasher struct {
	cost    int
	workers *semaphore.Weighted
	// dummy is a hash at cost, compared against when no account exists
	dummy []byte
}

// NewPasswordHasher shares workers with other CPU-heavy jobs. A nil limiter runs unbounded.
func NewPasswordHasher(cost int, workers *semaphore.Weighted) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("no-such-account"), cost)
	if err != nil {
		// Only possible for inputs over 72 bytes
		panic(fmt.Sprintf("bcrypt dummy hash: %v", err))
	}
	return &PasswordHasher{cost: cost, workers: workers, dummy: dummy}
}

// VerifyNothing spends one comparison at the configured cost and always fails.
// Lookup misses call it so they take as long as a wrong password.
func (h *PasswordHasher) VerifyNothing(ctx context.Context, password string) bool {
	h.Verify(ctx, password, string(h.dummy))
	return false
}

func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	release, err := acquire(ctx, h.workers)
	if err != nil {
		return "", err
	}
	defer release()

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify reports whether password matches hash. A malformed hash never matches.
func (h *PasswordHasher) Verify(ctx context.Context, password, hash string) bool {
	release, err := acquire(ctx, h.workers)
	if err != nil {
		return false
	}
	defer release()

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// acquire takes one slot from workers, giving up when ctx is done.
func acquire(ctx context.Context, workers *semaphore.Weighted) (func(), error) {
	if workers == nil {
		return func() {}, nil
	}
	err := workers.Acquire(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("waiting for worker: %w", err)
	}
	return func() { workers.Release(1) }, nil
}
