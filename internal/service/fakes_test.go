package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/templui/accounts/internal/model"
	"github.com/templui/accounts/internal/repository"
)

// fakeUserRepository is an in-memory UserRepository.
type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
	err   error // returned by every call when set
	// updateErrs are returned by the next Update calls, one per call
	updateErrs []error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*model.User{}}
}

func copyUser(u *model.User) *model.User {
	c := *u
	if u.Token != nil {
		t := *u.Token
		c.Token = &t
	}
	if u.VerificationToken != nil {
		t := *u.VerificationToken
		c.VerificationToken = &t
	}
	return &c
}

func (r *fakeUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *fakeUserRepository) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *fakeUserRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *fakeUserRepository) ByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return r.find(func(u *model.User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	})
}

func (r *fakeUserRepository) Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if len(r.updateErrs) > 0 {
		err := r.updateErrs[0]
		r.updateErrs = r.updateErrs[1:]
		return nil, err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	nullable := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	if update.AvatarURL != nil {
		u.AvatarURL = *update.AvatarURL
	}
	if update.Subscription != nil {
		u.Subscription = *update.Subscription
	}
	if update.Token != nil {
		u.Token = nullable(*update.Token)
	}
	if update.Verify != nil {
		u.Verify = *update.Verify
	}
	if update.VerificationToken != nil {
		u.VerificationToken = nullable(*update.VerificationToken)
	}
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

// fakeTokenRepository is an in-memory TokenRepository.
type fakeTokenRepository struct {
	mu        sync.Mutex
	tokens    map[string]*model.Token
	createErr error
}

func newFakeTokenRepository() *fakeTokenRepository {
	return &fakeTokenRepository{tokens: map[string]*model.Token{}}
}

func (r *fakeTokenRepository) Create(ctx context.Context, token *model.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	t := *token
	r.tokens[token.Token] = &t
	return nil
}

func (r *fakeTokenRepository) ByToken(ctx context.Context, token string) (*model.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	c := *t
	return &c, nil
}

func (r *fakeTokenRepository) ConsumeToken(ctx context.Context, token string) (*model.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.UsedAt != nil {
		return nil, repository.ErrTokenNotFound
	}
	now := time.Now()
	t.UsedAt = &now
	c := *t
	return &c, nil
}

// memoryStorage keeps saved files in a map.
type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: map[string][]byte{}}
}

func (s *memoryStorage) Save(ctx context.Context, path string, file io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	s.files[path] = data
	return nil
}

func (s *memoryStorage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

func (s *memoryStorage) URL(path string) string {
	return path
}

func (s *memoryStorage) get(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	return data, ok
}
