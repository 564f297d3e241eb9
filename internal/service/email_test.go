package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender keeps every message it is asked to send.
type recordingSender struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingSender) last() Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[len(s.messages)-1]
}

func TestEmailService_SendVerificationEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewEmailService(sender, "https://api.example.com", "Accounts")

	require.NoError(t, svc.SendVerificationEmail(context.Background(), "a@x.com", "tok123"))

	msg := sender.last()
	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, "Verify your email for Accounts", msg.Subject)
	assert.Contains(t, msg.HTML, `href="https://api.example.com/api/users/verify/tok123"`)
}

func TestEmailService_SenderFailure(t *testing.T) {
	cause := errors.New("smtp down")
	svc := NewEmailService(&recordingSender{err: cause}, "https://api.example.com", "Accounts")

	err := svc.SendVerificationEmail(context.Background(), "a@x.com", "tok123")
	assert.ErrorIs(t, err, cause)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), Message{To: "a@x.com", Subject: "s"}))
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSMTPSender("localhost", 2525, "", "", "noreply@example.com").Send(ctx, Message{To: "a@x.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
