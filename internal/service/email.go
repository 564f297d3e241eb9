package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers one outbound email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes emails to the log instead of delivering them (development only).
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "email sent (dev mode)", "to", msg.To, "subject", msg.Subject, "html", msg.HTML)
	return nil
}

type ResendSender struct {
	client    *resend.Client
	fromEmail string
}

func NewResendSender(apiKey, fromEmail string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), fromEmail: fromEmail}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

type SMTPSender struct {
	dialer    *gomail.Dialer
	fromEmail string
}

func NewSMTPSender(host string, port int, user, password, fromEmail string) *SMTPSender {
	return &SMTPSender{
		dialer:    gomail.NewDialer(host, port, user, password),
		fromEmail: fromEmail,
	}
}

// Send dials once per message. gomail has no context support, so ctx is only checked up front.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.fromEmail)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	err := s.dialer.DialAndSend(m)
	if err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

type EmailService struct {
	sender  Sender
	appURL  string
	appName string
}

func NewEmailService(sender Sender, appURL, appName string) *EmailService {
	return &EmailService{sender: sender, appURL: appURL, appName: appName}
}

func (s *EmailService) SendVerificationEmail(ctx context.Context, email, token string) error {
	verifyURL := fmt.Sprintf("%s/api/users/verify/%s", s.appURL, token)
	subject, body := verifyEmailTemplate(verifyURL, s.appName)

	err := s.sender.Send(ctx, Message{To: email, Subject: subject, HTML: body})
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	slog.InfoContext(ctx, "email sent", "type", "email_verify", "to", email)
	return nil
}
