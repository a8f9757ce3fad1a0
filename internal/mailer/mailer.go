// Package mailer delivers transactional mail through an HTTP mail-provider
// API. When no provider is configured, New returns a no-op mailer that only
// logs, which keeps development setups free of external dependencies.
package mailer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tripwell/trippy-server/internal/config"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/service"
	"github.com/tripwell/trippy-server/models"
)

// requestTimeout bounds a single delivery attempt.
const requestTimeout = 10 * time.Second

// message is the JSON payload the mail provider accepts.
type message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// client is the HTTP-API-backed implementation of [service.Mailer].
type client struct {
	http   *resty.Client
	sender string
	logger *logger.Logger
}

// New returns a mailer for the given configuration. An empty APIURL yields
// the no-op mailer.
func New(cfg config.Mail, log *logger.Logger) service.Mailer {
	if cfg.APIURL == "" {
		log.Info().Msg("no mail provider configured, using no-op mailer")
		return &noopMailer{logger: log}
	}

	httpClient := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(requestTimeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &client{
		http:   httpClient,
		sender: cfg.Sender,
		logger: log,
	}
}

// SendWelcome greets a freshly registered user.
func (c *client) SendWelcome(ctx context.Context, user models.User, loginURL string) error {
	text := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Trippy, we're glad to have you!\nVisit your account page to get started: %s\n",
		user.Name, loginURL,
	)
	return c.send(ctx, user.Email, "Welcome to the Trippy family!", text)
}

// SendPasswordReset delivers the plaintext reset link. The link is the only
// place the plaintext token ever leaves the server.
func (c *client) SendPasswordReset(ctx context.Context, user models.User, resetURL string) error {
	text := fmt.Sprintf(
		"Hi %s,\n\nForgot your password? Submit a request with your new password to: %s\n"+
			"If you didn't forget your password, please ignore this email. The link is valid for 10 minutes.\n",
		user.Name, resetURL,
	)
	return c.send(ctx, user.Email, "Your password reset token", text)
}

func (c *client) send(ctx context.Context, to, subject, text string) error {
	log := logger.FromContext(ctx)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(message{
			From:    c.sender,
			To:      to,
			Subject: subject,
			Text:    text,
		}).
		Post("/messages")
	if err != nil {
		log.Err(err).Str("subject", subject).Msg("mail request failed")
		return fmt.Errorf("mail request failed: %w", err)
	}

	if resp.StatusCode() >= http.StatusMultipleChoices {
		log.Error().Int("status", resp.StatusCode()).Str("subject", subject).Msg("mail provider rejected message")
		return fmt.Errorf("mail provider rejected message: http %d", resp.StatusCode())
	}

	return nil
}

// noopMailer satisfies [service.Mailer] without delivering anything.
type noopMailer struct {
	logger *logger.Logger
}

func (n *noopMailer) SendWelcome(ctx context.Context, user models.User, loginURL string) error {
	n.logger.Info().Str("email", user.Email).Msg("skipping welcome mail (no provider configured)")
	return nil
}

func (n *noopMailer) SendPasswordReset(ctx context.Context, user models.User, resetURL string) error {
	n.logger.Info().Str("email", user.Email).Msg("skipping password-reset mail (no provider configured)")
	return nil
}
