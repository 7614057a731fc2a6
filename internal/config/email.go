package config

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// EmailService sends transactional mail through Resend. When mail is disabled in
// the config, Send becomes a logged no-op so the workflows stay usable in dev.
type EmailService struct {
	client  *resend.Client
	from    string
	enabled bool
	logger  *zap.Logger
}

func NewEmailService(lc fx.Lifecycle, cfg *Config, logger *zap.Logger) *EmailService {
	service := &EmailService{
		from:    cfg.Mail.From,
		enabled: cfg.Mail.Enabled,
		logger:  logger,
	}
	if cfg.Mail.Enabled {
		service.client = resend.NewClient(cfg.Mail.APIKey)
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("email service initialized", zap.Bool("enabled", cfg.Mail.Enabled))
			return nil
		},
	})
	return service
}

func (e *EmailService) Send(ctx context.Context, to, subject, html string) error {
	if !e.enabled {
		e.logger.Debug("mail disabled, dropping email", zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    e.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := e.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}

	e.logger.Info("email sent", zap.String("to", to), zap.String("id", sent.Id))
	return nil
}
