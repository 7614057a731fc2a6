package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"enotice/internal/auth"
	"enotice/internal/notice"
)

// Mailer is satisfied by config.EmailService.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Service emails authors about approvals and HODs about pending notices.
// Delivery is best-effort: failures are logged, never propagated into the
// workflows that triggered them.
type Service struct {
	users   auth.UserRepository
	notices notice.Repository
	mail    Mailer
	logger  *zap.Logger
}

func NewService(users auth.UserRepository, notices notice.Repository, mail Mailer, logger *zap.Logger) *Service {
	return &Service{users: users, notices: notices, mail: mail, logger: logger}
}

// NoticeApproved tells the author their notice went live.
func (s *Service) NoticeApproved(ctx context.Context, n *notice.Notice) {
	if n.Author.Email == "" {
		return
	}
	subject := "Your notice has been approved"
	body := fmt.Sprintf("<p>Your notice <strong>%s</strong> has been approved and is now visible on the board.</p>", n.Title)
	if err := s.mail.Send(ctx, n.Author.Email, subject, body); err != nil {
		s.logger.Warn("failed to send approval email",
			zap.String("notice", n.ID),
			zap.String("to", n.Author.Email),
			zap.Error(err),
		)
	}
}

// SendPendingDigest emails every HOD a summary of notices awaiting approval.
// No pending notices means no mail.
func (s *Service) SendPendingDigest(ctx context.Context) {
	pending, err := s.notices.List(ctx, notice.StatusPending)
	if err != nil {
		s.logger.Error("failed to fetch pending notices for digest", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	hods, err := s.users.FindHODs(ctx)
	if err != nil {
		s.logger.Error("failed to fetch HODs for digest", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%d notice(s) awaiting approval", len(pending))
	body := "<p>The following notices are waiting for review:</p><ul>"
	for _, n := range pending {
		body += fmt.Sprintf("<li>%s — submitted by %s</li>", n.Title, n.Author.Email)
	}
	body += "</ul>"

	for _, hod := range hods {
		if err := s.mail.Send(ctx, hod.Email, subject, body); err != nil {
			s.logger.Warn("failed to send pending digest",
				zap.String("to", hod.Email),
				zap.Error(err),
			)
		}
	}
}
