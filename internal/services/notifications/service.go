package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/infra/mailer"
	"github.com/praneeth552/Jobfinder/internal/metrics"
)

// Service sends billing emails. Notify never returns an error: delivery
// is a side effect that must not fail the state change that caused it.
type Service struct {
	sender  mailer.Sender
	timeout time.Duration
	logger  *zap.Logger
}

func NewService(sender mailer.Sender, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{sender: sender, timeout: timeout, logger: logger}
}

func (s *Service) Notify(ctx context.Context, kind Kind, user model.User) {
	if err := s.Send(ctx, kind, user); err != nil {
		s.logger.Warn("notification failed",
			zap.String("kind", string(kind)),
			zap.String("user_id", user.HexID()),
			zap.Error(err),
		)
	}
}

// Send is the error-returning variant used where the caller tracks delivery.
func (s *Service) Send(ctx context.Context, kind Kind, user model.User) error {
	err := s.send(ctx, kind, user)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.NotificationsTotal.WithLabelValues(string(kind), result).Inc()
	return err
}

func (s *Service) send(ctx context.Context, kind Kind, user model.User) error {
	if s == nil || s.sender == nil {
		return fmt.Errorf("notification sender is not configured")
	}
	email := strings.TrimSpace(user.Email)
	if email == "" {
		return mailer.ErrNoRecipients
	}

	subject, html, err := render(kind, user.Name, user.SubscriptionValidUntil.Ptr())
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.sender.Send(sendCtx, mailer.Message{
		To:      []string{email},
		Subject: subject,
		HTML:    html,
	}); err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	return nil
}
