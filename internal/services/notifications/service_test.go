package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/infra/mailer"
)

type senderStub struct {
	sent []mailer.Message
	err  error
}

func (s *senderStub) Send(_ context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestNotifyRendersReminder(t *testing.T) {
	sender := &senderStub{}
	svc := NewService(sender, time.Second, nil)

	user := model.User{
		Email:                  "a@example.com",
		Name:                   "Asha",
		SubscriptionValidUntil: model.At(time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)),
	}
	svc.Notify(context.Background(), KindRenewalReminder, user)

	if len(sender.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Subject != "Your Tackleit Pro Subscription is Renewing Soon" {
		t.Fatalf("unexpected subject: %s", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Hi Asha") || !strings.Contains(msg.HTML, "2026-03-15") {
		t.Fatalf("unexpected body: %s", msg.HTML)
	}
}

func TestNotifySwallowsSenderFailure(t *testing.T) {
	svc := NewService(&senderStub{err: errors.New("smtp down")}, time.Second, nil)
	svc.Notify(context.Background(), KindPaymentFailed, model.User{Email: "a@example.com"})
}

func TestSendReportsMissingEmail(t *testing.T) {
	svc := NewService(&senderStub{}, time.Second, nil)
	if err := svc.Send(context.Background(), KindPaymentSucceeded, model.User{}); !errors.Is(err, mailer.ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
}

func TestSendEscapesName(t *testing.T) {
	sender := &senderStub{}
	svc := NewService(sender, time.Second, nil)
	if err := svc.Send(context.Background(), KindSubscriptionResumed, model.User{Email: "a@example.com", Name: "<b>x</b>"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if strings.Contains(sender.sent[0].HTML, "<b>x</b>") {
		t.Fatalf("name should be html escaped: %s", sender.sent[0].HTML)
	}
}
