package notify

import (
	"context"
	"strings"
	"time"

	"github.com/planetaskin/lead-intake/internal/leads"
	"github.com/planetaskin/lead-intake/internal/phone"
	"github.com/planetaskin/lead-intake/pkg/logging"
)

// LeadSubject is the notification subject line.
const LeadSubject = "Новая заявка с сайта"

// Service sends the operator notification for each accepted lead.
type Service struct {
	email  EmailSender
	to     string
	logger *logging.Logger
}

// NewService creates a notification service. A nil sender or empty
// recipient disables notifications.
func NewService(email EmailSender, to string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:  email,
		to:     to,
		logger: logger,
	}
}

// NotifyLead sends the plain-text notification for rec. Failures are
// logged and swallowed; the submission flow never depends on mail
// delivery.
func (s *Service) NotifyLead(ctx context.Context, rec *leads.Record) {
	if s == nil || s.email == nil || s.to == "" {
		return
	}

	msg := EmailMessage{
		To:      s.to,
		Subject: LeadSubject,
		Body:    LeadEmailBody(rec, time.Now()),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("lead notification failed", "error", err, "form_id", rec.FormID)
	}
}

// LeadEmailBody renders the plain-text notification the operators have
// always received: phone first, optional name/service/comment, page,
// date, consent line.
func LeadEmailBody(rec *leads.Record, now time.Time) string {
	display := rec.Phone
	if n, err := phone.Normalize(rec.Phone); err == nil {
		display = n.Display
	}

	page := rec.Page
	if page == "" {
		page = "/"
	}

	lines := []string{"Новая заявка", ""}
	lines = append(lines, "Телефон: "+display)
	if rec.Name != "" {
		lines = append(lines, "Имя: "+rec.Name)
	}
	lines = append(lines, "Способ связи: "+rec.ContactMethod)
	if rec.Service != "" {
		lines = append(lines, "Услуга: "+rec.Service)
	}
	lines = append(lines, "Страница: "+page)
	if rec.Comment != "" {
		lines = append(lines, "", "Комментарий:", rec.Comment)
	}
	lines = append(lines, "", "Дата: "+now.Format("02.01.2006 15:04"), "Согласие: получено")

	return strings.Join(lines, "\n")
}
