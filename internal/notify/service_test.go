package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetaskin/lead-intake/internal/leads"
)

type fakeSender struct {
	sent []EmailMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg EmailMessage) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func TestLeadEmailBody_FullRecord(t *testing.T) {
	rec := &leads.Record{
		Name:          "Анна",
		Phone:         "+79991234567",
		ContactMethod: leads.MethodWhatsApp,
		Service:       "Чистка лица",
		Page:          "/face.html",
		Comment:       "Удобно после 18:00",
	}
	body := LeadEmailBody(rec, time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC))

	lines := strings.Split(body, "\n")
	assert.Equal(t, "Новая заявка", lines[0])
	assert.Contains(t, body, "Телефон: +7 (999) 123-45-67")
	assert.Contains(t, body, "Имя: Анна")
	assert.Contains(t, body, "Способ связи: whatsapp")
	assert.Contains(t, body, "Услуга: Чистка лица")
	assert.Contains(t, body, "Страница: /face.html")
	assert.Contains(t, body, "Комментарий:\nУдобно после 18:00")
	assert.Contains(t, body, "Дата: 01.03.2025 12:30")
	assert.Contains(t, body, "Согласие: получено")
}

func TestLeadEmailBody_OptionalFieldsOmitted(t *testing.T) {
	rec := &leads.Record{
		Phone:         "+79991234567",
		ContactMethod: leads.MethodCall,
	}
	body := LeadEmailBody(rec, time.Now())

	assert.NotContains(t, body, "Имя:")
	assert.NotContains(t, body, "Услуга:")
	assert.NotContains(t, body, "Комментарий:")
	assert.Contains(t, body, "Страница: /")
}

func TestNotifyLead_SendsToConfiguredRecipient(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, "mc@hs-planet.ru", nil)

	svc.NotifyLead(context.Background(), &leads.Record{Phone: "+79991234567", ContactMethod: leads.MethodCall})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "mc@hs-planet.ru", sender.sent[0].To)
	assert.Equal(t, LeadSubject, sender.sent[0].Subject)
}

func TestNotifyLead_SwallowsSendErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	svc := NewService(sender, "mc@hs-planet.ru", nil)

	// Must not panic or propagate.
	svc.NotifyLead(context.Background(), &leads.Record{Phone: "+79991234567"})
	assert.Len(t, sender.sent, 1)
}

func TestNotifyLead_DisabledWithoutRecipient(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, "", nil)

	svc.NotifyLead(context.Background(), &leads.Record{Phone: "+79991234567"})
	assert.Empty(t, sender.sent)
}
