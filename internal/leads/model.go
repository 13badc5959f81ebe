package leads

import (
	"strings"
	"time"
)

// Contact methods a visitor can pick on the form. Anything else is
// coerced to MethodCall.
const (
	MethodCall     = "call"
	MethodWhatsApp = "whatsapp"
	MethodTelegram = "telegram"
)

// Submission is one lead form submit, populated by an explicit
// field-mapping step from the form-encoded body before any business
// logic runs.
type Submission struct {
	Name          string
	Phone         string
	ContactMethod string
	Comment       string
	Service       string
	FormID        string
	Page          string
	Referrer      string
	PolicyVersion string
	Consent       bool

	// Anti-spam signals.
	Honeypot   string
	FillTimeMs int64

	Tracking Tracking
}

// Tracking carries the ad attribution parameters captured on the
// landing page.
type Tracking struct {
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
	UTMContent  string `json:"utm_content"`
	UTMTerm     string `json:"utm_term"`
	GCLID       string `json:"gclid"`
	YCLID       string `json:"yclid"`
}

// Record is the append-only log representation of an accepted lead.
// Field names match the historical leads.jsonl layout.
type Record struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	IP   string `json:"ip"`
	UA   string `json:"ua"`

	FormID   string `json:"form_id"`
	Page     string `json:"page"`
	Referrer string `json:"referrer"`
	Service  string `json:"service"`

	Name          string `json:"name"`
	Phone         string `json:"phone"`
	ContactMethod string `json:"contact_method"`
	Comment       string `json:"comment"`

	Consent       bool   `json:"consent"`
	PolicyVersion string `json:"policy_version"`

	Tracking Tracking `json:"utm"`
}

// recordTime is the timestamp layout the log has always used.
const recordTime = "2006-01-02 15:04:05"

// FormatDate renders t in the log's timestamp layout.
func FormatDate(t time.Time) string {
	return t.Format(recordTime)
}

// NormalizeContactMethod coerces unknown methods to a phone call.
func NormalizeContactMethod(method string) string {
	switch strings.TrimSpace(method) {
	case MethodWhatsApp:
		return MethodWhatsApp
	case MethodTelegram:
		return MethodTelegram
	default:
		return MethodCall
	}
}

// Truncate bounds v to max runes. Oversized input is clipped, not
// rejected.
func Truncate(v string, max int) string {
	v = strings.TrimSpace(v)
	runes := []rune(v)
	if len(runes) > max {
		return string(runes[:max])
	}
	return v
}
