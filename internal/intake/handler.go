// Package intake implements the lead form endpoint: anti-spam checks,
// rate limiting, validation, best-effort persistence and notification.
package intake

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/planetaskin/lead-intake/internal/leads"
	"github.com/planetaskin/lead-intake/internal/observability/metrics"
	"github.com/planetaskin/lead-intake/internal/phone"
	"github.com/planetaskin/lead-intake/internal/ratelimit"
	"github.com/planetaskin/lead-intake/pkg/logging"
)

var tracer = otel.Tracer("intake")

// User-facing messages outside field validation.
const (
	msgCheckForm = "Проверьте форму, пожалуйста."
	msgRateLimit = "Слишком много попыток. Попробуйте чуть позже или позвоните: "
)

// Options tunes the handler.
type Options struct {
	// ThanksPath is the success redirect target.
	ThanksPath string
	// FallbackPhone is quoted in the rate-limit message.
	FallbackPhone string
	// MinFillTime is the fastest plausible human fill time.
	MinFillTime time.Duration
}

// Handler processes one lead submission per request. The decision
// sequence is strictly linear; only validation and the rate limit can
// block an otherwise well-formed lead.
type Handler struct {
	limiter   ratelimit.Limiter
	recorders []leads.Recorder
	notifier  Notifier
	metrics   *metrics.IntakeMetrics
	logger    *logging.Logger
	opts      Options

	// now is swappable in tests.
	now func() time.Time
}

// Notifier receives each accepted lead. Implementations must swallow
// their own failures.
type Notifier interface {
	NotifyLead(ctx context.Context, rec *leads.Record)
}

// NewHandler creates the intake handler. recorders and notifier are
// best-effort sinks; metrics may be nil.
func NewHandler(limiter ratelimit.Limiter, recorders []leads.Recorder, notifier Notifier, m *metrics.IntakeMetrics, logger *logging.Logger, opts Options) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.ThanksPath == "" {
		opts.ThanksPath = "/thanks.html"
	}
	if opts.MinFillTime == 0 {
		opts.MinFillTime = 900 * time.Millisecond
	}
	return &Handler{
		limiter:   limiter,
		recorders: recorders,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// Submit handles POST /send-form.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracer.Start(r.Context(), "intake.submit")
	defer span.End()
	defer func() {
		h.metrics.ObserveSubmitLatency(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		redirect303(w, r, "/")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.logger.Error("form parse failed", "error", err)
		redirect303(w, r, "/")
		return
	}

	asJSON := wantsJSON(r)
	returnTo := withAnchor(safePath(leads.Truncate(r.PostFormValue("page"), 400), "/"))

	// Honeypot: pretend everything went fine so automation learns
	// nothing.
	if leads.Truncate(r.PostFormValue("website"), 200) != "" {
		span.SetAttributes(attribute.String("intake.outcome", metrics.OutcomeHoneypot))
		h.metrics.ObserveSubmission(metrics.OutcomeHoneypot)
		h.respondSuccess(w, r, asJSON)
		return
	}

	// Same silent treatment for implausibly fast fills.
	fillTimeMs, _ := strconv.ParseInt(r.PostFormValue("fill_time_ms"), 10, 64)
	if fillTimeMs > 0 && fillTimeMs < h.opts.MinFillTime.Milliseconds() {
		span.SetAttributes(attribute.String("intake.outcome", metrics.OutcomeFastFill))
		h.metrics.ObserveSubmission(metrics.OutcomeFastFill)
		h.respondSuccess(w, r, asJSON)
		return
	}

	ip := clientIP(r)
	if h.limiter != nil && !h.limiter.Allow(ctx, ip) {
		span.SetAttributes(attribute.String("intake.outcome", metrics.OutcomeRateLimited))
		h.metrics.ObserveSubmission(metrics.OutcomeRateLimited)
		h.logger.Warn("submission rate limited", "ip", ip)
		if asJSON {
			writeJSON(w, http.StatusTooManyRequests, response{
				OK:      false,
				Message: msgRateLimit + h.opts.FallbackPhone,
			})
			return
		}
		redirect303(w, r, withQueryFlag(returnTo, "lead_error", "rate"))
		return
	}

	sub := submissionFromForm(r)

	fieldErrors := sub.Validate()
	if len(fieldErrors) > 0 {
		span.SetAttributes(attribute.String("intake.outcome", metrics.OutcomeInvalid))
		h.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		if asJSON {
			writeJSON(w, http.StatusUnprocessableEntity, response{
				OK:          false,
				Message:     msgCheckForm,
				FieldErrors: fieldErrors,
			})
			return
		}
		// The redirect stays free of personal data so nothing leaks
		// into access logs or browser history.
		redirect303(w, r, withQueryFlag(returnTo, "lead_error", "1"))
		return
	}

	number, _ := phone.Normalize(sub.Phone)
	rec := &leads.Record{
		ID:            uuid.NewString(),
		Date:          leads.FormatDate(h.now()),
		IP:            ip,
		UA:            userAgent(r),
		FormID:        sub.FormID,
		Page:          sub.Page,
		Referrer:      sub.Referrer,
		Service:       sub.Service,
		Name:          sub.Name,
		Phone:         number.E164,
		ContactMethod: sub.ContactMethod,
		Comment:       sub.Comment,
		Consent:       true,
		PolicyVersion: sub.PolicyVersion,
		Tracking:      sub.Tracking,
	}

	for _, recorder := range h.recorders {
		if err := recorder.Record(ctx, rec); err != nil {
			h.logger.Error("lead persistence failed", "error", err, "lead_id", rec.ID)
			h.metrics.ObservePersistFailure(sinkName(recorder))
		}
	}

	if h.notifier != nil {
		h.notifier.NotifyLead(ctx, rec)
	}

	span.SetAttributes(attribute.String("intake.outcome", metrics.OutcomeAccepted))
	h.metrics.ObserveSubmission(metrics.OutcomeAccepted)
	h.logger.Info("lead accepted", "lead_id", rec.ID, "form_id", rec.FormID, "page", rec.Page)

	h.respondSuccess(w, r, asJSON)
}

// submissionFromForm maps and bounds every field explicitly before any
// business logic touches it.
func submissionFromForm(r *http.Request) *leads.Submission {
	fillTimeMs, _ := strconv.ParseInt(r.PostFormValue("fill_time_ms"), 10, 64)
	return &leads.Submission{
		Name:          leads.Truncate(r.PostFormValue("name"), 100),
		Phone:         leads.Truncate(r.PostFormValue("phone"), 80),
		ContactMethod: leads.NormalizeContactMethod(leads.Truncate(r.PostFormValue("contact_method"), 20)),
		Comment:       leads.Truncate(r.PostFormValue("comment"), 800),
		Service:       leads.Truncate(r.PostFormValue("service"), 120),
		FormID:        leads.Truncate(r.PostFormValue("form_id"), 60),
		Page:          leads.Truncate(r.PostFormValue("page"), 400),
		Referrer:      leads.Truncate(r.PostFormValue("referrer"), 400),
		PolicyVersion: leads.Truncate(r.PostFormValue("policy_version"), 40),
		Consent:       r.PostForm.Has("consent"),
		Honeypot:      leads.Truncate(r.PostFormValue("website"), 200),
		FillTimeMs:    fillTimeMs,
		Tracking: leads.Tracking{
			UTMSource:   leads.Truncate(r.PostFormValue("utm_source"), 120),
			UTMMedium:   leads.Truncate(r.PostFormValue("utm_medium"), 120),
			UTMCampaign: leads.Truncate(r.PostFormValue("utm_campaign"), 120),
			UTMContent:  leads.Truncate(r.PostFormValue("utm_content"), 120),
			UTMTerm:     leads.Truncate(r.PostFormValue("utm_term"), 120),
			GCLID:       leads.Truncate(r.PostFormValue("gclid"), 200),
			YCLID:       leads.Truncate(r.PostFormValue("yclid"), 200),
		},
	}
}

func (h *Handler) respondSuccess(w http.ResponseWriter, r *http.Request, asJSON bool) {
	if asJSON {
		writeJSON(w, http.StatusOK, response{OK: true, Redirect: h.opts.ThanksPath})
		return
	}
	redirect303(w, r, h.opts.ThanksPath)
}

type response struct {
	OK          bool              `json:"ok"`
	Redirect    string            `json:"redirect,omitempty"`
	Message     string            `json:"message,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func redirect303(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// wantsJSON reports whether the client asked for a JSON reply instead
// of the no-JS redirect flow.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(strings.ToLower(r.Header.Get("Accept")), "application/json") {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Requested-With"), "xmlhttprequest")
}

// safePath accepts only same-origin relative paths. Anything carrying
// a scheme or authority falls back.
func safePath(path, fallback string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return fallback
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return fallback
	}
	if strings.HasPrefix(path, "//") {
		return fallback
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// withAnchor points the no-JS redirect back at the form block.
func withAnchor(path string) string {
	if strings.Contains(path, "#") {
		return path
	}
	return path + "#form"
}

func withQueryFlag(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	// Keep the anchor at the end of the URL.
	if i := strings.Index(path, "#"); i >= 0 {
		return path[:i] + sep + key + "=" + value + path[i:]
	}
	return path + sep + key + "=" + value
}

// clientIP trusts RemoteAddr, which the router's RealIP middleware has
// already rewritten from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func userAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return "unknown"
}

func sinkName(recorder leads.Recorder) string {
	switch recorder.(type) {
	case *leads.LogStore:
		return "log"
	case *leads.PostgresRepository:
		return "postgres"
	default:
		return "other"
	}
}
