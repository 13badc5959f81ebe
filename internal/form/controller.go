// Package form drives one lead form's lifecycle from render to
// submission result: hidden tracking fields, the phone input mask,
// local anti-spam checks and the background submit.
package form

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/planetaskin/lead-intake/internal/leads"
	"github.com/planetaskin/lead-intake/internal/phone"
	"github.com/planetaskin/lead-intake/internal/tracking"
	"github.com/planetaskin/lead-intake/pkg/logging"
)

// ErrInFlight is returned when Submit is called while a previous
// submission is still outstanding.
var ErrInFlight = errors.New("form: submission already in flight")

// MsgSendFailed prefixes the generic transport failure message; the
// clinic phone is appended so the visitor always has a way to reach us.
const MsgSendFailed = "Не получилось отправить. Позвоните нам: "

// Config describes the form instance being controlled.
type Config struct {
	// ID lands in the form_id field; defaults to "lead".
	ID string
	// Action is the intake endpoint URL.
	Action string
	// Page is the path of the page hosting the form.
	Page string
	// Service is the optional service label pre-bound to the form.
	Service string
	// PolicyVersion of the consent text shown next to the checkbox.
	PolicyVersion string
	// ThanksPath overrides the redirect used for silent anti-spam
	// outcomes; defaults to /thanks.html.
	ThanksPath string
	// FallbackPhone is quoted in failure messages.
	FallbackPhone string
	// MinFillTime below which the submit is silently dropped.
	MinFillTime time.Duration
}

// ResultKind classifies a submission outcome.
type ResultKind int

const (
	// ResultSuccess: the server accepted the lead.
	ResultSuccess ResultKind = iota
	// ResultFieldErrors: local or server validation failed.
	ResultFieldErrors
	// ResultRedirect: navigate without showing a message (anti-spam
	// outcomes and non-JSON redirects).
	ResultRedirect
	// ResultFailure: transport error or unexpected response.
	ResultFailure
)

// Result is what the caller renders after Submit.
type Result struct {
	Kind        ResultKind
	Redirect    string
	Message     string
	FieldErrors map[string]string
	// FocusField names the first invalid field on local validation.
	FocusField string
}

// Controller owns one form's state. Not safe for concurrent use except
// for the in-flight guard, mirroring the single UI thread it models.
type Controller struct {
	cfg      Config
	client   *http.Client
	tracking *tracking.Store
	logger   *logging.Logger

	startedAt time.Time
	now       func() time.Time

	mu       sync.Mutex
	inFlight bool

	name          string
	phoneDigits   string
	phoneDisplay  string
	contactMethod string
	comment       string
	consent       bool
	honeypot      string
}

// NewController binds a controller to one rendered form. The render
// time is captured now; the fill-time check measures from here.
func NewController(cfg Config, store *tracking.Store, client *http.Client, logger *logging.Logger) *Controller {
	if cfg.ID == "" {
		cfg.ID = "lead"
	}
	if cfg.ThanksPath == "" {
		cfg.ThanksPath = "/thanks.html"
	}
	if cfg.MinFillTime == 0 {
		cfg.MinFillTime = 900 * time.Millisecond
	}
	if client == nil {
		client = http.DefaultClient
	}
	if store == nil {
		store = tracking.NewStore()
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &Controller{
		cfg:           cfg,
		client:        client,
		tracking:      store,
		logger:        logger,
		contactMethod: leads.MethodCall,
		now:           time.Now,
	}
	c.startedAt = c.now()
	return c
}

// TypePhone feeds raw input through the soft mask and returns the
// display value the input should show. The mask reformats as digits
// arrive and never invents digits the visitor didn't type.
func (c *Controller) TypePhone(raw string) string {
	c.phoneDisplay = phone.FormatPartial(raw)
	c.phoneDigits = digitsOf(c.phoneDisplay)
	return c.phoneDisplay
}

// Phone returns the current display value of the phone input.
func (c *Controller) Phone() string { return c.phoneDisplay }

// SetName sets the visitor's name.
func (c *Controller) SetName(name string) { c.name = name }

// SetComment sets the free-form comment.
func (c *Controller) SetComment(comment string) { c.comment = comment }

// SetContactMethod picks how the clinic should reach out. Unknown
// methods fall back to a phone call.
func (c *Controller) SetContactMethod(method string) {
	c.contactMethod = leads.NormalizeContactMethod(method)
}

// SetConsent records the consent checkbox state.
func (c *Controller) SetConsent(checked bool) { c.consent = checked }

// FillHoneypot exists for tests and bots; humans never see the field.
func (c *Controller) FillHoneypot(value string) { c.honeypot = value }

// Submit runs the full submission sequence. It returns ErrInFlight
// when a previous request is still outstanding; every other outcome is
// expressed as a Result.
func (c *Controller) Submit(ctx context.Context) (Result, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Result{}, ErrInFlight
	}
	c.inFlight = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	fillTime := c.now().Sub(c.startedAt)

	// Anti-spam outcomes skip the network entirely and look exactly
	// like success.
	if strings.TrimSpace(c.honeypot) != "" || fillTime < c.cfg.MinFillTime {
		return Result{Kind: ResultRedirect, Redirect: c.cfg.ThanksPath}, nil
	}

	if res, invalid := c.validate(); invalid {
		return res, nil
	}

	normalized, _ := phone.Normalize(c.phoneDisplay)
	c.phoneDisplay = normalized.Display

	payload := c.payload(fillTime)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Action, strings.NewReader(payload.Encode()))
	if err != nil {
		return c.failure(), nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("lead submit failed", "error", err, "form_id", c.cfg.ID)
		return c.failure(), nil
	}
	defer resp.Body.Close()

	return c.interpret(resp), nil
}

// validate runs the same checks the server will repeat. The first
// invalid field is reported so the caller can focus it.
func (c *Controller) validate() (Result, bool) {
	if !phone.Valid(c.phoneDisplay) {
		return Result{
			Kind:        ResultFieldErrors,
			FieldErrors: map[string]string{"phone": leads.MsgPhoneInvalid},
			FocusField:  "phone",
		}, true
	}
	if !c.consent {
		return Result{
			Kind:        ResultFieldErrors,
			FieldErrors: map[string]string{"consent": leads.MsgConsentMissing},
			FocusField:  "consent",
		}, true
	}
	return Result{}, false
}

func (c *Controller) payload(fillTime time.Duration) url.Values {
	values := url.Values{}
	values.Set("page", c.cfg.Page)
	values.Set("referrer", c.tracking.Get("referrer"))
	values.Set("form_id", c.cfg.ID)
	values.Set("fill_time_ms", strconv.FormatInt(fillTime.Milliseconds(), 10))
	values.Set("name", c.name)
	values.Set("phone", c.phoneDisplay)
	values.Set("contact_method", c.contactMethod)
	values.Set("comment", c.comment)
	values.Set("website", c.honeypot)
	if c.cfg.Service != "" {
		values.Set("service", c.cfg.Service)
	}
	if c.cfg.PolicyVersion != "" {
		values.Set("policy_version", c.cfg.PolicyVersion)
	}
	if c.consent {
		values.Set("consent", "on")
	}
	for _, key := range tracking.Params {
		if v := c.tracking.Get(key); v != "" {
			values.Set(key, v)
		}
	}
	return values
}

func (c *Controller) interpret(resp *http.Response) Result {
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.Contains(contentType, "application/json") {
		var body struct {
			OK          bool              `json:"ok"`
			Redirect    string            `json:"redirect"`
			Message     string            `json:"message"`
			FieldErrors map[string]string `json:"fieldErrors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return c.failure()
		}
		if body.OK {
			redirect := body.Redirect
			if redirect == "" {
				redirect = c.cfg.ThanksPath
			}
			return Result{Kind: ResultSuccess, Redirect: redirect}
		}
		if len(body.FieldErrors) > 0 {
			return Result{
				Kind:        ResultFieldErrors,
				FieldErrors: body.FieldErrors,
				Message:     messageOr(body.Message, c.failureMessage()),
			}
		}
		return Result{Kind: ResultFailure, Message: messageOr(body.Message, c.failureMessage())}
	}

	// The client follows redirects, so a 303 fallback response lands
	// here with the final URL.
	if resp.Request != nil && resp.Request.URL != nil && resp.Request.URL.String() != c.cfg.Action {
		return Result{Kind: ResultRedirect, Redirect: resp.Request.URL.String()}
	}

	return c.failure()
}

func (c *Controller) failure() Result {
	return Result{Kind: ResultFailure, Message: c.failureMessage()}
}

func (c *Controller) failureMessage() string {
	return MsgSendFailed + c.cfg.FallbackPhone
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
