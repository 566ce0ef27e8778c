package popup

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
	"github.com/safetyshield/guardian/internal/messaging"
	"github.com/safetyshield/guardian/internal/ports"
)

// View kinds rendered by the popup.
const (
	KindWebsite  = "website"
	KindEmail    = "email"
	KindChecking = "checking"
	KindError    = "error"
)

// Status messages shown by the popup. The error strings distinguish the
// three Gmail failure modes so the user knows whether to refresh the page.
const (
	msgNotLoaded     = "Gmail content script is not loaded. Please refresh the page and try again."
	msgNotResponding = "Gmail content script is not responding. Please refresh the page and try again."
	msgNoContent     = "No email content could be extracted."
	msgChecking      = "Checking website safety..."
)

const (
	// DefaultPingDelay gives a freshly injected content script time to
	// register before the first ping.
	DefaultPingDelay = 500 * time.Millisecond

	// DefaultRefreshDelay is the single re-poll interval used when a tab's
	// safety record is not in the store yet.
	DefaultRefreshDelay = time.Second
)

// View is the render model for one popup open. It is a plain value: the
// popup never mutates it after display. The daemon ships it to the browser
// side as a popup_view frame, hence the wire tags.
type View struct {
	Kind  string           `json:"kind"`
	Level core.SafetyLevel `json:"level,omitempty"`

	Title   string   `json:"title,omitempty"`
	Detail  string   `json:"detail,omitempty"`
	Reasons []string `json:"reasons,omitempty"`

	RiskScore float64 `json:"risk_score,omitempty"`
	Official  bool    `json:"official,omitempty"`

	// Email views only.
	Sender  string `json:"sender,omitempty"`
	Subject string `json:"subject,omitempty"`

	// Fallback marks a result produced locally after the risk service
	// could not be reached.
	Fallback bool `json:"fallback,omitempty"`

	Error string `json:"error,omitempty"`
}

// Controller drives the popup. One Open call corresponds to one popup
// display; nothing about it is long-lived.
type Controller struct {
	browser ports.Browser
	store   ports.SafetyStore
	risk    ports.RiskClient
	bus     *messaging.Bus
	logger  *zap.Logger

	gmailHosts   []string
	pingDelay    time.Duration
	refreshDelay time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithPingDelay overrides the content-script ping delay.
func WithPingDelay(d time.Duration) Option {
	return func(c *Controller) { c.pingDelay = d }
}

// WithRefreshDelay overrides the store re-poll delay.
func WithRefreshDelay(d time.Duration) Option {
	return func(c *Controller) { c.refreshDelay = d }
}

// WithGmailHosts overrides the hostnames treated as Gmail.
func WithGmailHosts(hosts []string) Option {
	return func(c *Controller) { c.gmailHosts = hosts }
}

// NewController builds a popup controller.
func NewController(browser ports.Browser, store ports.SafetyStore, risk ports.RiskClient, bus *messaging.Bus, logger *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		browser:      browser,
		store:        store,
		risk:         risk,
		bus:          bus,
		logger:       logger,
		gmailHosts:   []string{"mail.google.com", "gmail.com"},
		pingDelay:    DefaultPingDelay,
		refreshDelay: DefaultRefreshDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open resolves what the popup should display for the active tab. Gmail
// tabs get an email analysis round trip; everything else reads the tab's
// stored safety record.
func (c *Controller) Open(ctx context.Context) (*View, error) {
	tab, err := c.browser.ActiveTab(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active tab: %w", err)
	}

	if c.isGmail(tab.URL) {
		return c.analyzeEmail(ctx, tab), nil
	}
	return c.websiteView(ctx, tab)
}

func (c *Controller) isGmail(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, h := range c.gmailHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// websiteView renders the stored safety record for the tab. When the
// background check has not landed yet it waits one refresh interval and
// re-reads exactly once; a still-missing record shows the checking state
// rather than polling forever.
func (c *Controller) websiteView(ctx context.Context, tab *core.Tab) (*View, error) {
	record, ok, err := c.store.Get(ctx, tab.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read safety record: %w", err)
	}
	if !ok {
		if err := sleepCtx(ctx, c.refreshDelay); err != nil {
			return nil, err
		}
		record, ok, err = c.store.Get(ctx, tab.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read safety record: %w", err)
		}
	}
	if !ok {
		return &View{Kind: KindChecking, Title: msgChecking}, nil
	}
	return viewFromRecord(record), nil
}

func viewFromRecord(record *core.SafetyRecord) *View {
	v := &View{
		Kind:      KindWebsite,
		Level:     record.Level,
		Title:     levelTitle(record.Level),
		Reasons:   record.Reasons,
		RiskScore: record.RiskScore,
		Official:  record.Official,
	}
	if record.Error != "" {
		v.Fallback = true
		v.Detail = "Safety service unavailable. Assessment based on connection type only."
	} else {
		v.Detail = fmt.Sprintf("Risk score: %.0f%%", record.RiskScore*100)
	}
	return v
}

// analyzeEmail runs the Gmail flow: ping the content script, pull the open
// email, score it, and push the in-page notification. Every failure mode
// maps to a distinct view; none of them return an error.
func (c *Controller) analyzeEmail(ctx context.Context, tab *core.Tab) *View {
	if err := sleepCtx(ctx, c.pingDelay); err != nil {
		return errorView(err.Error())
	}

	endpoint := messaging.TabEndpoint(tab.ID)

	pong, err := c.bus.Send(ctx, endpoint, messaging.NewRequest(messaging.ActionPing))
	if err != nil {
		c.logger.Debug("content script ping failed", zap.Int("tab_id", tab.ID), zap.Error(err))
		return errorView(msgNotLoaded)
	}
	if !pong.Success {
		return errorView(msgNotResponding)
	}

	resp, err := c.bus.Send(ctx, endpoint, messaging.NewRequest(messaging.ActionGetEmailContent))
	if err != nil {
		return errorView(msgNotLoaded)
	}
	if !resp.Success || resp.Content == nil {
		return errorView(msgNoContent)
	}
	content := resp.Content
	if content.IsSentinel() {
		return &View{
			Kind:   KindEmail,
			Level:  core.LevelSafe,
			Title:  content.Sender,
			Detail: content.Body,
		}
	}

	risk, err := c.risk.CheckMessage(ctx, content)
	fallback := false
	if err != nil {
		c.logger.Warn("message risk check failed, using local analysis",
			zap.Int("tab_id", tab.ID), zap.Error(err))
		risk = core.AnalyzeByKeywords(content)
		fallback = true
	}
	level := core.ClassifyMessage(risk)

	// Best effort: the in-page notification is a convenience, the popup
	// view is the source of truth.
	notify := messaging.NewRequest(messaging.ActionShowEmailSafetyNotification)
	notify.SafetyLevel = level
	notify.MessageRisk = risk
	c.bus.Notify(endpoint, notify)

	return &View{
		Kind:      KindEmail,
		Level:     level,
		Title:     levelTitle(level),
		Detail:    fmt.Sprintf("Risk score: %.0f%%", risk.OverallRisk*100),
		Reasons:   risk.Reasons,
		RiskScore: risk.OverallRisk,
		Official:  risk.Official,
		Sender:    content.Sender,
		Subject:   content.Subject,
		Fallback:  fallback,
	}
}

func errorView(msg string) *View {
	return &View{Kind: KindError, Error: msg}
}

func levelTitle(level core.SafetyLevel) string {
	switch level {
	case core.LevelSafe:
		return "This site appears safe"
	case core.LevelWarning:
		return "Exercise caution on this site"
	case core.LevelCaution:
		return "This email looks suspicious"
	case core.LevelDanger:
		return "Danger detected"
	default:
		return string(level)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
