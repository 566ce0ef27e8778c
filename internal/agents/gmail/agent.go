package gmail

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
	"github.com/safetyshield/guardian/internal/dom"
	"github.com/safetyshield/guardian/internal/messaging"
)

const notificationID = "email-safety-notification"

// DefaultNotificationTimeout is how long the safety side notification stays
// visible before auto-dismissing.
const DefaultNotificationTimeout = 10 * time.Second

// Agent runs in the Gmail page context. It answers content requests from the
// popup and renders the email safety notification pushed back after
// classification.
type Agent struct {
	doc    *dom.Document
	logger *zap.Logger

	notificationTimeout time.Duration

	mu           sync.Mutex
	notification *dom.Node
	dismissTimer *time.Timer
}

// NewAgent attaches a Gmail extraction agent to the document.
func NewAgent(doc *dom.Document, logger *zap.Logger, opts ...Option) *Agent {
	a := &Agent{
		doc:                 doc,
		logger:              logger,
		notificationTimeout: DefaultNotificationTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Option configures an Agent.
type Option func(*Agent)

// WithNotificationTimeout overrides the notification auto-dismiss delay.
func WithNotificationTimeout(d time.Duration) Option {
	return func(a *Agent) { a.notificationTimeout = d }
}

// HandleMessage dispatches one popup request. Unknown actions come back as
// tagged failures so the sender can tell a bad action from a dead endpoint.
func (a *Agent) HandleMessage(req *messaging.Request) *messaging.Response {
	switch req.Action {
	case messaging.ActionPing:
		resp := messaging.OK()
		resp.Message = "Gmail content script is working!"
		return resp

	case messaging.ActionGetEmailContent:
		content := a.ExtractEmailContent()
		resp := messaging.OK()
		resp.Content = content
		return resp

	case messaging.ActionShowEmailSafetyNotification:
		if req.MessageRisk == nil {
			return messaging.Fail("missing message risk payload")
		}
		a.ShowEmailSafetyNotification(req.SafetyLevel, req.MessageRisk)
		return messaging.OK()

	default:
		return messaging.UnknownAction(req.Action)
	}
}

// ShowEmailSafetyNotification renders the slide-in safety panel for the open
// email. A new notification replaces any existing one, and the auto-dismiss
// timer restarts from zero.
func (a *Agent) ShowEmailSafetyNotification(level core.SafetyLevel, risk *core.MessageRisk) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.removeNotificationLocked()

	panel := dom.NewNode("div").SetAttr("id", notificationID)
	panel.SetAttr("class", "email-safety-notification "+string(level))
	panel.SetStyle("position", "fixed")
	panel.SetStyle("top", "80px")
	panel.SetStyle("right", "20px")
	panel.SetStyle("z-index", "2147483647")

	title := dom.NewNode("div").SetAttr("class", "safety-title")
	title.Text = notificationTitle(level)
	panel.AppendChild(title)

	score := dom.NewNode("div").SetAttr("class", "safety-score")
	score.Text = fmt.Sprintf("Risk score: %.0f%%", risk.OverallRisk*100)
	panel.AppendChild(score)

	for _, reason := range risk.Reasons {
		item := dom.NewNode("div").SetAttr("class", "safety-reason")
		item.Text = reason
		panel.AppendChild(item)
	}

	closeButton := dom.NewNode("button").SetAttr("class", "safety-close")
	closeButton.Text = "Dismiss"
	closeButton.OnClick = a.DismissNotification
	panel.AppendChild(closeButton)

	a.doc.Body().AppendChild(panel)
	a.notification = panel

	a.dismissTimer = time.AfterFunc(a.notificationTimeout, a.DismissNotification)

	a.logger.Info("email safety notification shown",
		zap.String("level", string(level)),
		zap.Float64("risk", risk.OverallRisk))
}

// DismissNotification removes the notification if present. Safe to call any
// number of times.
func (a *Agent) DismissNotification() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removeNotificationLocked()
}

func (a *Agent) removeNotificationLocked() {
	if a.dismissTimer != nil {
		a.dismissTimer.Stop()
		a.dismissTimer = nil
	}
	if a.notification != nil {
		a.notification.Remove()
		a.notification = nil
	}
	// A notification left over from a previous agent instance on the same
	// document is removed too.
	if stale := a.doc.GetElementByID(notificationID); stale != nil {
		stale.Remove()
	}
}

// Close stops the dismiss timer and removes any visible notification.
func (a *Agent) Close() {
	a.DismissNotification()
}

func notificationTitle(level core.SafetyLevel) string {
	switch level {
	case core.LevelDanger:
		return "⚠ Dangerous Email Detected"
	case core.LevelCaution:
		return "Suspicious Email"
	default:
		return "Email Looks Safe"
	}
}
