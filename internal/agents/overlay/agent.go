// Package overlay is the page-side safety agent: it keeps an on-page safety
// indicator in sync with pushed status updates and manages the full-screen
// blocking overlay shown on dangerous pages.
package overlay

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
	"github.com/safetyshield/guardian/internal/dom"
	"github.com/safetyshield/guardian/internal/messaging"
	"github.com/safetyshield/guardian/internal/ports"
)

const (
	indicatorID = "safety-shield-indicator"
	overlayID   = "safety-shield-warning-overlay"

	// DefaultDangerDelay is the grace period between receiving a danger
	// status and auto-opening the blocking overlay. It gives the user a
	// moment to see the indicator change; it is not a retry interval.
	DefaultDangerDelay = time.Second
)

// Agent owns one indicator and at most one overlay per page load. A single
// instance is constructed per page context; the idempotence guards below
// keep it that way even under racing pushes.
type Agent struct {
	doc    *dom.Document
	nav    ports.Navigator
	logger *zap.Logger

	dangerDelay time.Duration

	mu          sync.Mutex
	indicator   *dom.Node
	overlay     *dom.Node
	dangerTimer *time.Timer
}

// NewAgent creates the agent and installs its indicator into the page.
func NewAgent(doc *dom.Document, nav ports.Navigator, logger *zap.Logger, dangerDelay time.Duration) *Agent {
	if dangerDelay <= 0 {
		dangerDelay = DefaultDangerDelay
	}
	indicator := dom.NewNode("div").
		SetAttr("id", indicatorID).
		SetAttr("class", "safety-indicator idle")
	doc.Body().AppendChild(indicator)

	return &Agent{
		doc:         doc,
		nav:         nav,
		logger:      logger,
		dangerDelay: dangerDelay,
		indicator:   indicator,
	}
}

// HandleMessage dispatches a cross-context request. Unknown actions get a
// tagged failure; nothing here ever panics across the boundary.
func (a *Agent) HandleMessage(req *messaging.Request) *messaging.Response {
	switch req.Action {
	case messaging.ActionShowTestWarning:
		a.ShowWarningOverlay()
		return messaging.OK()
	case messaging.ActionHideWarning:
		a.HideWarningOverlay()
		return messaging.OK()
	case messaging.ActionUpdateSafetyStatus:
		a.UpdateSafetyStatus(req.SafetyLevel, req.SiteRisk)
		return messaging.OK()
	case messaging.ActionPing:
		return &messaging.Response{Success: true, Message: "content script is working"}
	default:
		return messaging.UnknownAction(req.Action)
	}
}

// UpdateSafetyStatus moves the indicator to the pushed level. A danger level
// additionally schedules the blocking overlay after the grace delay.
func (a *Agent) UpdateSafetyStatus(level core.SafetyLevel, risk *core.SiteRisk) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.indicator.SetAttr("class", "safety-indicator "+string(level))
	if risk != nil {
		a.indicator.SetAttr("title", fmt.Sprintf("Risk score: %.1f%%", risk.Score()*100))
	}

	if a.dangerTimer != nil {
		a.dangerTimer.Stop()
		a.dangerTimer = nil
	}
	if level == core.LevelDanger {
		a.dangerTimer = time.AfterFunc(a.dangerDelay, a.ShowWarningOverlay)
		a.logger.Info("danger status received, overlay scheduled",
			zap.Duration("delay", a.dangerDelay),
			zap.String("url", a.doc.URL))
	}
}

// ShowWarningOverlay displays the blocking overlay. Showing while already
// shown is a no-op; at most one overlay node exists at a time.
func (a *Agent) ShowWarningOverlay() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.overlay != nil {
		return
	}

	overlay := dom.NewNode("div").
		SetAttr("id", overlayID).
		SetAttr("role", "alertdialog")

	title := dom.NewNode("h1")
	title.Text = "DANGEROUS WEBSITE BLOCKED"
	overlay.AppendChild(title)

	message := dom.NewNode("p")
	message.Text = "This website has been identified as potentially dangerous and has been blocked for your safety."
	overlay.AppendChild(message)

	goBack := dom.NewNode("button").SetAttr("id", "safety-shield-go-back")
	goBack.Text = "Go Back to Safety"
	overlay.AppendChild(goBack)

	cont := dom.NewNode("button").SetAttr("id", "safety-shield-continue")
	cont.Text = "Continue Anyway (Not Recommended)"
	overlay.AppendChild(cont)

	a.doc.Body().AppendChild(overlay)
	a.doc.Body().SetStyle("overflow", "hidden")
	a.overlay = overlay

	a.logger.Info("warning overlay shown", zap.String("url", a.doc.URL))
}

// HideWarningOverlay removes the overlay and restores page scroll. Hiding
// when no overlay exists is a no-op.
func (a *Agent) HideWarningOverlay() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hideLocked()
}

func (a *Agent) hideLocked() {
	if a.overlay == nil {
		return
	}
	a.overlay.Remove()
	a.overlay = nil
	a.doc.Body().SetStyle("overflow", "")
	a.logger.Info("warning overlay hidden", zap.String("url", a.doc.URL))
}

// GoBack leaves the page: one step back in history when there is history,
// otherwise a neutral page. Neither path reports anywhere.
func (a *Agent) GoBack() {
	if a.nav.HistoryLength() > 1 {
		a.nav.Back()
	} else {
		a.nav.Navigate("about:blank")
	}
	a.HideWarningOverlay()
}

// ContinueAnyway dismisses the overlay without navigating. The choice is not
// recorded anywhere.
func (a *Agent) ContinueAnyway() {
	a.HideWarningOverlay()
}

// Close cancels any pending overlay timer. Called on page teardown.
func (a *Agent) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dangerTimer != nil {
		a.dangerTimer.Stop()
		a.dangerTimer = nil
	}
}
