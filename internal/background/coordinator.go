package background

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
	"github.com/safetyshield/guardian/internal/messaging"
	"github.com/safetyshield/guardian/internal/ports"
)

// internalSchemes are page URLs that never get a safety check. The toolbar
// icon is left untouched for them.
var internalSchemes = []string{"chrome://", "chrome-extension://", "moz-extension://"}

// Coordinator is the long-lived background context. It reacts to browser
// lifecycle events, runs site checks, and fans the result out to the icon,
// the store, and the tab's content script.
//
// Event handlers never return errors: a failed check degrades to the scheme
// heuristic and the event source is never told anything went wrong.
type Coordinator struct {
	risk    ports.RiskClient
	store   ports.SafetyStore
	icon    ports.ActionIcon
	browser ports.Browser
	bus     *messaging.Bus
	logger  *zap.Logger
}

// NewCoordinator builds the background coordinator.
func NewCoordinator(risk ports.RiskClient, store ports.SafetyStore, icon ports.ActionIcon, browser ports.Browser, bus *messaging.Bus, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		risk:    risk,
		store:   store,
		icon:    icon,
		browser: browser,
		bus:     bus,
		logger:  logger,
	}
}

// HandleInstalled runs once on install or update. The icon starts neutral;
// no tab has been checked yet.
func (c *Coordinator) HandleInstalled(ctx context.Context) {
	c.icon.SetIcon(core.LevelSafe, 0)
	c.icon.ClearBadge(0)
	c.logger.Info("safety shield installed")
}

// HandleTabUpdated fires on every tab state change and checks the page once
// it has finished loading.
func (c *Coordinator) HandleTabUpdated(ctx context.Context, tab *core.Tab) {
	if tab.Status != "complete" || tab.URL == "" {
		return
	}
	c.CheckWebsiteSafety(ctx, tab.ID, tab.URL)
}

// HandleTabActivated re-checks the newly focused tab so the icon always
// reflects the visible page.
func (c *Coordinator) HandleTabActivated(ctx context.Context, tabID int) {
	tab, err := c.browser.Tab(ctx, tabID)
	if err != nil {
		c.logger.Warn("failed to resolve activated tab", zap.Int("tab_id", tabID), zap.Error(err))
		return
	}
	if tab.URL == "" {
		return
	}
	c.CheckWebsiteSafety(ctx, tab.ID, tab.URL)
}

// CheckWebsiteSafety scores a page and propagates the result. Browser
// internal pages are skipped entirely. A risk API failure falls back to the
// scheme heuristic and the record carries the cause.
func (c *Coordinator) CheckWebsiteSafety(ctx context.Context, tabID int, pageURL string) {
	if isInternalURL(pageURL) {
		c.logger.Debug("skipping internal page", zap.String("url", pageURL))
		return
	}

	var record *core.SafetyRecord
	risk, err := c.risk.CheckSite(ctx, pageURL)
	if err != nil {
		c.logger.Warn("site risk check failed, using heuristic",
			zap.Int("tab_id", tabID), zap.String("url", pageURL), zap.Error(err))
		record = core.NewFallbackRecord(pageURL, err)
	} else {
		record = core.NewSafetyRecord(pageURL, risk)
	}

	c.applyIcon(record.Level, tabID)

	if err := c.store.Put(ctx, tabID, record); err != nil {
		c.logger.Error("failed to persist safety record",
			zap.Int("tab_id", tabID), zap.Error(err))
	}

	update := messaging.NewRequest(messaging.ActionUpdateSafetyStatus)
	update.SafetyLevel = record.Level
	update.SiteRisk = record.Site
	c.bus.Notify(messaging.TabEndpoint(tabID), update)

	c.logger.Info("website safety checked",
		zap.Int("tab_id", tabID),
		zap.String("url", pageURL),
		zap.String("level", string(record.Level)),
		zap.Float64("risk", record.RiskScore))
}

func (c *Coordinator) applyIcon(level core.SafetyLevel, tabID int) {
	c.icon.SetIcon(level, tabID)
	switch level {
	case core.LevelWarning:
		c.icon.SetBadge("!", badgeWarningColor, tabID)
	case core.LevelDanger:
		c.icon.SetBadge("⚠", badgeDangerColor, tabID)
	default:
		c.icon.ClearBadge(tabID)
	}
}

func isInternalURL(u string) bool {
	for _, scheme := range internalSchemes {
		if strings.HasPrefix(u, scheme) {
			return true
		}
	}
	return false
}
