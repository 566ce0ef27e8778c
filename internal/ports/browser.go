package ports

import (
	"context"

	"github.com/safetyshield/guardian/internal/core"
)

// Browser resolves tab information from the hosting browser.
type Browser interface {
	// ActiveTab returns the currently focused tab.
	ActiveTab(ctx context.Context) (*core.Tab, error)

	// Tab returns a tab by id.
	Tab(ctx context.Context, tabID int) (*core.Tab, error)
}

// ActionIcon controls the visible toolbar icon and badge.
type ActionIcon interface {
	// SetIcon switches the per-level icon set, optionally scoped to a tab
	// (tabID 0 means global).
	SetIcon(level core.SafetyLevel, tabID int)

	// SetBadge sets the badge text and background color.
	SetBadge(text, color string, tabID int)

	// ClearBadge removes the badge.
	ClearBadge(tabID int)
}

// Navigator performs page navigation on behalf of the overlay agent.
type Navigator interface {
	// HistoryLength reports how many entries the tab's history holds.
	HistoryLength() int

	// Back navigates one step back in history.
	Back()

	// Navigate replaces the current page with the given URL.
	Navigate(url string)
}
