package nativehost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
	"github.com/safetyshield/guardian/internal/messaging"
	"github.com/safetyshield/guardian/internal/popup"
)

// Inbound event types sent by the browser side of the native messaging
// channel.
const (
	EventInstalled    = "installed"
	EventTabUpdated   = "tab_updated"
	EventTabActivated = "tab_activated"
	EventTabRemoved   = "tab_removed"
	EventPopupOpened  = "popup_opened"
)

// Outbound command types.
const (
	CommandSetIcon    = "set_icon"
	CommandSetBadge   = "set_badge"
	CommandClearBadge = "clear_badge"
	CommandTabMessage = "tab_message"
	CommandConfigure  = "configure"
	CommandPopupView  = "popup_view"
)

// Event is one inbound browser event frame.
type Event struct {
	Type  string    `json:"type"`
	Tab   *core.Tab `json:"tab,omitempty"`
	TabID int       `json:"tab_id,omitempty"`
}

// Command is one outbound frame instructing the browser side.
type Command struct {
	Type     string             `json:"type"`
	TabID    int                `json:"tab_id,omitempty"`
	Level    core.SafetyLevel   `json:"level,omitempty"`
	Text     string             `json:"text,omitempty"`
	Color    string             `json:"color,omitempty"`
	Tab      *messaging.Request `json:"message,omitempty"`
	Settings *Settings          `json:"settings,omitempty"`
	View     *popup.View        `json:"view,omitempty"`
}

// Settings carries the in-page timing configuration. The host pushes it to
// the browser side when the extension reports in, so the overlay and Gmail
// scripts run with the configured delays instead of their built-in ones.
type Settings struct {
	DangerOverlayDelayMs  int64 `json:"danger_overlay_delay_ms"`
	NotificationTimeoutMs int64 `json:"notification_timeout_ms"`
}

// EventHandler receives the browser lifecycle events decoded from the wire.
// The background coordinator implements it.
type EventHandler interface {
	HandleInstalled(ctx context.Context)
	HandleTabUpdated(ctx context.Context, tab *core.Tab)
	HandleTabActivated(ctx context.Context, tabID int)
}

// PopupHandler resolves what the popup should display. The popup controller
// implements it.
type PopupHandler interface {
	Open(ctx context.Context) (*popup.View, error)
}

// Host is the native messaging endpoint of the daemon. It decodes browser
// events from the inbound stream, forwards them to the handler, and carries
// icon and tab-message commands back out.
//
// Host also implements the ActionIcon and Browser ports: icon calls become
// outbound frames, and tab lookups answer from the registry of tabs seen in
// events. Frames interleave safely; each write holds the frame lock.
type Host struct {
	in     io.Reader
	logger *zap.Logger

	writeMu sync.Mutex
	out     io.Writer

	handler  EventHandler
	popup    PopupHandler
	settings *Settings
	bus      *messaging.Bus

	tabMu     sync.RWMutex
	tabs      map[int]*core.Tab
	activeTab int
}

// NewHost wires a native messaging host over the given streams, usually
// stdin and stdout. SetHandler must be called before Run.
func NewHost(in io.Reader, out io.Writer, bus *messaging.Bus, logger *zap.Logger) *Host {
	return &Host{
		in:     in,
		out:    out,
		bus:    bus,
		logger: logger,
		tabs:   make(map[int]*core.Tab),
	}
}

// SetHandler sets the event handler. The handler usually needs the host's
// icon and tab surfaces to build, so it is attached after construction.
func (h *Host) SetHandler(handler EventHandler) {
	h.handler = handler
}

// SetPopupHandler sets the popup handler. Without one, popup_opened events
// are dropped with a warning.
func (h *Host) SetPopupHandler(popup PopupHandler) {
	h.popup = popup
}

// SetSettings sets the in-page timing configuration pushed on the next
// installed event.
func (h *Host) SetSettings(settings *Settings) {
	h.settings = settings
}

// Run reads events until the stream ends or the context is cancelled. A
// clean EOF, meaning the browser closed the channel, returns nil.
func (h *Host) Run(ctx context.Context) error {
	if h.handler == nil {
		return errors.New("no event handler set")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var ev Event
		if err := readFrame(h.in, &ev); err != nil {
			if errors.Is(err, io.EOF) {
				h.logger.Info("native messaging channel closed")
				return nil
			}
			return fmt.Errorf("native messaging read failed: %w", err)
		}
		h.dispatch(ctx, &ev)
	}
}

func (h *Host) dispatch(ctx context.Context, ev *Event) {
	switch ev.Type {
	case EventInstalled:
		if h.settings != nil {
			h.sendLogged(&Command{Type: CommandConfigure, Settings: h.settings})
		}
		h.handler.HandleInstalled(ctx)

	case EventTabUpdated:
		if ev.Tab == nil {
			h.logger.Warn("tab_updated event without tab payload")
			return
		}
		h.rememberTab(ev.Tab)
		h.handler.HandleTabUpdated(ctx, ev.Tab)

	case EventTabActivated:
		tabID := ev.TabID
		if ev.Tab != nil {
			h.rememberTab(ev.Tab)
			tabID = ev.Tab.ID
		}
		h.setActive(tabID)
		h.handler.HandleTabActivated(ctx, tabID)

	case EventTabRemoved:
		h.forgetTab(ev.TabID)

	case EventPopupOpened:
		h.handlePopupOpened(ctx)

	default:
		h.logger.Warn("unknown browser event", zap.String("type", ev.Type))
	}
}

// handlePopupOpened resolves the popup view and ships it back as a frame.
// The round trip runs inline: events arrive serially anyway, and a popup
// open only blocks the loop for the configured ping delay.
func (h *Host) handlePopupOpened(ctx context.Context) {
	if h.popup == nil {
		h.logger.Warn("popup_opened event without popup handler")
		return
	}
	view, err := h.popup.Open(ctx)
	if err != nil {
		h.logger.Error("failed to resolve popup view", zap.Error(err))
		view = &popup.View{Kind: popup.KindError, Error: err.Error()}
	}
	h.sendLogged(&Command{Type: CommandPopupView, View: view})
}

// rememberTab records the tab and bridges its bus endpoint: messages sent to
// the tab in-process are re-framed as outbound tab_message commands for the
// real content script.
func (h *Host) rememberTab(tab *core.Tab) {
	h.tabMu.Lock()
	_, known := h.tabs[tab.ID]
	h.tabs[tab.ID] = tab
	h.tabMu.Unlock()

	if !known {
		tabID := tab.ID
		h.bus.Attach(messaging.TabEndpoint(tabID), func(req *messaging.Request) *messaging.Response {
			if err := h.send(&Command{Type: CommandTabMessage, TabID: tabID, Tab: req}); err != nil {
				return messaging.Fail("failed to forward to tab %d: %s", tabID, err)
			}
			return messaging.OK()
		})
	}
}

func (h *Host) forgetTab(tabID int) {
	h.tabMu.Lock()
	delete(h.tabs, tabID)
	if h.activeTab == tabID {
		h.activeTab = 0
	}
	h.tabMu.Unlock()
	h.bus.Detach(messaging.TabEndpoint(tabID))
}

func (h *Host) setActive(tabID int) {
	h.tabMu.Lock()
	h.activeTab = tabID
	h.tabMu.Unlock()
}

// ActiveTab returns the most recently activated tab.
func (h *Host) ActiveTab(ctx context.Context) (*core.Tab, error) {
	h.tabMu.RLock()
	defer h.tabMu.RUnlock()
	tab, ok := h.tabs[h.activeTab]
	if !ok {
		return nil, errors.New("no active tab known")
	}
	return tab, nil
}

// Tab returns a tab previously seen in a browser event.
func (h *Host) Tab(ctx context.Context, tabID int) (*core.Tab, error) {
	h.tabMu.RLock()
	defer h.tabMu.RUnlock()
	tab, ok := h.tabs[tabID]
	if !ok {
		return nil, fmt.Errorf("unknown tab %d", tabID)
	}
	return tab, nil
}

// SetIcon emits an icon switch command.
func (h *Host) SetIcon(level core.SafetyLevel, tabID int) {
	h.sendLogged(&Command{Type: CommandSetIcon, TabID: tabID, Level: level})
}

// SetBadge emits a badge command.
func (h *Host) SetBadge(text, color string, tabID int) {
	h.sendLogged(&Command{Type: CommandSetBadge, TabID: tabID, Text: text, Color: color})
}

// ClearBadge emits a badge clear command.
func (h *Host) ClearBadge(tabID int) {
	h.sendLogged(&Command{Type: CommandClearBadge, TabID: tabID})
}

func (h *Host) send(cmd *Command) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return writeFrame(h.out, cmd)
}

// sendLogged is for the icon surface, which has no error channel back to
// its callers.
func (h *Host) sendLogged(cmd *Command) {
	if err := h.send(cmd); err != nil {
		h.logger.Error("failed to write browser command",
			zap.String("type", cmd.Type), zap.Int("tab_id", cmd.TabID), zap.Error(err))
	}
}
