package popup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/adapters/store"
	"github.com/safetyshield/guardian/internal/core"
	"github.com/safetyshield/guardian/internal/messaging"
)

type fakeBrowser struct {
	active *core.Tab
}

func (b *fakeBrowser) ActiveTab(ctx context.Context) (*core.Tab, error) {
	if b.active == nil {
		return nil, errors.New("no active tab")
	}
	return b.active, nil
}

func (b *fakeBrowser) Tab(ctx context.Context, tabID int) (*core.Tab, error) {
	return b.active, nil
}

type fakeRiskClient struct {
	message    *core.MessageRisk
	messageErr error
}

func (c *fakeRiskClient) CheckSite(ctx context.Context, url string) (*core.SiteRisk, error) {
	return nil, errors.New("not used")
}

func (c *fakeRiskClient) CheckMessage(ctx context.Context, content *core.EmailContent) (*core.MessageRisk, error) {
	if c.messageErr != nil {
		return nil, c.messageErr
	}
	return c.message, nil
}

func newFixture(tab *core.Tab, risk *fakeRiskClient) (*Controller, *store.MemoryStore, *messaging.Bus) {
	logger := zap.NewNop()
	st := store.NewMemoryStore(logger)
	bus := messaging.NewBus(logger)
	ctrl := NewController(&fakeBrowser{active: tab}, st, risk, bus, logger,
		WithPingDelay(0), WithRefreshDelay(10*time.Millisecond))
	return ctrl, st, bus
}

func TestOpenWebsiteWithStoredRecord(t *testing.T) {
	tab := &core.Tab{ID: 7, URL: "https://example.com/page"}
	ctrl, st, _ := newFixture(tab, &fakeRiskClient{})

	record := core.NewSafetyRecord(tab.URL, &core.SiteRisk{Risk: 0.35, Reasons: []string{"new domain"}})
	require.NoError(t, st.Put(context.Background(), tab.ID, record))

	view, err := ctrl.Open(context.Background())

	require.NoError(t, err)
	assert.Equal(t, KindWebsite, view.Kind)
	assert.Equal(t, core.LevelWarning, view.Level)
	assert.Equal(t, []string{"new domain"}, view.Reasons)
	assert.False(t, view.Fallback)
}

func TestOpenWebsiteRecordAbsentThenPresent(t *testing.T) {
	tab := &core.Tab{ID: 4, URL: "https://example.com"}
	ctrl, st, _ := newFixture(tab, &fakeRiskClient{})

	// The record lands while the controller waits out the refresh delay.
	go func() {
		time.Sleep(2 * time.Millisecond)
		_ = st.Put(context.Background(), tab.ID,
			core.NewSafetyRecord(tab.URL, &core.SiteRisk{Risk: 0.05}))
	}()

	view, err := ctrl.Open(context.Background())

	require.NoError(t, err)
	assert.Equal(t, KindWebsite, view.Kind)
	assert.Equal(t, core.LevelSafe, view.Level)
}

func TestOpenWebsiteRecordNeverArrives(t *testing.T) {
	tab := &core.Tab{ID: 4, URL: "https://example.com"}
	ctrl, _, _ := newFixture(tab, &fakeRiskClient{})

	view, err := ctrl.Open(context.Background())

	require.NoError(t, err)
	assert.Equal(t, KindChecking, view.Kind)
}

func TestOpenWebsiteFallbackRecord(t *testing.T) {
	tab := &core.Tab{ID: 9, URL: "http://example.com"}
	ctrl, st, _ := newFixture(tab, &fakeRiskClient{})

	record := core.NewFallbackRecord(tab.URL, errors.New("connection refused"))
	require.NoError(t, st.Put(context.Background(), tab.ID, record))

	view, err := ctrl.Open(context.Background())

	require.NoError(t, err)
	assert.Equal(t, core.LevelWarning, view.Level)
	assert.True(t, view.Fallback)
}

func gmailTab() *core.Tab {
	return &core.Tab{ID: 12, URL: "https://mail.google.com/mail/u/0/#inbox/FMfcgz"}
}

func attachGmailEndpoint(bus *messaging.Bus, tabID int, content *core.EmailContent) {
	bus.Attach(messaging.TabEndpoint(tabID), func(req *messaging.Request) *messaging.Response {
		switch req.Action {
		case messaging.ActionPing:
			return messaging.OK()
		case messaging.ActionGetEmailContent:
			resp := messaging.OK()
			resp.Content = content
			return resp
		case messaging.ActionShowEmailSafetyNotification:
			return messaging.OK()
		default:
			return messaging.UnknownAction(req.Action)
		}
	})
}

func TestOpenGmailScoresEmail(t *testing.T) {
	tab := gmailTab()
	risk := &fakeRiskClient{message: &core.MessageRisk{OverallRisk: 0.75, Reasons: []string{"spoofed sender"}}}
	ctrl, _, bus := newFixture(tab, risk)

	attachGmailEndpoint(bus, tab.ID, &core.EmailContent{
		Sender:  "Acme <acme@example.com>",
		Subject: "Invoice",
		Body:    "Please pay the attached invoice before Friday.",
	})

	view, err := ctrl.Open(context.Background())

	require.NoError(t, err)
	assert.Equal(t, KindEmail, view.Kind)
	assert.Equal(t, core.LevelDanger, view.Level)
	assert.Equal(t, "Acme <acme@example.com>", view.Sender)
	assert.Equal(t, []string{"spoofed sender"}, view.Reasons)
	assert.False(t, view.Fallback)
}

func TestOpenGmailOfficialSenderOverride(t *testing.T) {
	tab := gmailTab()
	risk := &fakeRiskClient{message: &core.MessageRisk{OverallRisk: 0.9, Official: true}}
	ctrl, _, bus := newFixture(tab, risk)
	attachGmailEndpoint(bus, tab.ID, &core.EmailContent{Sender: "a@b.c", Subject: "s", Body: "b"})

	view, err := ctrl.Open(context.Background())

	require.NoError(t, err)
	assert.Equal(t, core.LevelSafe, view.Level)
}

func TestOpenGmailContentScriptMissing(t *testing.T) {
	tab := gmailTab()
	ctrl, _, _ := newFixture(tab, &fakeRiskClient{})

	view, err := ctrl.Open(context.Background())

	require.NoError(t, err)
	assert.Equal(t, KindError, view.Kind)
	assert.Equal(t, msgNotLoaded, view.Error)
}

func TestOpenGmailContentScriptNotResponding(t *testing.T) {
	tab := gmailTab()
	ctrl, _, bus := newFixture(tab, &fakeRiskClient{})
	bus.Attach(messaging.TabEndpoint(tab.ID), func(req *messaging.Request) *messaging.Response {
		return messaging.Fail("busy")
	})

	view, err := ctrl.Open(context.Background())

	require.NoError(t, err)
	assert.Equal(t, KindError, view.Kind)
	assert.Equal(t, msgNotResponding, view.Error)
}

func TestOpenGmailSentinelContent(t *testing.T) {
	tab := gmailTab()
	ctrl, _, bus := newFixture(tab, &fakeRiskClient{})
	attachGmailEndpoint(bus, tab.ID, core.NoEmailSelected())

	view, err := ctrl.Open(context.Background())

	require.NoError(t, err)
	assert.Equal(t, KindEmail, view.Kind)
	assert.Equal(t, core.LevelSafe, view.Level)
	assert.Equal(t, "No Email Selected", view.Title)
}

func TestOpenGmailKeywordFallback(t *testing.T) {
	tab := gmailTab()
	risk := &fakeRiskClient{messageErr: errors.New("connection refused")}
	ctrl, _, bus := newFixture(tab, risk)
	attachGmailEndpoint(bus, tab.ID, &core.EmailContent{
		Sender:  "lotto@example.com",
		Subject: "Congratulations winner!",
		Body:    "You won a prize. Act now, click here to claim before the limited time offer ends.",
	})

	view, err := ctrl.Open(context.Background())

	require.NoError(t, err)
	assert.Equal(t, KindEmail, view.Kind)
	assert.True(t, view.Fallback)
	assert.Equal(t, core.LevelDanger, view.Level)
	assert.NotEmpty(t, view.Reasons)
}
