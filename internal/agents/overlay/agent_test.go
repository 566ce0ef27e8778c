package overlay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/safetyshield/guardian/internal/core"
	"github.com/safetyshield/guardian/internal/dom"
	"github.com/safetyshield/guardian/internal/messaging"
)

type fakeNavigator struct {
	historyLen  int
	wentBack    bool
	navigatedTo string
}

func (f *fakeNavigator) HistoryLength() int  { return f.historyLen }
func (f *fakeNavigator) Back()               { f.wentBack = true }
func (f *fakeNavigator) Navigate(url string) { f.navigatedTo = url }

func newTestAgent(t *testing.T) (*Agent, *dom.Document, *fakeNavigator) {
	doc := dom.NewDocument("https://suspicious.example")
	nav := &fakeNavigator{historyLen: 2}
	agent := NewAgent(doc, nav, zaptest.NewLogger(t), 10*time.Millisecond)
	t.Cleanup(agent.Close)
	return agent, doc, nav
}

func countByID(doc *dom.Document, id string) int {
	count := 0
	for _, n := range doc.QueryAll("div, button, h1, p") {
		if n.ID() == id {
			count++
		}
	}
	return count
}

func TestAgent_InstallsSingleIndicator(t *testing.T) {
	_, doc, _ := newTestAgent(t)
	assert.Equal(t, 1, countByID(doc, "safety-shield-indicator"))
}

func TestAgent_ShowOverlayIsIdempotent(t *testing.T) {
	agent, doc, _ := newTestAgent(t)

	agent.ShowWarningOverlay()
	agent.ShowWarningOverlay()

	assert.Equal(t, 1, countByID(doc, "safety-shield-warning-overlay"))
	assert.Equal(t, "hidden", doc.Body().Style("overflow"))
}

func TestAgent_HideOverlayRestoresScroll(t *testing.T) {
	agent, doc, _ := newTestAgent(t)

	agent.ShowWarningOverlay()
	agent.HideWarningOverlay()

	assert.Nil(t, doc.GetElementByID("safety-shield-warning-overlay"))
	assert.Equal(t, "", doc.Body().Style("overflow"))
}

func TestAgent_HideWithoutShowIsNoOp(t *testing.T) {
	agent, doc, _ := newTestAgent(t)
	agent.HideWarningOverlay()
	assert.Nil(t, doc.GetElementByID("safety-shield-warning-overlay"))
}

func TestAgent_DangerSchedulesOverlay(t *testing.T) {
	agent, doc, _ := newTestAgent(t)

	agent.UpdateSafetyStatus(core.LevelDanger, &core.SiteRisk{Risk: 0.9})

	assert.Nil(t, doc.GetElementByID("safety-shield-warning-overlay"),
		"overlay must not appear before the grace delay")
	assert.Eventually(t, func() bool {
		return doc.GetElementByID("safety-shield-warning-overlay") != nil
	}, time.Second, 2*time.Millisecond)
}

func TestAgent_NonDangerCancelsPendingOverlay(t *testing.T) {
	agent, doc, _ := newTestAgent(t)

	agent.UpdateSafetyStatus(core.LevelDanger, &core.SiteRisk{Risk: 0.9})
	agent.UpdateSafetyStatus(core.LevelSafe, &core.SiteRisk{Risk: 0.05})

	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, doc.GetElementByID("safety-shield-warning-overlay"))

	indicator := doc.GetElementByID("safety-shield-indicator")
	require.NotNil(t, indicator)
	assert.Contains(t, indicator.Attr("class"), "safe")
}

func TestAgent_GoBackUsesHistory(t *testing.T) {
	agent, doc, nav := newTestAgent(t)
	agent.ShowWarningOverlay()

	agent.GoBack()

	assert.True(t, nav.wentBack)
	assert.Empty(t, nav.navigatedTo)
	assert.Nil(t, doc.GetElementByID("safety-shield-warning-overlay"))
}

func TestAgent_GoBackWithoutHistoryNavigatesToNeutralPage(t *testing.T) {
	agent, _, nav := newTestAgent(t)
	nav.historyLen = 1

	agent.GoBack()

	assert.False(t, nav.wentBack)
	assert.Equal(t, "about:blank", nav.navigatedTo)
}

func TestAgent_HandleMessage(t *testing.T) {
	agent, doc, _ := newTestAgent(t)

	resp := agent.HandleMessage(messaging.NewRequest(messaging.ActionShowTestWarning))
	assert.True(t, resp.Success)
	assert.NotNil(t, doc.GetElementByID("safety-shield-warning-overlay"))

	resp = agent.HandleMessage(messaging.NewRequest(messaging.ActionHideWarning))
	assert.True(t, resp.Success)
	assert.Nil(t, doc.GetElementByID("safety-shield-warning-overlay"))

	resp = agent.HandleMessage(messaging.NewRequest("reconfigure"))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown action")
}
