package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestBus_SendRoundTrip(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	bus.Attach("tab:1", func(req *Request) *Response {
		if req.Action == ActionPing {
			return &Response{Success: true, Message: "pong"}
		}
		return UnknownAction(req.Action)
	})

	resp, err := bus.Send(context.Background(), "tab:1", NewRequest(ActionPing))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "pong", resp.Message)
}

func TestBus_UnknownActionIsTaggedFailure(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	bus.Attach("tab:1", func(req *Request) *Response {
		return UnknownAction(req.Action)
	})

	resp, err := bus.Send(context.Background(), "tab:1", NewRequest("bogus"))
	require.NoError(t, err, "unknown actions respond, they do not error")
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown action")
}

func TestBus_SendToMissingEndpoint(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))

	_, err := bus.Send(context.Background(), TabEndpoint(42), NewRequest(ActionPing))
	require.Error(t, err)

	var msgErr *MessagingError
	require.ErrorAs(t, err, &msgErr)
	assert.Equal(t, "tab:42", msgErr.Endpoint)
	assert.Contains(t, err.Error(), "could not establish connection")
}

func TestBus_NotifySwallowsFailure(t *testing.T) {
	zapCore, logs := observer.New(zap.DebugLevel)
	bus := NewBus(zap.New(zapCore))

	// No endpoint attached: the push must be dropped, not escalated.
	bus.Notify("tab:9", NewRequest(ActionUpdateSafetyStatus))

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("best-effort message dropped").Len() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestBus_NotifyDeliversWhenAttached(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	got := make(chan Action, 1)
	bus.Attach("tab:3", func(req *Request) *Response {
		got <- req.Action
		return OK()
	})

	bus.Notify("tab:3", NewRequest(ActionHideWarning))

	select {
	case action := <-got:
		assert.Equal(t, ActionHideWarning, action)
	case <-time.After(time.Second):
		t.Fatal("notification was not delivered")
	}
}

func TestBus_DetachMakesSendsFail(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	bus.Attach("popup", func(req *Request) *Response { return OK() })
	bus.Detach("popup")

	_, err := bus.Send(context.Background(), "popup", NewRequest(ActionPing))
	var msgErr *MessagingError
	require.ErrorAs(t, err, &msgErr)
}

func TestBus_ReattachReplacesHandler(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	bus.Attach("tab:1", func(req *Request) *Response { return Fail("old handler") })
	bus.Attach("tab:1", func(req *Request) *Response { return OK() })

	resp, err := bus.Send(context.Background(), "tab:1", NewRequest(ActionPing))
	require.NoError(t, err)
	assert.True(t, resp.Success)
}
