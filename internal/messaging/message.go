package messaging

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/safetyshield/guardian/internal/core"
)

// Action is the closed set of cross-context message actions. Handlers must
// answer unknown actions with a tagged failure, never an error return.
type Action string

const (
	ActionPing                        Action = "ping"
	ActionGetEmailContent             Action = "getEmailContent"
	ActionShowEmailSafetyNotification Action = "showEmailSafetyNotification"
	ActionShowTestWarning             Action = "showTestWarning"
	ActionHideWarning                 Action = "hideWarning"
	ActionUpdateSafetyStatus          Action = "updateSafetyStatus"
)

// Request is a tagged cross-context message. Only the fields relevant to the
// action are populated.
type Request struct {
	ID     uuid.UUID `json:"id"`
	Action Action    `json:"action"`

	// updateSafetyStatus and showEmailSafetyNotification
	SafetyLevel core.SafetyLevel `json:"safety_level,omitempty"`

	// updateSafetyStatus
	SiteRisk *core.SiteRisk `json:"site_risk,omitempty"`

	// showEmailSafetyNotification
	Icon        string            `json:"icon,omitempty"`
	Message     string            `json:"message,omitempty"`
	MessageRisk *core.MessageRisk `json:"message_risk,omitempty"`
}

// NewRequest builds a request for an action with a fresh id. The id exists
// for log correlation only; delivery carries no stronger guarantee because
// of it.
func NewRequest(action Action) *Request {
	return &Request{ID: uuid.New(), Action: action}
}

// Response is the tagged result of a request. Boundary-crossing failures are
// carried here as values; no error ever crosses a context boundary as a
// panic or error return.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`

	// getEmailContent
	Content *core.EmailContent `json:"content,omitempty"`
}

// OK is a bare success response.
func OK() *Response {
	return &Response{Success: true}
}

// Fail is a tagged failure response.
func Fail(format string, args ...any) *Response {
	return &Response{Success: false, Error: fmt.Sprintf(format, args...)}
}

// UnknownAction is the response for actions outside the closed set.
func UnknownAction(action Action) *Response {
	return Fail("unknown action: %s", action)
}
