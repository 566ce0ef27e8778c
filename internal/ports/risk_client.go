package ports

import (
	"context"

	"github.com/safetyshield/guardian/internal/core"
)

// RiskClient talks to the external risk scoring service. Both calls are
// attempted exactly once; any network or HTTP failure surfaces as a
// *riskapi.TransportError and it is the caller's job to fall back to the
// local heuristic classifier.
type RiskClient interface {
	// CheckSite scores a page URL.
	CheckSite(ctx context.Context, url string) (*core.SiteRisk, error)

	// CheckMessage scores an extracted email.
	CheckMessage(ctx context.Context, content *core.EmailContent) (*core.MessageRisk, error)
}
