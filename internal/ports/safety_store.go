package ports

import (
	"context"

	"github.com/safetyshield/guardian/internal/core"
)

// SafetyStore holds the latest safety record per tab. Writes are
// unconditional overwrites (last writer wins); only the background
// coordinator writes, so no cross-writer coordination is needed. Records are
// never evicted.
type SafetyStore interface {
	// Put stores the record for a tab, replacing any previous one.
	Put(ctx context.Context, tabID int, record *core.SafetyRecord) error

	// Get retrieves the record for a tab. ok is false when no record exists.
	Get(ctx context.Context, tabID int) (record *core.SafetyRecord, ok bool, err error)
}
