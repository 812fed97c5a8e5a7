// Package source defines the capability every activity provider implements:
// produce the raw events for a time window. The engine never sees a
// source-specific representation.
package source

import (
	"context"

	"standup-report/internal/report"
)

// Source produces the raw events a provider knows about for a window.
// Implementations are expected to deliver the complete batch for the window
// or fail; there is no partial-delivery contract.
type Source interface {
	Name() string
	Events(ctx context.Context, w report.Window) ([]report.RawEvent, error)
}
