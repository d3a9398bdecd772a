// Package recorder persists valuation snapshots for later analysis.
package recorder

import (
	"context"

	"github.com/draftedge/draftedge/internal/domain/model"
)

// Recorder persists completed snapshots. The engine never depends on a
// recorder succeeding: recording happens after a run is published.
type Recorder interface {
	RecordSnapshot(ctx context.Context, snap *model.Snapshot) error
	Close() error
}
