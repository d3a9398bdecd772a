package recorder

import (
	"context"

	"github.com/draftedge/draftedge/internal/domain/model"
)

// Noop is a no-op implementation used when no snapshot database is
// configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) RecordSnapshot(_ context.Context, _ *model.Snapshot) error { return nil }
func (n *Noop) Close() error                                              { return nil }
