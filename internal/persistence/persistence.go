// Package persistence defines the durable medium behind the store and the
// JSON snapshot codec shared by the file and object media.
package persistence

import (
	"context"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/entity"
)

// Persister loads and saves the full store snapshot.
type Persister interface {
	// Load returns (nil, nil) when nothing has been persisted yet.
	Load(ctx context.Context) (*entity.Snapshot, error)
	// Save commits snap as one atomic unit. changes lists what moved since the
	// previous save; media that rewrite the whole snapshot ignore it, and an
	// empty list always means a full rewrite.
	Save(ctx context.Context, snap *entity.Snapshot, changes ...Change) error
	Close() error
}

// Change identifies one mutated entity.
type Change struct {
	Kind    constants.EntityKind
	ID      string
	Removed bool
}
