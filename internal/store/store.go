package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRevision = errors.New("invalid revision")
)

// WalkFunc is called for every stored revision of an object in ascending
// order. Exactly one of snap and p is non-nil. Returning a non-nil error
// stops the walk and is returned by WalkObjectRevisions.
type WalkFunc func(rev RevisionID, snap *Snapshot, p *Patch) error

// RevisionStore persists the revision history of documents.
type RevisionStore interface {
	// Get returns either the snapshot or the patch stored at revID.
	Get(ctx context.Context, objectID string, revID RevisionID) (*Snapshot, *Patch, error)

	// SetSnapshot and SetPatch assign the next revision number of the object
	// to the record's ID before storing it.
	SetSnapshot(ctx context.Context, objectID string, snap *Snapshot) error
	SetPatch(ctx context.Context, objectID string, p *Patch) error

	GetLatestRevision(ctx context.Context, objectID string) (RevisionID, error)
	WalkObjectRevisions(ctx context.Context, objectID string, fn WalkFunc) error

	// Objects lists the IDs of all stored objects in lexical order.
	Objects(ctx context.Context) ([]string, error)
	Close() error
}
