package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRevision = errors.New("invalid revision")
)

// WalkFunc is called for every stored revision. Returning false stops the walk.
type WalkFunc func(documentID string, rev *Revision) bool

// DocumentStore keeps the revision history of documents.
type DocumentStore interface {
	// Get returns the revision [revID] of the document.
	Get(ctx context.Context, documentID string, revID RevisionID) (*Revision, error)
	// Save assigns the next revision ID to [rev] and stores it.
	Save(ctx context.Context, documentID string, rev *Revision) error

	// GetLatestRevision returns [ErrNotFound] for unknown documents.
	GetLatestRevision(ctx context.Context, documentID string) (RevisionID, error)
	// List returns all revisions of a document, oldest first.
	List(ctx context.Context, documentID string) ([]*Revision, error)
	// Documents returns the IDs of all known documents in sorted order.
	Documents(ctx context.Context) ([]string, error)
	// Walk visits every revision of every document, grouped by document and
	// oldest first.
	Walk(fn WalkFunc) error

	Close() error
}
