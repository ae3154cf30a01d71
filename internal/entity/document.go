package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is the unit of editing tracked by the session coordinator.
//
// Content holds the rich (Lexical JSON) representation; DerivedText is the
// plain-text projection recomputed on every content mutation. The Baseline*
// fields hold the last values known to be durably persisted and are updated
// only by a successful load or a successful save of this document id.
type Document struct {
	Id          uuid.UUID
	Title       string
	Content     string
	DerivedText string

	// Organizational metadata, opaque to the session: passed through to the
	// store unmodified.
	Tags       []string
	NotebookId *uuid.UUID
	FolderId   *uuid.UUID

	BaselineContent     string
	BaselineDerivedText string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Clone returns a deep-enough copy for snapshotting: tag slice duplicated,
// id pointers shared (they are never mutated in place).
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.Tags != nil {
		c.Tags = append([]string(nil), d.Tags...)
	}
	return &c
}
