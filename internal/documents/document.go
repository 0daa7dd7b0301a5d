// Package documents adapts the external document store that owns titles,
// content, archive flags and mastery levels. graphd only reads from it.
package documents

import (
	"context"
	"errors"
	"time"
)

// DefaultIcon is used for documents without an icon of their own.
const DefaultIcon = "📄"

// ErrStoreClosed is returned by stores used after Close.
var ErrStoreClosed = errors.New("document store closed")

// Document is a read-only view of a stored document.
type Document struct {
	ID        string
	OrgID     string
	Title     string
	Content   string
	Icon      string
	Archived  bool
	CreatedAt time.Time

	// MasteryLevel comes from the review scheduler; nil when never reviewed.
	MasteryLevel *float64
}

// Mastery returns the mastery level, or 0 when absent.
func (d Document) Mastery() float64 {
	if d.MasteryLevel == nil {
		return 0
	}
	return *d.MasteryLevel
}

// DisplayIcon returns the document icon or DefaultIcon.
func (d Document) DisplayIcon() string {
	if d.Icon == "" {
		return DefaultIcon
	}
	return d.Icon
}

// Store lists documents for an org scope.
//
// Implementations return documents ordered newest first by CreatedAt.
type Store interface {
	ListDocuments(ctx context.Context, orgID string, excludeArchived bool) ([]Document, error)
	Close() error
}
