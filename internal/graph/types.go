// Package graph builds the per-request knowledge graph of an org scope and
// partitions it into clusters.
//
// Nodes are documents. Edges connect documents whose embeddings are similar
// enough according to the similarity index. Nothing is persisted; every graph
// is built fresh for the request that asked for it.
package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/documents"
)

// ErrUpstream matches every UpstreamError via errors.Is.
var ErrUpstream = errors.New("upstream unavailable")

// UpstreamError wraps a failure of an external dependency (document store,
// embedding provider, similarity index, completion service).
type UpstreamError struct {
	Op  string
	Err error
}

// NewUpstreamError wraps err for operation op.
func NewUpstreamError(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUpstream, e.Op, e.Err)
}

// Unwrap exposes both ErrUpstream and the underlying cause.
func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstream, e.Err}
}

// Node is a document in the graph.
type Node struct {
	ID      string
	Label   string
	Icon    string
	Weight  float64
	Mastery *float64

	// Content and CreatedAt are carried for cluster summaries and never
	// leave the process.
	Content   string
	CreatedAt time.Time
}

// NodeFromDocument derives a node. Weight is 1 plus the mastery level.
func NodeFromDocument(d documents.Document) Node {
	return Node{
		ID:        d.ID,
		Label:     d.Title,
		Icon:      d.DisplayIcon(),
		Weight:    1 + d.Mastery(),
		Mastery:   d.MasteryLevel,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

// Edge is an undirected similarity link. Source is the document whose
// lookup discovered the pair.
type Edge struct {
	Source string
	Target string
	Weight float64
}

// Graph is the node and edge set of one org scope.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Cluster is a connected component. IDs are ordinals in discovery order.
type Cluster struct {
	ID      int
	Members []Node
}
