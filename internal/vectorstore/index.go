// Package vectorstore provides the similarity index: vectors stored with
// document metadata and queried by filtered nearest-neighbour search.
//
// Two backends implement Index:
//   - ChromemIndex: embedded chromem-go database persisted to disk (default)
//   - QdrantIndex: remote Qdrant over gRPC
//
// Every query is scoped to one org. An empty Filter.OrgID fails closed with
// ErrMissingOrgFilter rather than searching across tenants.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
)

// Sentinel errors for index operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyRecords indicates empty or nil upsert input.
	ErrEmptyRecords = errors.New("empty or nil records")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrMissingOrgFilter is returned when a query carries no org scope.
	ErrMissingOrgFilter = errors.New("query filter missing org scope")

	// ErrInvalidVector is returned for empty query vectors or dimension mismatches.
	ErrInvalidVector = errors.New("invalid vector")

	// ErrConnectionFailed indicates the backend could not be reached.
	ErrConnectionFailed = errors.New("failed to connect to vector store")
)

// Metadata keys stored alongside each vector.
const (
	MetaDocID       = "doc_id"
	MetaOrgID       = "org_id"
	MetaTitle       = "title"
	MetaArchived    = "archived"
	MetaContentHash = "content_hash"
)

var collectionNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// Filter restricts a query.
type Filter struct {
	// OrgID is required.
	OrgID string
	// ExcludeArchived drops records flagged archived.
	ExcludeArchived bool
}

// Validate fails closed on a missing org scope.
func (f Filter) Validate() error {
	if f.OrgID == "" {
		return ErrMissingOrgFilter
	}
	return nil
}

// Hit is one nearest-neighbour result.
type Hit struct {
	DocID string
	Title string
	Text  string
	Score float32
}

// Record is one document vector to store.
type Record struct {
	DocID       string
	OrgID       string
	Title       string
	Text        string
	Archived    bool
	ContentHash string
	Vector      []float32
}

// Validate checks that a record can be stored.
func (r Record) Validate() error {
	if r.DocID == "" {
		return fmt.Errorf("%w: record missing doc id", ErrInvalidConfig)
	}
	if r.OrgID == "" {
		return fmt.Errorf("%w: record %s missing org id", ErrInvalidConfig, r.DocID)
	}
	if len(r.Vector) == 0 {
		return fmt.Errorf("%w: record %s has no vector", ErrInvalidVector, r.DocID)
	}
	return nil
}

// Key returns the storage id of a record. Document ids are only unique
// within an org, so the org is part of the key.
func (r Record) Key() string {
	return r.OrgID + "/" + r.DocID
}

// Querier runs similarity lookups.
type Querier interface {
	// Query returns up to topK hits ordered by descending similarity.
	Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Hit, error)
}

// Index is the similarity index used by the graph builder, the radar and the
// indexer.
type Index interface {
	Querier
	// Upsert inserts or replaces records keyed by OrgID and DocID.
	Upsert(ctx context.Context, records []Record) error
	// Close releases backend resources.
	Close() error
}

// ValidateCollectionName validates a collection name.
// Pattern: ^[a-z0-9_]{1,64}$
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalidCollectionName)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: collection name must match pattern ^[a-z0-9_]{1,64}$, got %q", ErrInvalidCollectionName, name)
	}
	return nil
}

// normalize returns a unit-length copy of v. Zero vectors are returned as-is.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
