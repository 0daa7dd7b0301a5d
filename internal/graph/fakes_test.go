package graph

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/documents"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/vectorstore"
)

const testOrg = "org-1"

var errBoom = errors.New("boom")

// fakeSimilarity embeds a document as a one-element vector pointing back at
// its ID, so Query can answer with canned hits per source document.
// Document titles must equal their IDs.
type fakeSimilarity struct {
	mu       sync.Mutex
	ids      []string
	pos      map[string]int
	hits     map[string][]vectorstore.Hit
	embedErr map[string]error
	queryErr map[string]error
	delay    map[string]time.Duration
	sources  []string
	texts    []string
	filters  []vectorstore.Filter
	topKs    []int
	started  map[string]time.Time
	finished map[string]time.Time

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	hold        time.Duration
}

func newFakeSimilarity() *fakeSimilarity {
	return &fakeSimilarity{
		pos:      map[string]int{},
		hits:     map[string][]vectorstore.Hit{},
		embedErr: map[string]error{},
		queryErr: map[string]error{},
		delay:    map[string]time.Duration{},
		started:  map[string]time.Time{},
		finished: map[string]time.Time{},
	}
}

func (f *fakeSimilarity) on(source string, hits ...vectorstore.Hit) *fakeSimilarity {
	f.hits[source] = hits
	return f
}

func (f *fakeSimilarity) Embed(ctx context.Context, text string) ([]float32, error) {
	id, _, _ := strings.Cut(text, "\n")

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	f.mu.Lock()
	f.started[id] = time.Now()
	f.sources = append(f.sources, id)
	f.texts = append(f.texts, text)
	p, ok := f.pos[id]
	if !ok {
		p = len(f.ids)
		f.ids = append(f.ids, id)
		f.pos[id] = p
	}
	err := f.embedErr[id]
	wait := f.delay[id] + f.hold
	f.mu.Unlock()

	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return []float32{float32(p)}, nil
}

func (f *fakeSimilarity) Query(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.ids[int(vector[0])]
	f.finished[id] = time.Now()
	f.filters = append(f.filters, filter)
	f.topKs = append(f.topKs, topK)
	if err := f.queryErr[id]; err != nil {
		return nil, err
	}
	return f.hits[id], nil
}

func (f *fakeSimilarity) sourceIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sources...)
}

type failingStore struct{}

func (failingStore) ListDocuments(context.Context, string, bool) ([]documents.Document, error) {
	return nil, errBoom
}

func (failingStore) Close() error { return nil }

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// doc returns a document created age minutes before baseTime.
func doc(id string, age int) documents.Document {
	return documents.Document{
		ID:        id,
		OrgID:     testOrg,
		Title:     id,
		Content:   "content of " + id,
		CreatedAt: baseTime.Add(-time.Duration(age) * time.Minute),
	}
}

func hit(id string, score float32) vectorstore.Hit {
	return vectorstore.Hit{DocID: id, Title: id, Score: score}
}
