package gaps

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrMalformedOutput marks a model response that did not parse as a
// suggestion array. It is logged, never returned to callers.
var ErrMalformedOutput = errors.New("malformed model output")

const maxLoggedOutput = 500

var fencePattern = regexp.MustCompile("```[A-Za-z0-9_+-]*")

// ClusterRef identifies a cluster in a suggestion. Models are asked for the
// numeric id but sometimes answer with a string, so both are accepted.
type ClusterRef string

// UnmarshalJSON accepts a JSON number or string.
func (r *ClusterRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = ClusterRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cluster reference must be a number or string: %w", err)
	}
	*r = ClusterRef(n.String())
	return nil
}

// MarshalJSON emits integers as numbers and everything else as strings.
func (r ClusterRef) MarshalJSON() ([]byte, error) {
	if n, ok := r.ID(); ok && strconv.Itoa(n) == string(r) {
		return []byte(r), nil
	}
	return json.Marshal(string(r))
}

// ID returns the numeric cluster id, if the reference is one.
func (r ClusterRef) ID() (int, bool) {
	n, err := strconv.Atoi(string(r))
	return n, err == nil
}

// Suggestion proposes a document bridging two disconnected clusters.
type Suggestion struct {
	ClusterA    ClusterRef `json:"clusterA"`
	ClusterB    ClusterRef `json:"clusterB"`
	BridgeTitle string     `json:"bridgeTitle"`
	Reason      string     `json:"reason"`
}

// complete reports whether s names two distinct clusters and a bridge title.
func (s Suggestion) complete() bool {
	if s.ClusterA == "" || s.ClusterB == "" || strings.TrimSpace(s.BridgeTitle) == "" {
		return false
	}
	if s.ClusterA == s.ClusterB {
		return false
	}
	a, okA := s.ClusterA.ID()
	b, okB := s.ClusterB.ID()
	return !(okA && okB && a == b)
}

// Sanitize cuts a raw model response down to its JSON array.
//
// Code fences are removed, the text is sliced from the first '[' to the
// last ']' when both exist in that order, and the result is trimmed. Empty
// output becomes "[]". Nothing inside the array is repaired.
func Sanitize(raw string) string {
	s := fencePattern.ReplaceAllString(raw, "")

	open := strings.Index(s, "[")
	closing := strings.LastIndex(s, "]")
	if open >= 0 && closing > open {
		s = s[open : closing+1]
	}

	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return "[]"
	}
	return s
}

// ParseSuggestions sanitizes raw and parses it strictly. Any parse failure
// is logged and yields an empty slice. Elements missing a cluster reference
// or a bridge title, or pairing a cluster with itself, are dropped.
func ParseSuggestions(raw string, logger *zap.Logger) []Suggestion {
	if logger == nil {
		logger = zap.NewNop()
	}

	clean := Sanitize(raw)
	if clean == "[]" {
		return []Suggestion{}
	}

	var out []Suggestion
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		logger.Warn("discarding model output",
			zap.Error(fmt.Errorf("%w: %w", ErrMalformedOutput, err)),
			zap.String("output", truncate(clean, maxLoggedOutput)),
		)
		return []Suggestion{}
	}
	kept := make([]Suggestion, 0, len(out))
	for _, sg := range out {
		if sg.complete() {
			kept = append(kept, sg)
		}
	}
	if dropped := len(out) - len(kept); dropped > 0 {
		logger.Debug("dropping incomplete suggestions", zap.Int("dropped", dropped), zap.Int("parsed", len(out)))
	}
	return kept
}

// KnownClusters keeps the suggestions whose references both resolve to one
// of the given cluster ids. References are matched by numeric id only.
func KnownClusters(suggestions []Suggestion, ids map[int]struct{}) []Suggestion {
	kept := make([]Suggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		a, okA := sg.ClusterA.ID()
		b, okB := sg.ClusterB.ID()
		if !okA || !okB {
			continue
		}
		if _, ok := ids[a]; !ok {
			continue
		}
		if _, ok := ids[b]; !ok {
			continue
		}
		kept = append(kept, sg)
	}
	return kept
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
