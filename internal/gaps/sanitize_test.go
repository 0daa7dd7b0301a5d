package gaps

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/logging"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "fenced with chatter",
			raw:  "Sure! Here's the list:\n```json\n[{\"a\":1}]\n```\nHope that helps!",
			want: `[{"a":1}]`,
		},
		{name: "empty", raw: "", want: "[]"},
		{name: "whitespace", raw: "  \n\t", want: "[]"},
		{name: "empty array", raw: "[]", want: "[]"},
		{name: "fenced empty array", raw: "```\n[]\n```", want: "[]"},
		{name: "bare fence", raw: "```\n[1, 2]\n```", want: "[1, 2]"},
		{name: "nested arrays keep outer span", raw: `ok [[1],[2]] done`, want: `[[1],[2]]`},
		{name: "no brackets", raw: "I could not find any gaps.", want: "I could not find any gaps."},
		{name: "reversed brackets", raw: "] oops [", want: "] oops ["},
		{name: "only opening bracket", raw: "[{\"a\":1}", want: "[{\"a\":1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.raw))
		})
	}
}

func TestParseSuggestions(t *testing.T) {
	raw := "```json\n" + `[
  {"clusterA": 0, "clusterB": 2, "bridgeTitle": "Caching for ML serving", "reason": "Links infra and ML notes."},
  {"clusterA": "1", "clusterB": "3", "bridgeTitle": "Shared glossary", "reason": "Common vocabulary."}
]` + "\n```"

	got := ParseSuggestions(raw, nil)
	require.Len(t, got, 2)

	assert.Equal(t, ClusterRef("0"), got[0].ClusterA)
	assert.Equal(t, ClusterRef("2"), got[0].ClusterB)
	assert.Equal(t, "Caching for ML serving", got[0].BridgeTitle)
	assert.Equal(t, "Links infra and ML notes.", got[0].Reason)

	id, ok := got[1].ClusterA.ID()
	assert.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestParseSuggestions_MalformedIsLoggedAndEmpty(t *testing.T) {
	logger, logs := logging.NewObserved()

	tests := []string{
		`[{"clusterA": 0, "clusterB": 1, "bridgeTitle": "x",}]`,
		"no json here",
		`[{"clusterA": true}]`,
	}
	for _, raw := range tests {
		got := ParseSuggestions(raw, logger)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	entries := logs.FilterMessage("discarding model output").All()
	require.Len(t, entries, 3)
	assert.Contains(t, entries[0].ContextMap()["error"], ErrMalformedOutput.Error())
}

func TestParseSuggestions_EmptyInputsDoNotLog(t *testing.T) {
	logger, logs := logging.NewObserved()
	for _, raw := range []string{"", "[]", "```json\n[]\n```", "null"} {
		got := ParseSuggestions(raw, logger)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Equal(t, 0, logs.Len())
}

func TestClusterRef_JSON(t *testing.T) {
	var r ClusterRef
	require.NoError(t, json.Unmarshal([]byte(`7`), &r))
	assert.Equal(t, ClusterRef("7"), r)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `7`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`"Cluster B"`), &r))
	out, err = json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `"Cluster B"`, string(out))

	_, ok := r.ID()
	assert.False(t, ok)

	assert.Error(t, json.Unmarshal([]byte(`{}`), &r))
}

func TestParseSuggestions_DropsIncompleteElements(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{
			name: "unknown fields only",
			raw:  "Sure! Here's the list:\n```json\n[{\"a\":1}]\n```\nHope that helps!",
			want: 0,
		},
		{name: "missing clusterB", raw: `[{"clusterA":0,"bridgeTitle":"t","reason":"r"}]`, want: 0},
		{name: "null clusterA", raw: `[{"clusterA":null,"clusterB":1,"bridgeTitle":"t"}]`, want: 0},
		{name: "empty bridge title", raw: `[{"clusterA":0,"clusterB":1,"bridgeTitle":""}]`, want: 0},
		{name: "blank bridge title", raw: `[{"clusterA":0,"clusterB":1,"bridgeTitle":"  "}]`, want: 0},
		{name: "same cluster", raw: `[{"clusterA":0,"clusterB":0,"bridgeTitle":"t"}]`, want: 0},
		{name: "same cluster as number and string", raw: `[{"clusterA":2,"clusterB":"2","bridgeTitle":"t"}]`, want: 0},
		{name: "missing reason is fine", raw: `[{"clusterA":0,"clusterB":1,"bridgeTitle":"t"}]`, want: 1},
		{
			name: "mixed",
			raw: `[{"clusterA":0,"clusterB":0,"bridgeTitle":"self"},` +
				`{"clusterA":0,"clusterB":1,"bridgeTitle":"ok","reason":"r"},` +
				`{"clusterA":0,"clusterB":99,"bridgeTitle":""}]`,
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSuggestions(tt.raw, nil)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)
			for _, sg := range got {
				assert.NotEmpty(t, sg.BridgeTitle)
				assert.NotEqual(t, sg.ClusterA, sg.ClusterB)
			}
		})
	}
}

func TestKnownClusters(t *testing.T) {
	ids := map[int]struct{}{0: {}, 1: {}, 2: {}}
	in := []Suggestion{
		{ClusterA: "0", ClusterB: "1", BridgeTitle: "known"},
		{ClusterA: "0", ClusterB: "99", BridgeTitle: "invented id"},
		{ClusterA: "-1", ClusterB: "2", BridgeTitle: "negative id"},
		{ClusterA: "Cluster A", ClusterB: "2", BridgeTitle: "named ref"},
		{ClusterA: "2", ClusterB: "1", BridgeTitle: "also known"},
	}

	got := KnownClusters(in, ids)
	require.Len(t, got, 2)
	assert.Equal(t, "known", got[0].BridgeTitle)
	assert.Equal(t, "also known", got[1].BridgeTitle)

	assert.NotNil(t, KnownClusters(nil, ids))
	assert.Empty(t, KnownClusters(in, map[int]struct{}{}))
}
