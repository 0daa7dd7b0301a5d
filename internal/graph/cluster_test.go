package graph

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberIDs(c Cluster) []string {
	out := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		out = append(out, m.ID)
	}
	return out
}

func nodes(ids ...string) []Node {
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, Node{ID: id, Label: id, Weight: 1})
	}
	return out
}

func TestFindClusters(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
		edges []Edge
		want  [][]string
	}{
		{
			name: "empty",
			want: [][]string{},
		},
		{
			name:  "isolated nodes are singletons",
			nodes: nodes("a", "b", "c"),
			want:  [][]string{{"a"}, {"b"}, {"c"}},
		},
		{
			name:  "chain is one component",
			nodes: nodes("a", "b", "c", "d"),
			edges: []Edge{{Source: "c", Target: "d"}, {Source: "a", Target: "b"}, {Source: "b", Target: "c"}},
			want:  [][]string{{"a", "b", "c", "d"}},
		},
		{
			name:  "two components in node order",
			nodes: nodes("x", "a", "y", "b"),
			edges: []Edge{{Source: "a", Target: "b"}, {Source: "y", Target: "x"}},
			want:  [][]string{{"x", "y"}, {"a", "b"}},
		},
		{
			name:  "unknown endpoints ignored",
			nodes: nodes("a", "b"),
			edges: []Edge{{Source: "a", Target: "ghost"}, {Source: "ghost", Target: "b"}},
			want:  [][]string{{"a"}, {"b"}},
		},
		{
			name:  "self loop ignored",
			nodes: nodes("a"),
			edges: []Edge{{Source: "a", Target: "a"}},
			want:  [][]string{{"a"}},
		},
		{
			name:  "duplicate node ids counted once",
			nodes: nodes("a", "b", "a"),
			edges: []Edge{{Source: "a", Target: "b"}},
			want:  [][]string{{"a", "b"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindClusters(tt.nodes, tt.edges)
			require.NotNil(t, got)
			ids := make([][]string, 0, len(got))
			for i, c := range got {
				assert.Equal(t, i, c.ID)
				ids = append(ids, memberIDs(c))
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFindClusters_Partition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 60

	ns := make([]Node, 0, n)
	for i := 0; i < n; i++ {
		ns = append(ns, Node{ID: fmt.Sprintf("n%d", i)})
	}
	var es []Edge
	for i := 0; i < 45; i++ {
		a, b := rng.Intn(n), rng.Intn(n)
		es = append(es, Edge{Source: ns[a].ID, Target: ns[b].ID})
	}

	clusters := FindClusters(ns, es)

	owner := map[string]int{}
	for _, c := range clusters {
		require.NotEmpty(t, c.Members)
		for _, m := range c.Members {
			_, seen := owner[m.ID]
			require.False(t, seen, "node %s in two clusters", m.ID)
			owner[m.ID] = c.ID
		}
	}
	assert.Len(t, owner, n)

	// Edge endpoints share a cluster.
	for _, e := range es {
		assert.Equal(t, owner[e.Source], owner[e.Target])
	}

	// Every member of a cluster is reachable from its first member.
	adj := map[string][]string{}
	for _, e := range es {
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}
	for _, c := range clusters {
		reach := map[string]bool{c.Members[0].ID: true}
		stack := []string{c.Members[0].ID}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range adj[cur] {
				if !reach[nb] {
					reach[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		assert.Len(t, reach, len(c.Members))
	}

	// Deterministic.
	assert.Equal(t, clusters, FindClusters(ns, es))
}
