package http

import (
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/gaps"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/graph"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/radar"
)

// GraphResponse is the response body for GET /graph/data.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// GraphNode is a node as rendered by force-directed graph clients.
type GraphNode struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Val     float64  `json:"val"`
	Icon    string   `json:"icon"`
	Mastery *float64 `json:"mastery"`
}

// GraphLink is an undirected edge.
type GraphLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// SuggestRequest is the request body for POST /graph/suggest.
type SuggestRequest struct {
	Text         string `json:"text" validate:"max=100000"`
	CurrentDocID string `json:"currentDocId" validate:"max=256"`
}

// SuggestResponse is the response body for POST /graph/suggest.
type SuggestResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// Suggestion is a related document.
type Suggestion struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float32 `json:"score"`
	Text  string  `json:"text"`
}

// GapsResponse is the response body for GET /graph/analyze-gaps.
type GapsResponse struct {
	ClustersCount int               `json:"clustersCount"`
	Gaps          []gaps.Suggestion `json:"gaps"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func emptyGraph() GraphResponse {
	return GraphResponse{Nodes: []GraphNode{}, Links: []GraphLink{}}
}

func graphResponse(g *graph.Graph) GraphResponse {
	resp := GraphResponse{
		Nodes: make([]GraphNode, 0, len(g.Nodes)),
		Links: make([]GraphLink, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		resp.Nodes = append(resp.Nodes, GraphNode{
			ID:      n.ID,
			Name:    n.Label,
			Val:     n.Weight,
			Icon:    n.Icon,
			Mastery: n.Mastery,
		})
	}
	for _, e := range g.Edges {
		resp.Links = append(resp.Links, GraphLink{Source: e.Source, Target: e.Target, Value: e.Weight})
	}
	return resp
}

func suggestResponse(in []radar.Suggestion) SuggestResponse {
	out := SuggestResponse{Suggestions: make([]Suggestion, 0, len(in))}
	for _, s := range in {
		out.Suggestions = append(out.Suggestions, Suggestion{ID: s.ID, Title: s.Title, Score: s.Score, Text: s.Snippet})
	}
	return out
}
