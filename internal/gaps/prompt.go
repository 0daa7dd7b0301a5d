package gaps

import (
	"fmt"
	"strings"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/graph"
)

// SystemPrompt frames the gap analysis task for the model.
const SystemPrompt = `You are a knowledge architect reviewing a personal knowledge base.
The notes are grouped into clusters of closely related documents. Clusters
that share no links are knowledge silos.

Identify pairs of disconnected clusters where a single new document would
create a high-value bridge. Only propose connections that are genuinely
useful; you do not need to cover every pair.

Respond with a JSON array and nothing else. Each element must be an object:
{"clusterA": <cluster id number>, "clusterB": <cluster id number>, "bridgeTitle": "<title of the bridging document>", "reason": "<one sentence on why it connects them>"}
If nothing is worth bridging, respond with [].`

// Summary is the prompt view of one cluster.
type Summary struct {
	ClusterID   int
	Titles      []string
	Description string
}

// Summarize builds one summary per cluster: the first maxTitles member
// titles and a description made of the top maxKeywords terms across member
// titles and content.
func Summarize(clusters []graph.Cluster, maxTitles, maxKeywords int, kw *KeywordExtractor) []Summary {
	out := make([]Summary, 0, len(clusters))
	for _, c := range clusters {
		titles := make([]string, 0, min(len(c.Members), maxTitles))
		texts := make([]string, 0, 2*len(c.Members))
		for i, m := range c.Members {
			if i < maxTitles {
				titles = append(titles, m.Label)
			}
			texts = append(texts, m.Label, m.Content)
		}
		out = append(out, Summary{
			ClusterID:   c.ID,
			Titles:      titles,
			Description: describe(kw.Keywords(texts, maxKeywords), len(c.Members)),
		})
	}
	return out
}

func describe(keywords []string, size int) string {
	noun := "documents"
	if size == 1 {
		noun = "document"
	}
	if len(keywords) == 0 {
		return fmt.Sprintf("%d %s with no distinctive terms", size, noun)
	}
	return fmt.Sprintf("%d %s about %s", size, noun, strings.Join(keywords, ", "))
}

// BuildPrompt renders the user prompt listing every cluster summary.
func BuildPrompt(summaries []Summary) string {
	var sb strings.Builder
	sb.WriteString("Knowledge clusters:\n\n")
	for _, s := range summaries {
		fmt.Fprintf(&sb, "Cluster %d: %s\n", s.ClusterID, strings.Join(s.Titles, ", "))
		fmt.Fprintf(&sb, "  Summary: %s\n", s.Description)
	}
	sb.WriteString("\nPropose bridging documents between disconnected clusters as a JSON array.")
	return sb.String()
}
