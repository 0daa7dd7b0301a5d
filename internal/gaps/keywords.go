package gaps

import (
	"regexp"
	"sort"
	"strings"
)

// KeywordExtractor picks the most frequent non-stopword terms of a text set.
type KeywordExtractor struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewKeywordExtractor creates an extractor with the built-in English stopword
// list.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Keywords returns up to n terms ordered by frequency, ties alphabetical.
func (e *KeywordExtractor) Keywords(texts []string, n int) []string {
	if n <= 0 {
		return nil
	}
	freq := map[string]int{}
	for _, text := range texts {
		for _, tok := range e.tokenize(text) {
			freq[tok]++
		}
	}

	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

func (e *KeywordExtractor) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if len([]rune(t)) < 3 {
			continue
		}
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into",
		"about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "don", "should", "now", "not", "all", "any", "each",
		"how", "what", "when", "where", "which", "who", "why", "you", "your", "our", "their", "they", "them",
		"has", "have", "had", "does", "did", "also", "more", "most", "some", "there", "here", "use", "using",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
