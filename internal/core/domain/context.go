package domain

import "strings"

// Context is the bounded text assembled for the generator: graph facts first,
// then retrieved passages in descending similarity order. Both parts may be
// empty.
type Context struct {
	GraphFacts string
	Passages   []string
}

const (
	graphFactsLabel = "Knowledge Graph Context: "
	passagesLabel   = "Relevant Information: "
)

// Render joins the context segments with newlines. An empty Context renders
// to the empty string.
func (c Context) Render() string {
	segments := make([]string, 0, 2)
	if c.GraphFacts != "" {
		segments = append(segments, graphFactsLabel+c.GraphFacts)
	}
	if len(c.Passages) > 0 {
		segments = append(segments, passagesLabel+strings.Join(c.Passages, " "))
	}
	return strings.Join(segments, "\n")
}

// Empty reports whether the context carries neither facts nor passages.
func (c Context) Empty() bool {
	return c.GraphFacts == "" && len(c.Passages) == 0
}
