package tfidf

import (
	"regexp"
	"strings"
)

// Tokens are runs of two or more word characters, lowercased. Single-letter
// tokens carry no retrieval signal on this corpus and are dropped, matching
// the vocabulary the index was tuned against.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// analyze produces the term stream for one text: stopword-filtered unigrams
// plus bigrams over the filtered stream. Bigram terms join their parts with
// a single space.
func analyze(text string) []string {
	tokens := tokenize(text)
	filtered := tokens[:0]
	for _, tok := range tokens {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		filtered = append(filtered, tok)
	}

	terms := make([]string, 0, len(filtered)*2)
	terms = append(terms, filtered...)
	for i := 0; i+1 < len(filtered); i++ {
		terms = append(terms, filtered[i]+" "+filtered[i+1])
	}
	return terms
}
