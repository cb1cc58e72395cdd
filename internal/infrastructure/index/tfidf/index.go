package tfidf

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

const (
	defaultMaxFeatures = 1000
	defaultTopK        = 5
)

// Index is an in-memory TF-IDF vector space over the document collection.
// Fit fully replaces the space under the write lock; retrieval runs under
// the read lock, so a partially built index is never observable.
type Index struct {
	mu sync.RWMutex

	maxFeatures int
	fitted      bool

	docs    []domain.Document
	vocab   map[string]int
	idf     []float64
	vectors []sparseVector
}

// sparseVector holds (column, weight) pairs sorted by column. The sorted
// representation keeps dot products and their float summation order
// deterministic across calls.
type sparseVector []termWeight

type termWeight struct {
	col    int
	weight float64
}

func New(maxFeatures int) *Index {
	if maxFeatures <= 0 {
		maxFeatures = defaultMaxFeatures
	}
	return &Index{maxFeatures: maxFeatures}
}

// Fit builds the vocabulary and the per-document weight vectors. The
// vocabulary is truncated to maxFeatures terms, ordered by document
// frequency descending then term ascending so truncation is reproducible.
func (ix *Index) Fit(docs []domain.Document) error {
	if len(docs) == 0 {
		return domain.WrapError(domain.ErrEmptyCollection, "fit index", errors.New("no documents to index"))
	}

	termsPerDoc := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		terms := analyze(doc.Text)
		termsPerDoc[i] = terms

		unique := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			unique[term] = struct{}{}
		}
		for term := range unique {
			df[term]++
		}
	}

	ordered := make([]string, 0, len(df))
	for term := range df {
		ordered = append(ordered, term)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if df[ordered[i]] != df[ordered[j]] {
			return df[ordered[i]] > df[ordered[j]]
		}
		return ordered[i] < ordered[j]
	})
	if len(ordered) > ix.maxFeatures {
		ordered = ordered[:ix.maxFeatures]
	}

	vocab := make(map[string]int, len(ordered))
	idf := make([]float64, len(ordered))
	total := float64(len(docs))
	for col, term := range ordered {
		vocab[term] = col
		idf[col] = math.Log((1+total)/(1+float64(df[term]))) + 1
	}

	vectors := make([]sparseVector, len(docs))
	for i, terms := range termsPerDoc {
		vectors[i] = normalizeVector(weightTerms(terms, vocab, idf))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs = append([]domain.Document(nil), docs...)
	ix.vocab = vocab
	ix.idf = idf
	ix.vectors = vectors
	ix.fitted = true
	return nil
}

// Retrieve projects the query into the fitted space and ranks every
// document by cosine similarity. Zero-similarity documents are excluded;
// ties break by ascending document ID.
func (ix *Index) Retrieve(query string, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		k = defaultTopK
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if !ix.fitted {
		return nil, domain.WrapError(domain.ErrNotFitted, "retrieve", errors.New("call Fit before Retrieve"))
	}

	queryVec := normalizeVector(weightTerms(analyze(query), ix.vocab, ix.idf))
	if len(queryVec) == 0 {
		return nil, nil
	}

	type scored struct {
		idx int
		sim float64
	}
	hits := make([]scored, 0, len(ix.docs))
	for i, docVec := range ix.vectors {
		if sim := dot(queryVec, docVec); sim > 0 {
			hits = append(hits, scored{idx: i, sim: sim})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].sim != hits[j].sim {
			return hits[i].sim > hits[j].sim
		}
		return hits[i].idx < hits[j].idx
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	results := make([]domain.RetrievalResult, 0, len(hits))
	for rank, hit := range hits {
		results = append(results, domain.RetrievalResult{
			Document:   ix.docs[hit.idx],
			Similarity: hit.sim,
			Rank:       rank + 1,
		})
	}
	return results, nil
}

// RetrieveByKeywords is the exact-match fallback: case-insensitive
// substring OR-match in original document order, similarity pinned at 1.0.
func (ix *Index) RetrieveByKeywords(keywords []string, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		k = defaultTopK
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if !ix.fitted {
		return nil, domain.WrapError(domain.ErrNotFitted, "retrieve by keywords", errors.New("call Fit first"))
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	if len(lowered) == 0 {
		return nil, nil
	}

	results := make([]domain.RetrievalResult, 0, k)
	for _, doc := range ix.docs {
		text := strings.ToLower(doc.Text)
		for _, kw := range lowered {
			if strings.Contains(text, kw) {
				results = append(results, domain.RetrievalResult{
					Document:   doc,
					Similarity: 1.0,
					Rank:       len(results) + 1,
				})
				break
			}
		}
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// Statistics aggregates over the attached collection; zero values when no
// collection is attached yet.
func (ix *Index) Statistics() domain.CollectionStats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	stats := domain.CollectionStats{TotalDocuments: len(ix.docs)}
	if len(ix.docs) == 0 {
		return stats
	}

	totalChars := 0
	sources := make(map[string]struct{})
	for _, doc := range ix.docs {
		totalChars += len(doc.Text)
		stats.TotalWords += len(strings.Fields(doc.Text))
		if doc.SourceURL != "" {
			sources[doc.SourceURL] = struct{}{}
		}
	}
	stats.AverageLength = float64(totalChars) / float64(len(ix.docs))
	stats.UniqueSources = len(sources)
	return stats
}

func (ix *Index) Fitted() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.fitted
}

func weightTerms(terms []string, vocab map[string]int, idf []float64) sparseVector {
	counts := make(map[int]float64)
	for _, term := range terms {
		if col, ok := vocab[term]; ok {
			counts[col]++
		}
	}

	vec := make(sparseVector, 0, len(counts))
	for col, tf := range counts {
		vec = append(vec, termWeight{col: col, weight: tf * idf[col]})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].col < vec[j].col })
	return vec
}

func normalizeVector(vec sparseVector) sparseVector {
	var sumSquares float64
	for _, tw := range vec {
		sumSquares += tw.weight * tw.weight
	}
	if sumSquares == 0 {
		return nil
	}
	norm := math.Sqrt(sumSquares)
	for i := range vec {
		vec[i].weight /= norm
	}
	return vec
}

func dot(a, b sparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].col == b[j].col:
			sum += a[i].weight * b[j].weight
			i++
			j++
		case a[i].col < b[j].col:
			i++
		default:
			j++
		}
	}
	return sum
}
