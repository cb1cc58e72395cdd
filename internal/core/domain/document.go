package domain

// RawDocument is one scraped text segment before normalization.
type RawDocument struct {
	SourceURL string `json:"source_url"`
	Text      string `json:"text"`
}

// Document is a normalized corpus entry. Immutable once indexed; IDs are
// contiguous from 0 within one corpus generation.
type Document struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
	Length    int    `json:"length"`
}

// RetrievalResult is one ranked hit for a retrieval query.
type RetrievalResult struct {
	Document   Document `json:"document"`
	Similarity float64  `json:"similarity"`
	Rank       int      `json:"rank"`
}

// CollectionStats summarises the indexed corpus.
type CollectionStats struct {
	TotalDocuments int     `json:"total_documents"`
	AverageLength  float64 `json:"average_length"`
	TotalWords     int     `json:"total_words"`
	UniqueSources  int     `json:"unique_sources"`
}

// GraphStats summarises one knowledge-graph build.
type GraphStats struct {
	Entities      int `json:"entities"`
	Relationships int `json:"relationships"`
}
