package domain

// GenerationOptions are the only generation knobs the core passes through.
type GenerationOptions struct {
	MaxNewTokens int
	Temperature  float64
}

// Answer is the user-facing result of one query. ContextUsed reports whether
// any retrieved passage or graph fact reached the prompt; KGContext reports
// whether graph facts specifically did.
type Answer struct {
	Response    string   `json:"response"`
	Sources     []string `json:"sources"`
	ContextUsed bool     `json:"context_used"`
	KGContext   bool     `json:"kg_context"`
}

// Exchange is one question/answer turn kept in session history.
type Exchange struct {
	Question string   `json:"question"`
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// SystemInfo describes component readiness for the status endpoint.
type SystemInfo struct {
	RetrieverFitted bool            `json:"retriever_fitted"`
	FactStoreReady  bool            `json:"fact_store_ready"`
	DocumentStats   CollectionStats `json:"document_stats"`
}
