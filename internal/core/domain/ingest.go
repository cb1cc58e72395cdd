package domain

// IngestReport summarises one corpus refresh run.
type IngestReport struct {
	Scraped    int        `json:"scraped"`
	Kept       int        `json:"kept"`
	Sources    int        `json:"sources"`
	GraphStats GraphStats `json:"graph_stats"`
}
