package localfs

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

const (
	CorpusFile  = "cleaned_data.csv"
	ResultsFile = "evaluation_results.json"
)

var corpusHeader = []string{"text", "source_url", "length"}

// SaveCorpusCSV writes the normalized corpus as a flat CSV snapshot, the
// format the API reads at startup when no database corpus is available.
func (s *Storage) SaveCorpusCSV(ctx context.Context, docs []domain.Document) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(corpusHeader); err != nil {
		return fmt.Errorf("write corpus header: %w", err)
	}
	for _, doc := range docs {
		record := []string{doc.Text, doc.SourceURL, strconv.Itoa(doc.Length)}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write corpus row %d: %w", doc.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush corpus csv: %w", err)
	}

	return s.Save(ctx, CorpusFile, &buf)
}

// LoadCorpusCSV reads the corpus snapshot back, assigning document IDs by
// row order.
func (s *Storage) LoadCorpusCSV(ctx context.Context) ([]domain.Document, error) {
	f, err := s.Open(ctx, CorpusFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read corpus header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, required := range corpusHeader {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("corpus file missing column %q", required)
		}
	}

	var docs []domain.Document
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus row: %w", err)
		}
		length, err := strconv.Atoi(record[columns["length"]])
		if err != nil {
			return nil, fmt.Errorf("parse length in corpus row %d: %w", len(docs), err)
		}
		docs = append(docs, domain.Document{
			ID:        len(docs),
			Text:      record[columns["text"]],
			SourceURL: record[columns["source_url"]],
			Length:    length,
		})
	}
	return docs, nil
}

// SaveResultsJSON writes an evaluation run to the processed-data directory.
func (s *Storage) SaveResultsJSON(ctx context.Context, results *domain.EvaluationResults) error {
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal evaluation results: %w", err)
	}
	return s.Save(ctx, ResultsFile, bytes.NewReader(payload))
}
