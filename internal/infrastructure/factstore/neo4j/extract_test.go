package neo4j

import (
	"testing"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

func graphCorpus() []domain.Document {
	return []domain.Document{
		{ID: 0, Text: "MAT Standard 1 focuses on access and choice. Public Health Scotland supports the rollout across Scotland."},
		{ID: 1, Text: "The NHS implements medication-assisted treatment and provides recovery support."},
		{ID: 2, Text: "MAT Standard 1 is the first of ten standards aimed at substance use services."},
	}
}

func TestExtractEntities(t *testing.T) {
	entities := extractEntities(graphCorpus())

	byLabel := make(map[string][]string)
	for _, e := range entities {
		byLabel[e.Label] = append(byLabel[e.Label], e.Name)
	}

	if got := byLabel["MATStandard"]; len(got) == 0 || got[0] != "mat standard 1" {
		t.Fatalf("MATStandard entities = %v", got)
	}
	if !containsName(byLabel["Organization"], "Public Health Scotland") || !containsName(byLabel["Organization"], "NHS") {
		t.Fatalf("Organization entities = %v", byLabel["Organization"])
	}
	if !containsName(byLabel["Location"], "Scotland") {
		t.Fatalf("Location entities = %v", byLabel["Location"])
	}
	if !containsName(byLabel["Concept"], "medication assisted treatment") || !containsName(byLabel["Concept"], "recovery") {
		t.Fatalf("Concept entities = %v", byLabel["Concept"])
	}
}

func TestExtractEntitiesDeduplicates(t *testing.T) {
	docs := []domain.Document{
		{Text: "MAT Standard 1 and again MAT Standard 1"},
		{Text: "MAT Standard 1 once more"},
	}
	entities := extractEntities(docs)
	count := 0
	for _, e := range entities {
		if e.Label == "MATStandard" && e.Name == "mat standard 1" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one deduplicated standard entity, got %d", count)
	}
}

func TestExtractEntitiesDeterministicOrder(t *testing.T) {
	first := extractEntities(graphCorpus())
	for i := 0; i < 10; i++ {
		again := extractEntities(graphCorpus())
		if len(again) != len(first) {
			t.Fatalf("entity count changed between runs")
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("entity order changed at %d: %v vs %v", j, first[j], again[j])
			}
		}
	}
}

func TestExtractRelationships(t *testing.T) {
	rels := extractRelationships(graphCorpus())

	types := make(map[string]relationship)
	for _, r := range rels {
		if _, dup := types[r.Type]; dup {
			t.Fatalf("duplicate relationship type %s", r.Type)
		}
		types[r.Type] = r
	}

	if r, ok := types["SUPPORTS"]; !ok || r.Source != "MAT" || r.Target != "Support" {
		t.Fatalf("SUPPORTS = %+v", types["SUPPORTS"])
	}
	if r, ok := types["IMPLEMENTS"]; !ok || r.Source != "MAT Standards" {
		t.Fatalf("IMPLEMENTS = %+v", r)
	}
	if _, ok := types["AIMS_AT"]; !ok {
		t.Fatalf("aimed-at keyword not detected")
	}
	if _, ok := types["PROVIDES"]; !ok {
		t.Fatalf("provides keyword not detected")
	}
}

func TestExtractRelationshipsEmptyCorpus(t *testing.T) {
	if rels := extractRelationships(nil); len(rels) != 0 {
		t.Fatalf("expected no relationships, got %v", rels)
	}
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
