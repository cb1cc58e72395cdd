package tfidf

import (
	"reflect"
	"testing"
)

func TestTokenizeLowercasesAndDropsSingles(t *testing.T) {
	got := tokenize("MAT Standard 1 is vital, really!")
	want := []string{"mat", "standard", "is", "vital", "really"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokenize() = %v, want %v", got, want)
	}
}

func TestAnalyzeFiltersStopwordsAndFormsBigrams(t *testing.T) {
	got := analyze("MAT standards are important for treatment")
	want := []string{
		"mat", "standards", "important", "treatment",
		"mat standards", "standards important", "important treatment",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("analyze() = %v, want %v", got, want)
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	if got := analyze(""); len(got) != 0 {
		t.Fatalf("analyze(\"\") = %v, want empty", got)
	}
	if got := analyze("the of and"); len(got) != 0 {
		t.Fatalf("analyze(stopwords only) = %v, want empty", got)
	}
}
