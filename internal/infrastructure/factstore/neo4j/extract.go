package neo4j

import (
	"regexp"
	"strings"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

type entity struct {
	Label string
	Name  string
}

type relationship struct {
	Type   string
	Source string
	Target string
}

// Entity rules run in a fixed order so the same corpus always produces the
// same graph. Standard numbers are captured from the text; organization and
// location names are recorded verbatim when their pattern appears.
var matStandardPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)MAT Standard \d+`),
	regexp.MustCompile(`(?i)Standard \d+`),
	regexp.MustCompile(`(?i)MAT \d+`),
}

var organizationNames = []string{
	"Public Health Scotland",
	"NHS",
	"Government",
	"Health Board",
}

var locationNames = []string{
	"Scotland",
	"UK",
	"United Kingdom",
}

var conceptRules = []struct {
	pattern *regexp.Regexp
	name    string
}{
	{regexp.MustCompile(`(?i)medication.assisted.treatment`), "medication assisted treatment"},
	{regexp.MustCompile(`(?i)substance.use`), "substance use"},
	{regexp.MustCompile(`(?i)treatment`), "treatment"},
	{regexp.MustCompile(`(?i)recovery`), "recovery"},
	{regexp.MustCompile(`(?i)support`), "support"},
}

// Relationship rules are keyword-triggered fixed triples.
var relationshipRules = []struct {
	keywords []string
	rel      relationship
}{
	{[]string{"supports"}, relationship{Type: "SUPPORTS", Source: "MAT", Target: "Support"}},
	{[]string{"implements", "implementation"}, relationship{Type: "IMPLEMENTS", Source: "MAT Standards", Target: "Implementation"}},
	{[]string{"aims", "aimed at"}, relationship{Type: "AIMS_AT", Source: "MAT Standards", Target: "Organizations"}},
	{[]string{"provides"}, relationship{Type: "PROVIDES", Source: "MAT", Target: "Treatment"}},
}

// extractEntities scans every document with every rule and returns the
// deduplicated entity list, first occurrence wins.
func extractEntities(docs []domain.Document) []entity {
	var out []entity
	seen := make(map[entity]struct{})
	add := func(label, name string) {
		e := entity{Label: label, Name: name}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}

	for _, doc := range docs {
		text := strings.ToLower(doc.Text)

		for _, pattern := range matStandardPatterns {
			for _, match := range pattern.FindAllString(text, -1) {
				add("MATStandard", match)
			}
		}
		for _, name := range organizationNames {
			if containsFold(text, name) {
				add("Organization", name)
			}
		}
		for _, name := range locationNames {
			if containsFold(text, name) {
				add("Location", name)
			}
		}
		for _, rule := range conceptRules {
			if rule.pattern.MatchString(text) {
				add("Concept", rule.name)
			}
		}
	}
	return out
}

// extractRelationships returns the deduplicated keyword-triggered triples in
// rule order.
func extractRelationships(docs []domain.Document) []relationship {
	var out []relationship
	seen := make(map[relationship]struct{})

	for _, doc := range docs {
		text := strings.ToLower(doc.Text)
		for _, rule := range relationshipRules {
			for _, keyword := range rule.keywords {
				if strings.Contains(text, keyword) {
					if _, ok := seen[rule.rel]; !ok {
						seen[rule.rel] = struct{}{}
						out = append(out, rule.rel)
					}
					break
				}
			}
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(haystack, strings.ToLower(needle))
}
