package usecase

import "strings"

const (
	minTailSentenceChars = 10
	maxResponseChars     = 500
)

// postprocessResponse trims an incomplete trailing sentence and caps the
// response length. Applying it twice yields the same result as once.
func postprocessResponse(raw string) string {
	response := strings.TrimSpace(raw)
	if response == "" {
		return ""
	}

	sentences := strings.Split(response, ".")
	if len(sentences) > 1 {
		tail := strings.TrimSpace(sentences[len(sentences)-1])
		if len(tail) < minTailSentenceChars {
			response = strings.Join(sentences[:len(sentences)-1], ".") + "."
		}
	}

	response = truncateRunes(response, maxResponseChars)
	return strings.TrimSpace(response)
}
