package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Simulated returns canned replies so the dashboard can be exercised without
// a bot backend. Mirrors the real engine's elicitation flow: risk questions
// ask for an image filename, filename mentions get a simulated diagnosis.
type Simulated struct{}

func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Converse(_ context.Context, sessionID, text string, attrs map[string]string) []string {
	log.Printf("[assistant] simulated turn for session=%s: %q", sessionID, text)

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "risk") || strings.Contains(lower, "high"):
		return []string{
			"Weather indicates high risk based on your query.",
			"Please provide the filename of the uploaded image for analysis.",
		}
	case strings.Contains(lower, "filename") || strings.Contains(lower, ".jpg") || strings.Contains(lower, ".png"):
		return []string{
			fmt.Sprintf("Okay, analyzing image '%s' (simulated).", text),
			"Diagnosis: Healthy (Confidence: 95.0%) - This is a simulated result.",
		}
	}

	reply := fmt.Sprintf("Okay, you asked about '%s'.", text)
	if loc := attrs[AttrLocation]; loc != "" {
		reply += fmt.Sprintf(" Location context is '%s'.", loc)
	}
	return []string{reply}
}
