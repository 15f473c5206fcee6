// Package moderation screens images with a dedicated moderation service
// before any general-purpose model looks at them.
package moderation

import (
	"context"
	"fmt"
	"strings"
)

// MinConfidence is the floor sent to the moderation service and the bar a
// label has to clear to disqualify an image.
const MinConfidence = 50.0

// Label is one content category the service detected.
type Label struct {
	Name       string
	ParentName string
	// Confidence is a percentage in [0, 100].
	Confidence float64
}

type Moderator interface {
	DetectModerationLabels(ctx context.Context, image []byte) ([]Label, error)
}

var blockedTerms = []string{"hate", "nazi", "explicit", "suggestive", "violence", "graphic"}

// Screen returns the first label that disqualifies an image.
func Screen(labels []Label) (Label, bool) {
	for _, label := range labels {
		if label.Confidence <= MinConfidence {
			continue
		}
		name := strings.ToLower(label.Name)
		for _, term := range blockedTerms {
			if strings.Contains(name, term) {
				return label, true
			}
		}
	}
	return Label{}, false
}

// RejectionReason is the user-facing explanation for a disqualifying label.
func RejectionReason(label Label) string {
	return fmt.Sprintf("Image contains inappropriate content: %s (confidence: %.1f%%)", label.Name, label.Confidence)
}
