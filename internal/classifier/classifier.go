// Package classifier asks a vision-language model yes/no questions about an image.
package classifier

import (
	"context"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail"
)

const (
	SafetyQuestion = "IMPORTANT: Does this image contain Nazi symbols, swastikas, hate symbols, pornography, or violence? Be very strict. Answer only 'YES' if inappropriate or 'NO' if safe."
	CatQuestion    = "Is there a cat in this image? Answer only 'yes' or 'no'."
)

// DefaultBlockReason is reported when the service blocks a request without
// saying why.
const DefaultBlockReason = "Image blocked by content filters."

type Prompt struct {
	Image    []byte
	MIME     string
	Question string
	ModelID  string

	MaxTokens int
	// Nil leaves the model's default in place.
	Temperature *float32
	TopP        *float32

	// Guardrail, when set, asks the service to apply a content policy to the call.
	Guardrail *guardrail.Binding
}

// Answer is what came back from a call that reached the model. Either the
// model completed with Text or the service's content policy intervened.
// Transport failures are returned as errors instead.
type Answer struct {
	Text        string
	Blocked     bool
	BlockReason string
}

func Completed(text string) Answer {
	return Answer{Text: text}
}

func Blocked(reason string) Answer {
	if reason == "" {
		reason = DefaultBlockReason
	}
	return Answer{Blocked: true, BlockReason: reason}
}

type Classifier interface {
	Ask(ctx context.Context, prompt Prompt) (Answer, error)
}

// FormatFor maps a MIME type to the image format tag models expect.
func FormatFor(mime string) string {
	if mime == "image/png" {
		return "png"
	}
	return "jpeg"
}

// MediaTypeFor normalises the MIME type sent alongside base64 image data.
func MediaTypeFor(mime string) string {
	return "image/" + FormatFor(mime)
}
