package bedrock

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/classifier"
)

const (
	anthropicVersion    = "bedrock-2023-05-31"
	guardrailIntervened = "guardrail_intervened"
	actionIntervened    = "INTERVENED"
)

var errNoText = errors.New("model returned no text")

type family int

const (
	familyNova family = iota
	familyAnthropic
)

func familyOf(modelID string) family {
	if strings.Contains(modelID, "anthropic.") {
		return familyAnthropic
	}
	return familyNova
}

// Anthropic Messages API on Bedrock.

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      *float32           `json:"temperature,omitempty"`
	TopP             *float32           `json:"top_p,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason      string `json:"stop_reason"`
	GuardrailAction string `json:"amazon-bedrock-guardrailAction"`
}

// Amazon Nova messages schema.

type novaRequest struct {
	Messages        []novaMessage       `json:"messages"`
	InferenceConfig novaInferenceConfig `json:"inferenceConfig"`
}

type novaMessage struct {
	Role    string        `json:"role"`
	Content []novaContent `json:"content"`
}

type novaContent struct {
	Image *novaImage `json:"image,omitempty"`
	Text  string     `json:"text,omitempty"`
}

type novaImage struct {
	Format string          `json:"format"`
	Source novaImageSource `json:"source"`
}

type novaImageSource struct {
	Bytes string `json:"bytes"`
}

type novaInferenceConfig struct {
	MaxTokens   int      `json:"maxTokens,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	TopP        *float32 `json:"topP,omitempty"`
}

type novaResponse struct {
	Output struct {
		Message struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"message"`
	} `json:"output"`
	StopReason      string `json:"stopReason"`
	GuardrailAction string `json:"amazon-bedrock-guardrailAction"`
}

func buildBody(p classifier.Prompt) ([]byte, error) {
	encoded := base64.StdEncoding.EncodeToString(p.Image)

	if familyOf(p.ModelID) == familyAnthropic {
		return json.Marshal(anthropicRequest{
			AnthropicVersion: anthropicVersion,
			MaxTokens:        p.MaxTokens,
			Temperature:      p.Temperature,
			TopP:             p.TopP,
			Messages: []anthropicMessage{{
				Role: "user",
				Content: []anthropicContent{
					{
						Type: "image",
						Source: &anthropicSource{
							Type:      "base64",
							MediaType: classifier.MediaTypeFor(p.MIME),
							Data:      encoded,
						},
					},
					{Type: "text", Text: p.Question},
				},
			}},
		})
	}

	return json.Marshal(novaRequest{
		Messages: []novaMessage{{
			Role: "user",
			Content: []novaContent{
				{Image: &novaImage{
					Format: classifier.FormatFor(p.MIME),
					Source: novaImageSource{Bytes: encoded},
				}},
				{Text: p.Question},
			},
		}},
		InferenceConfig: novaInferenceConfig{
			MaxTokens:   p.MaxTokens,
			Temperature: p.Temperature,
			TopP:        p.TopP,
		},
	})
}

func parseBody(modelID string, body []byte) (classifier.Answer, error) {
	var (
		texts      []string
		stopReason string
		action     string
	)

	if familyOf(modelID) == familyAnthropic {
		var resp anthropicResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return classifier.Answer{}, err
		}
		for _, c := range resp.Content {
			if c.Type == "" || c.Type == "text" {
				texts = append(texts, c.Text)
			}
		}
		stopReason, action = resp.StopReason, resp.GuardrailAction
	} else {
		var resp novaResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return classifier.Answer{}, err
		}
		for _, c := range resp.Output.Message.Content {
			texts = append(texts, c.Text)
		}
		stopReason, action = resp.StopReason, resp.GuardrailAction
	}

	text := ""
	if len(texts) > 0 {
		text = strings.TrimSpace(texts[0])
	}

	if action == actionIntervened || stopReason == guardrailIntervened {
		return classifier.Blocked(text), nil
	}
	if len(texts) == 0 {
		return classifier.Answer{}, errNoText
	}
	return classifier.Completed(text), nil
}
