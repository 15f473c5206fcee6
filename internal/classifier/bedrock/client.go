package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/classifier"
)

// Client runs prompts through Amazon Bedrock's InvokeModel API.
type Client struct {
	api *bedrockruntime.Client
}

func NewClient(cfg aws.Config) *Client {
	return &Client{api: bedrockruntime.NewFromConfig(cfg)}
}

func (c *Client) Ask(ctx context.Context, p classifier.Prompt) (classifier.Answer, error) {
	if p.ModelID == "" {
		return classifier.Answer{}, errors.New("model id cannot be empty")
	}
	if len(p.Image) == 0 {
		return classifier.Answer{}, errors.New("image cannot be empty")
	}

	body, err := buildBody(p)
	if err != nil {
		return classifier.Answer{}, fmt.Errorf("marshal request: %w", err)
	}

	input := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.ModelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	}
	if p.Guardrail != nil {
		input.GuardrailIdentifier = aws.String(p.Guardrail.ID)
		input.GuardrailVersion = aws.String(p.Guardrail.Version)
	}

	out, err := c.api.InvokeModel(ctx, input)
	if err != nil {
		if reason, ok := blockedByPolicy(err); ok {
			return classifier.Blocked(reason), nil
		}
		return classifier.Answer{}, fmt.Errorf("invoke model %s: %w", p.ModelID, err)
	}

	answer, err := parseBody(p.ModelID, out.Body)
	if err != nil {
		return classifier.Answer{}, fmt.Errorf("decode %s response: %w", p.ModelID, err)
	}
	return answer, nil
}

var blockMarkers = []string{"blocked", "guardrail", "content filter", "inappropriate content"}

// blockedByPolicy reports whether err is the service refusing the request on
// content grounds. Model-side filters surface as a ValidationException rather
// than a guardrail intervention in the response body.
func blockedByPolicy(err error) (string, bool) {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorCode() != "ValidationException" {
		return "", false
	}
	msg := strings.ToLower(apiErr.ErrorMessage())
	for _, marker := range blockMarkers {
		if strings.Contains(msg, marker) {
			return apiErr.ErrorMessage(), true
		}
	}
	return "", false
}
