package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrock/types"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail"
)

// Registry keeps policies as Amazon Bedrock Guardrails.
type Registry struct {
	api *bedrock.Client
}

func NewRegistry(cfg aws.Config) *Registry {
	return &Registry{api: bedrock.NewFromConfig(cfg)}
}

func (r *Registry) List(ctx context.Context) ([]guardrail.Summary, error) {
	var (
		summaries []guardrail.Summary
		token     *string
	)
	for {
		out, err := r.api.ListGuardrails(ctx, &bedrock.ListGuardrailsInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("list guardrails: %w", err)
		}
		for _, g := range out.Guardrails {
			summaries = append(summaries, guardrail.Summary{
				Name: aws.ToString(g.Name),
				Binding: guardrail.Binding{
					ID:      aws.ToString(g.Id),
					Version: aws.ToString(g.Version),
				},
			})
		}
		if aws.ToString(out.NextToken) == "" {
			return summaries, nil
		}
		token = out.NextToken
	}
}

func (r *Registry) Create(ctx context.Context, policy guardrail.Policy) (guardrail.Binding, error) {
	if err := policy.Validate(); err != nil {
		return guardrail.Binding{}, err
	}

	filters := make([]types.GuardrailContentFilterConfig, 0, len(policy.Rules))
	for _, rule := range policy.Rules {
		filters = append(filters, types.GuardrailContentFilterConfig{
			Type:             types.GuardrailContentFilterType(rule.Category),
			InputStrength:    types.GuardrailFilterStrength(rule.Strength),
			OutputStrength:   types.GuardrailFilterStrength(rule.Strength),
			InputModalities:  []types.GuardrailModality{types.GuardrailModality("TEXT"), types.GuardrailModality("IMAGE")},
			OutputModalities: []types.GuardrailModality{types.GuardrailModality("TEXT")},
		})
	}

	input := &bedrock.CreateGuardrailInput{
		Name:                    aws.String(policy.Name),
		BlockedInputMessaging:   aws.String(policy.BlockedInputMessage),
		BlockedOutputsMessaging: aws.String(policy.BlockedOutputMessage),
		ContentPolicyConfig: &types.GuardrailContentPolicyConfig{
			FiltersConfig: filters,
		},
	}
	if policy.Description != "" {
		input.Description = aws.String(policy.Description)
	}

	out, err := r.api.CreateGuardrail(ctx, input)
	if err != nil {
		return guardrail.Binding{}, fmt.Errorf("create guardrail %s: %w", policy.Name, err)
	}

	version := aws.ToString(out.Version)
	if version == "" {
		version = guardrail.DefaultVersion
	}
	return guardrail.Binding{ID: aws.ToString(out.GuardrailId), Version: version}, nil
}
