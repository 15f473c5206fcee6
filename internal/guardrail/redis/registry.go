// Package redis keeps content policies in a redis hash. It stands in for the
// Bedrock registry when running against local infrastructure.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/cache"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/ids"
)

type record struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Version              string           `json:"version"`
	Description          string           `json:"description,omitempty"`
	Rules                []guardrail.Rule `json:"rules"`
	BlockedInputMessage  string           `json:"blockedInputMessage"`
	BlockedOutputMessage string           `json:"blockedOutputMessage"`
	CreatedAt            time.Time        `json:"createdAt"`
}

type Registry struct {
	client *redis.Client
	key    string
}

func NewRegistry(client *redis.Client, prefix string) *Registry {
	return &Registry{client: client, key: cache.Key(prefix, "guardrails")}
}

func (r *Registry) List(ctx context.Context) ([]guardrail.Summary, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", r.key, err)
	}

	summaries := make([]guardrail.Summary, 0, len(values))
	for name, raw := range values {
		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode policy %s: %w", name, err)
		}
		summaries = append(summaries, guardrail.Summary{
			Name:    rec.Name,
			Binding: guardrail.Binding{ID: rec.ID, Version: rec.Version},
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// Create stores policy under its name. When another writer got there first
// the existing identifier is returned, so racing creators converge.
func (r *Registry) Create(ctx context.Context, policy guardrail.Policy) (guardrail.Binding, error) {
	if err := policy.Validate(); err != nil {
		return guardrail.Binding{}, err
	}

	rec := record{
		ID:                   ids.New(),
		Name:                 policy.Name,
		Version:              guardrail.DefaultVersion,
		Description:          policy.Description,
		Rules:                policy.Rules,
		BlockedInputMessage:  policy.BlockedInputMessage,
		BlockedOutputMessage: policy.BlockedOutputMessage,
		CreatedAt:            time.Now().UTC(),
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return guardrail.Binding{}, fmt.Errorf("encode policy: %w", err)
	}

	created, err := r.client.HSetNX(ctx, r.key, policy.Name, payload).Result()
	if err != nil {
		return guardrail.Binding{}, fmt.Errorf("hsetnx %s: %w", r.key, err)
	}
	if created {
		return guardrail.Binding{ID: rec.ID, Version: rec.Version}, nil
	}

	raw, err := r.client.HGet(ctx, r.key, policy.Name).Result()
	if err != nil {
		return guardrail.Binding{}, fmt.Errorf("hget %s: %w", r.key, err)
	}
	var existing record
	if err := json.Unmarshal([]byte(raw), &existing); err != nil {
		return guardrail.Binding{}, fmt.Errorf("decode policy %s: %w", policy.Name, err)
	}
	return guardrail.Binding{ID: existing.ID, Version: existing.Version}, nil
}
