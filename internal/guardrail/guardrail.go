// Package guardrail resolves the content policy the classifier can be asked
// to enforce, creating it on first use.
package guardrail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNotConfigured means no policy could be found or created.
var ErrNotConfigured = errors.New("content policy not configured")

type Category string

const (
	CategorySexual     Category = "SEXUAL"
	CategoryViolence   Category = "VIOLENCE"
	CategoryHate       Category = "HATE"
	CategoryInsults    Category = "INSULTS"
	CategoryMisconduct Category = "MISCONDUCT"
)

type Strength string

const (
	StrengthHigh   Strength = "HIGH"
	StrengthMedium Strength = "MEDIUM"
	StrengthLow    Strength = "LOW"
)

const DefaultVersion = "DRAFT"

type Rule struct {
	Category Category `json:"category"`
	Strength Strength `json:"strength"`
}

// Policy is everything needed to create a policy in a registry.
type Policy struct {
	Name                 string
	Description          string
	Rules                []Rule
	BlockedInputMessage  string
	BlockedOutputMessage string
}

// Binding references a policy by identifier and version.
type Binding struct {
	ID      string
	Version string
}

// Summary is one entry of a registry listing.
type Summary struct {
	Name string
	Binding
}

// Registry is the store of named policies.
type Registry interface {
	List(ctx context.Context) ([]Summary, error)
	Create(ctx context.Context, policy Policy) (Binding, error)
}

func DefaultRules() []Rule {
	return []Rule{
		{Category: CategorySexual, Strength: StrengthHigh},
		{Category: CategoryViolence, Strength: StrengthHigh},
		{Category: CategoryHate, Strength: StrengthHigh},
		{Category: CategoryInsults, Strength: StrengthMedium},
		{Category: CategoryMisconduct, Strength: StrengthMedium},
	}
}

func DefaultPolicy(name, description string) Policy {
	return Policy{
		Name:                 name,
		Description:          description,
		Rules:                DefaultRules(),
		BlockedInputMessage:  "This image contains inappropriate content and cannot be processed.",
		BlockedOutputMessage: "Response blocked due to content policy.",
	}
}

func (p Policy) Validate() error {
	if p.Name == "" {
		return errors.New("policy name cannot be empty")
	}
	if len(p.Rules) == 0 {
		return errors.New("policy needs at least one rule")
	}
	if p.BlockedInputMessage == "" || p.BlockedOutputMessage == "" {
		return errors.New("policy block messages cannot be empty")
	}
	return nil
}

// Provisioner finds or creates one named policy and remembers the result for
// the life of the process. Failed attempts are not remembered.
type Provisioner struct {
	registry Registry
	policy   Policy
	version  string
	log      zerolog.Logger

	mu      sync.Mutex
	binding *Binding
}

func NewProvisioner(registry Registry, policy Policy, version string, log zerolog.Logger) *Provisioner {
	if version == "" {
		version = DefaultVersion
	}
	return &Provisioner{
		registry: registry,
		policy:   policy,
		version:  version,
		log:      log.With().Str("component", "guardrail").Str("policy", policy.Name).Logger(),
	}
}

func (p *Provisioner) Resolve(ctx context.Context) (Binding, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.binding != nil {
		return *p.binding, nil
	}

	if err := p.policy.Validate(); err != nil {
		return Binding{}, fmt.Errorf("%w: %w", ErrNotConfigured, err)
	}

	binding, err := p.findOrCreate(ctx)
	if err != nil {
		return Binding{}, err
	}

	p.binding = &binding
	return binding, nil
}

func (p *Provisioner) findOrCreate(ctx context.Context) (Binding, error) {
	existing, err := p.registry.List(ctx)
	if err != nil {
		// Fall through to create; a registry that can't list may still accept writes.
		p.log.Warn().Err(err).Msg("policy lookup failed")
	}
	for _, s := range existing {
		if s.Name == p.policy.Name {
			p.log.Debug().Str("policy_id", s.ID).Msg("found existing policy")
			return Binding{ID: s.ID, Version: p.version}, nil
		}
	}

	created, err := p.registry.Create(ctx, p.policy)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: create %s: %w", ErrNotConfigured, p.policy.Name, err)
	}

	p.log.Info().Str("policy_id", created.ID).Msg("created policy")
	return Binding{ID: created.ID, Version: p.version}, nil
}
