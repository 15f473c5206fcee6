package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/ids"
)

var ErrConflict = errors.New("policy with this name already exists")

type entry struct {
	summary guardrail.Summary
	policy  guardrail.Policy
}

type Registry struct {
	mu        sync.Mutex
	entries   []entry
	creates   int
	listErr   error
	createErr error
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) List(ctx context.Context) ([]guardrail.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listErr != nil {
		return nil, r.listErr
	}

	out := make([]guardrail.Summary, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.summary)
	}
	return out, nil
}

func (r *Registry) Create(ctx context.Context, policy guardrail.Policy) (guardrail.Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creates++
	if r.createErr != nil {
		return guardrail.Binding{}, r.createErr
	}
	if err := policy.Validate(); err != nil {
		return guardrail.Binding{}, err
	}
	for _, e := range r.entries {
		if e.summary.Name == policy.Name {
			return guardrail.Binding{}, fmt.Errorf("%w: %s", ErrConflict, policy.Name)
		}
	}

	binding := guardrail.Binding{ID: ids.New(), Version: guardrail.DefaultVersion}
	r.entries = append(r.entries, entry{
		summary: guardrail.Summary{Name: policy.Name, Binding: binding},
		policy:  policy,
	})
	return binding, nil
}

// Creates counts Create calls, successful or not.
func (r *Registry) Creates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates
}

func (r *Registry) FailList(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErr = err
}

func (r *Registry) FailCreate(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createErr = err
}

func (r *Registry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.creates = 0
	r.listErr = nil
	r.createErr = nil
}
