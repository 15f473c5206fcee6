package tests

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail"
)

// RunRegistryTests expects an empty registry before every test; teardown is
// called after each one to get back to that state.
func RunRegistryTests(t *testing.T, r guardrail.Registry, teardown func()) {
	for _, tf := range []func(t *testing.T, r guardrail.Registry){
		testListEmpty,
		testCreateThenList,
		testCreateRejectsInvalidPolicy,
		testProvisionerFindsBeforeCreating,
		testProvisionerReusesExisting,
	} {
		tf(t, r)
		teardown()
	}
}

func testListEmpty(t *testing.T, r guardrail.Registry) {
	t.Run("List empty", func(t *testing.T) {
		summaries, err := r.List(context.Background())
		require.NoError(t, err)
		require.Empty(t, summaries)
	})
}

func testCreateThenList(t *testing.T, r guardrail.Registry) {
	t.Run("Create then list", func(t *testing.T) {
		ctx := context.Background()

		binding, err := r.Create(ctx, guardrail.DefaultPolicy("cat-validator-guardrail", "test policy"))
		require.NoError(t, err)
		require.NotEmpty(t, binding.ID)

		summaries, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		require.Equal(t, "cat-validator-guardrail", summaries[0].Name)
		require.Equal(t, binding.ID, summaries[0].ID)
	})
}

func testCreateRejectsInvalidPolicy(t *testing.T, r guardrail.Registry) {
	t.Run("Create rejects invalid policy", func(t *testing.T) {
		_, err := r.Create(context.Background(), guardrail.Policy{Name: "no-rules"})
		require.Error(t, err)
	})
}

func testProvisionerFindsBeforeCreating(t *testing.T, r guardrail.Registry) {
	t.Run("Provisioner resolves to one identifier", func(t *testing.T) {
		ctx := context.Background()
		policy := guardrail.DefaultPolicy("cat-validator-nova", "test policy")

		first, err := guardrail.NewProvisioner(r, policy, "", zerolog.Nop()).Resolve(ctx)
		require.NoError(t, err)
		require.Equal(t, guardrail.DefaultVersion, first.Version)

		// A second process starting later must find the policy instead of
		// creating another one.
		second, err := guardrail.NewProvisioner(r, policy, "", zerolog.Nop()).Resolve(ctx)
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)

		summaries, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
	})
}

func testProvisionerReusesExisting(t *testing.T, r guardrail.Registry) {
	t.Run("Provisioner picks the exact name match", func(t *testing.T) {
		ctx := context.Background()

		other, err := r.Create(ctx, guardrail.DefaultPolicy("cat-validator-guardrail-old", "other"))
		require.NoError(t, err)
		wanted, err := r.Create(ctx, guardrail.DefaultPolicy("cat-validator-guardrail", "wanted"))
		require.NoError(t, err)

		binding, err := guardrail.NewProvisioner(r, guardrail.DefaultPolicy("cat-validator-guardrail", "wanted"), "", zerolog.Nop()).Resolve(ctx)
		require.NoError(t, err)
		require.Equal(t, wanted.ID, binding.ID)
		require.NotEqual(t, other.ID, binding.ID)
	})
}

// SamplePolicy is the policy the service creates by default.
func SamplePolicy() guardrail.Policy {
	return guardrail.DefaultPolicy("cat-validator-guardrail", "Content filter for cat image validator")
}
