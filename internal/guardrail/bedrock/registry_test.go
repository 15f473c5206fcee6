package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/awsconfig"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail/tests"
)

type createRequest struct {
	Name                    string `json:"name"`
	Description             string `json:"description"`
	BlockedInputMessaging   string `json:"blockedInputMessaging"`
	BlockedOutputsMessaging string `json:"blockedOutputsMessaging"`
	ContentPolicyConfig     struct {
		FiltersConfig []struct {
			Type            string   `json:"type"`
			InputStrength   string   `json:"inputStrength"`
			OutputStrength  string   `json:"outputStrength"`
			InputModalities []string `json:"inputModalities"`
		} `json:"filtersConfig"`
	} `json:"contentPolicyConfig"`
}

type guardrailSummary struct {
	ID      string `json:"id"`
	Arn     string `json:"arn"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

// controlPlane is a stand-in for the Bedrock guardrail endpoints. Listing is
// served one entry per page to exercise pagination.
type controlPlane struct {
	t        *testing.T
	mu       sync.Mutex
	items    []guardrailSummary
	requests []createRequest
}

func (c *controlPlane) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/guardrails":
		start := 0
		if tok := r.URL.Query().Get("nextToken"); tok != "" {
			start, _ = strconv.Atoi(tok)
		}
		resp := map[string]any{"guardrails": []guardrailSummary{}}
		if start < len(c.items) {
			resp["guardrails"] = c.items[start : start+1]
			if start+1 < len(c.items) {
				resp["nextToken"] = strconv.Itoa(start + 1)
			}
		}
		json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodPost && r.URL.Path == "/guardrails":
		var req createRequest
		if !assert.NoError(c.t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, item := range c.items {
			if item.Name == req.Name {
				w.Header().Set("X-Amzn-ErrorType", "ConflictException")
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(map[string]string{"message": "guardrail name already exists"})
				return
			}
		}

		c.requests = append(c.requests, req)
		id := fmt.Sprintf("gr%04d", len(c.requests))
		c.items = append(c.items, guardrailSummary{
			ID:      id,
			Arn:     "arn:aws:bedrock:us-east-1:000000000000:guardrail/" + id,
			Name:    req.Name,
			Status:  "READY",
			Version: "DRAFT",
		})
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"guardrailId":  id,
			"guardrailArn": "arn:aws:bedrock:us-east-1:000000000000:guardrail/" + id,
			"version":      "DRAFT",
		})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (c *controlPlane) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.requests = nil
}

func TestBedrockRegistry(t *testing.T) {
	plane := &controlPlane{t: t}
	server := httptest.NewServer(plane)
	defer server.Close()

	registry := NewRegistry(awsconfig.ForEndpoint(server.URL))
	tests.RunRegistryTests(t, registry, plane.reset)
}

func TestCreateSendsContentFilters(t *testing.T) {
	plane := &controlPlane{t: t}
	server := httptest.NewServer(plane)
	defer server.Close()

	registry := NewRegistry(awsconfig.ForEndpoint(server.URL))

	policy := tests.SamplePolicy()
	binding, err := registry.Create(context.Background(), policy)
	require.NoError(t, err)
	assert.Equal(t, "gr0001", binding.ID)
	assert.Equal(t, "DRAFT", binding.Version)

	require.Len(t, plane.requests, 1)
	req := plane.requests[0]
	assert.Equal(t, policy.Name, req.Name)
	assert.Equal(t, policy.BlockedInputMessage, req.BlockedInputMessaging)
	assert.Equal(t, policy.BlockedOutputMessage, req.BlockedOutputsMessaging)

	filters := req.ContentPolicyConfig.FiltersConfig
	require.Len(t, filters, len(policy.Rules))
	for i, rule := range policy.Rules {
		assert.Equal(t, string(rule.Category), filters[i].Type)
		assert.Equal(t, string(rule.Strength), filters[i].InputStrength)
		assert.Equal(t, string(rule.Strength), filters[i].OutputStrength)
		assert.ElementsMatch(t, []string{"TEXT", "IMAGE"}, filters[i].InputModalities)
	}
}

func TestListPaginates(t *testing.T) {
	plane := &controlPlane{t: t}
	server := httptest.NewServer(plane)
	defer server.Close()

	plane.items = []guardrailSummary{
		{ID: "a", Name: "first", Version: "DRAFT"},
		{ID: "b", Name: "second", Version: "DRAFT"},
		{ID: "c", Name: "third", Version: "1"},
	}

	registry := NewRegistry(awsconfig.ForEndpoint(server.URL))

	summaries, err := registry.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "third", summaries[2].Name)
	assert.Equal(t, "c", summaries[2].ID)
	assert.Equal(t, "1", summaries[2].Version)
}
