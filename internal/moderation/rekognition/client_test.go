package rekognition

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/awsconfig"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/moderation"
)

type detectRequest struct {
	Image struct {
		Bytes string
	}
	MinConfidence float64
}

func createMockServer(t *testing.T, status int, response any, captured *detectRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RekognitionService.DetectModerationLabels", r.Header.Get("X-Amz-Target"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(response)
	}))
}

func TestDetectModerationLabels(t *testing.T) {
	var req detectRequest
	server := createMockServer(t, http.StatusOK, map[string]any{
		"ModerationLabels": []map[string]any{
			{"Name": "Explicit Nudity", "ParentName": "", "Confidence": 87.3},
			{"Name": "Nudity", "ParentName": "Explicit Nudity", "Confidence": 60.1},
		},
		"ModerationModelVersion": "7.0",
	}, &req)
	defer server.Close()

	client := NewClient(awsconfig.ForEndpoint(server.URL))

	labels, err := client.DetectModerationLabels(context.Background(), []byte("image-bytes"))
	require.NoError(t, err)
	require.Len(t, labels, 2)

	assert.Equal(t, "Explicit Nudity", labels[0].Name)
	assert.InDelta(t, 87.3, labels[0].Confidence, 0.001)
	assert.Equal(t, "Explicit Nudity", labels[1].ParentName)

	assert.Equal(t, moderation.MinConfidence, req.MinConfidence)
	decoded, err := base64.StdEncoding.DecodeString(req.Image.Bytes)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(decoded))

	label, flagged := moderation.Screen(labels)
	require.True(t, flagged)
	assert.Equal(t, "Image contains inappropriate content: Explicit Nudity (confidence: 87.3%)", moderation.RejectionReason(label))
}

func TestDetectModerationLabelsEmpty(t *testing.T) {
	server := createMockServer(t, http.StatusOK, map[string]any{"ModerationLabels": []any{}}, nil)
	defer server.Close()

	client := NewClient(awsconfig.ForEndpoint(server.URL))

	labels, err := client.DetectModerationLabels(context.Background(), []byte("image-bytes"))
	require.NoError(t, err)
	require.Empty(t, labels)
}

func TestDetectModerationLabelsServiceError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"__type":  "InvalidImageFormatException",
			"message": "Request has invalid image format",
		})
	}))
	defer server.Close()

	client := NewClient(awsconfig.ForEndpoint(server.URL))

	_, err := client.DetectModerationLabels(context.Background(), []byte("image-bytes"))
	require.Error(t, err)
	assert.Equal(t, "InvalidImageFormatException", awsconfig.ErrorCode(err))
	assert.Equal(t, 1, calls)
}

func TestDetectModerationLabelsRejectsEmptyImage(t *testing.T) {
	client := NewClient(awsconfig.ForEndpoint("http://127.0.0.1:1"))

	_, err := client.DetectModerationLabels(context.Background(), nil)
	require.Error(t, err)
}
