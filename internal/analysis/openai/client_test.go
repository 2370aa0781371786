package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/legal-lab/internal/analysis"
	"github.com/JaimeStill/legal-lab/internal/config"
	"github.com/JaimeStill/legal-lab/internal/normalize"
	"github.com/JaimeStill/legal-lab/pkg/logging"
)

type capturedRequest struct {
	Auth string
	Body map[string]any
}

func newTestClient(t *testing.T, status int, body string) (*Client, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Auth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &captured.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.AnalysisConfig{
		BaseURL:   srv.URL + "/v1",
		Model:     "test-model",
		Timeout:   "5s",
		MaxTokens: 512,
	}
	return New(cfg, logging.Discard()), captured
}

func completion(content string) string {
	resp := map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"model":   "test-model",
		"choices": []any{map[string]any{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
		"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestAnalyze_TextPayload(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, completion(`{"isLegalDocument": true, "summary": "A lease."}`))

	payload := normalize.Payload{Content: "This lease is made...", Encoding: normalize.EncodingText, MediaType: "text/plain"}
	result, err := client.Analyze(context.Background(), payload, "secret-key")
	require.NoError(t, err)

	assert.True(t, result.IsLegalDocument)
	assert.Equal(t, "A lease.", result.Summary)
	assert.Equal(t, "Bearer secret-key", captured.Auth)
	assert.Equal(t, "test-model", captured.Body["model"])
	assert.EqualValues(t, 512, captured.Body["max_completion_tokens"])

	format := captured.Body["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])

	messages := captured.Body["messages"].([]any)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)
	assert.Contains(t, user["content"], "This lease is made...")
}

func TestAnalyze_BinaryPayloadUsesDataURI(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, completion(`{"isLegalDocument": false}`))

	payload := normalize.Payload{Content: "QUJD", Encoding: normalize.EncodingBase64, MediaType: "application/pdf"}
	result, err := client.Analyze(context.Background(), payload, "k")
	require.NoError(t, err)
	assert.False(t, result.IsLegalDocument)

	messages := captured.Body["messages"].([]any)
	parts := messages[1].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)

	image := parts[1].(map[string]any)
	assert.Equal(t, "image_url", image["type"])
	assert.Equal(t, "data:application/pdf;base64,QUJD", image["image_url"].(map[string]any)["url"])
}

func TestAnalyze_ProviderError(t *testing.T) {
	client, _ := newTestClient(t, http.StatusUnauthorized, `{"error": {"message": "API key not valid", "type": "invalid_request_error"}}`)

	_, err := client.Analyze(context.Background(), normalize.Payload{Content: "x", Encoding: normalize.EncodingText}, "bad")
	require.ErrorIs(t, err, analysis.ErrAIInvocation)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestAnalyze_MalformedContent(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, completion(`I cannot help with that.`))

	_, err := client.Analyze(context.Background(), normalize.Payload{Content: "x", Encoding: normalize.EncodingText}, "k")
	assert.ErrorIs(t, err, analysis.ErrMalformedResponse)
}

func TestAnalyze_NoChoices(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{"id": "x", "choices": []}`)

	_, err := client.Analyze(context.Background(), normalize.Payload{Content: "x", Encoding: normalize.EncodingText}, "k")
	assert.ErrorIs(t, err, analysis.ErrMalformedResponse)
}
