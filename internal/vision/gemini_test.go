package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/config"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
)

func geminiTextResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": text}},
			},
		}},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func testVisionConfig(endpoint string) config.VisionConfig {
	return config.VisionConfig{
		APIKey:    "test-key",
		Model:     "gemini-1.5-flash",
		Endpoint:  endpoint,
		Timeout:   5 * time.Second,
		RateLimit: 100,
	}
}

func TestGeminiClientIdentify(t *testing.T) {
	answer := `{"product_name":"Sony WH-1000XM5","brand":"Sony","category":"headphones",` +
		`"features":["noise cancelling"],"search_keywords":["sony","wh-1000xm5"],"confidence":"high"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "models/gemini-1.5-flash")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.NotEmpty(t, req.Contents[0].Parts[0].Text)
		require.NotNil(t, req.Contents[0].Parts[1].InlineData)
		assert.Equal(t, "image/jpeg", req.Contents[0].Parts[1].InlineData.MimeType)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiTextResponse(answer)))
	}))
	defer server.Close()

	client := NewGeminiClient(testVisionConfig(server.URL), logger.NewNoOp())

	identification, err := client.Identify(context.Background(), []byte("fake-image"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Sony WH-1000XM5", identification.ProductName)
	assert.Equal(t, "Sony", identification.Brand)
	assert.Equal(t, domain.ConfidenceHigh, identification.Confidence)
	assert.Equal(t, "sony wh-1000xm5", identification.SearchQuery())
}

func TestGeminiClientIdentifyFencedJSON(t *testing.T) {
	answer := "```json\n{\"product_name\":\"Running Shoes\",\"confidence\":\"medium\"}\n```"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(geminiTextResponse(answer)))
	}))
	defer server.Close()

	client := NewGeminiClient(testVisionConfig(server.URL), logger.NewNoOp())

	identification, err := client.Identify(context.Background(), []byte("img"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "Running Shoes", identification.ProductName)
	assert.Equal(t, domain.ConfidenceMedium, identification.Confidence)
}

func TestGeminiClientIdentifyDisabled(t *testing.T) {
	cfg := testVisionConfig("http://unused")
	cfg.APIKey = ""

	client := NewGeminiClient(cfg, logger.NewNoOp())

	_, err := client.Identify(context.Background(), []byte("img"), "image/png")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestGeminiClientIdentifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewGeminiClient(testVisionConfig(server.URL), logger.NewNoOp())

	_, err := client.Identify(context.Background(), []byte("img"), "image/png")
	assert.Error(t, err)
}

func TestGeminiClientIdentifyUnparseableAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(geminiTextResponse("I cannot tell what this product is.")))
	}))
	defer server.Close()

	client := NewGeminiClient(testVisionConfig(server.URL), logger.NewNoOp())

	_, err := client.Identify(context.Background(), []byte("img"), "image/png")
	assert.ErrorIs(t, err, ErrIdentificationFailed)
}

func TestParseIdentificationDefaultsConfidence(t *testing.T) {
	identification, err := parseIdentification(`{"product_name":"Lamp"}`)
	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceLow, identification.Confidence)
}
