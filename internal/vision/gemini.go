package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/config"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
)

// identificationPrompt asks the model for a structured product description.
const identificationPrompt = `Analyze this product image and respond with JSON only, using these keys:
{
  "product_name": "...",
  "brand": "...",
  "category": "...",
  "features": ["...", "..."],
  "search_keywords": ["...", "..."],
  "confidence": "high/medium/low"
}
If you cannot identify the product clearly, return confidence as "low".`

// maxResponseBytes limits the size of an identification response body.
const maxResponseBytes = 1 << 20

// GeminiClient implements Identifier against the Gemini generateContent API.
type GeminiClient struct {
	cfg        config.VisionConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Interface
}

// NewGeminiClient creates a Gemini-backed identifier.
func NewGeminiClient(cfg config.VisionConfig, log logger.Interface) *GeminiClient {
	return &GeminiClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:     log.WithComponent("vision"),
	}
}

// Request/response shapes for the generateContent endpoint.

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Identify derives a product description from image bytes.
func (c *GeminiClient) Identify(
	ctx context.Context, imageData []byte, mimeType string,
) (*domain.ProductIdentification, error) {
	if !c.cfg.Enabled() {
		return nil, ErrDisabled
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: identificationPrompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(imageData),
				}},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.cfg.Endpoint, c.cfg.Model, c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identification request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identification request returned status %d", resp.StatusCode)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	text := candidateText(&geminiResp)
	if text == "" {
		return nil, ErrIdentificationFailed
	}

	identification, err := parseIdentification(text)
	if err != nil {
		c.logger.Warn("unparseable identification response", "error", err.Error())
		return nil, ErrIdentificationFailed
	}

	c.logger.Info("product identified",
		"product_name", identification.ProductName,
		"confidence", string(identification.Confidence),
	)

	return identification, nil
}

// candidateText extracts the first candidate's text from a response.
func candidateText(resp *geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// parseIdentification decodes the model's JSON answer, tolerating markdown
// code fences around the payload.
func parseIdentification(text string) (*domain.ProductIdentification, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var identification domain.ProductIdentification
	if err := json.Unmarshal([]byte(cleaned), &identification); err != nil {
		return nil, fmt.Errorf("invalid identification payload: %w", err)
	}

	if identification.ProductName == "" {
		return nil, fmt.Errorf("identification payload missing product name")
	}
	if identification.Confidence == "" {
		identification.Confidence = domain.ConfidenceLow
	}

	return &identification, nil
}
