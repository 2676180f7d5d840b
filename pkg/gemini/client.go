package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// SharedTransport is a reusable HTTP transport with connection pooling
// shared by every model client the process constructs.
var SharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// APIError is a non-2xx answer from the Gemini API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error: %d - %s", e.StatusCode, e.Body)
}

// ClientConfig configures a model client.
type ClientConfig struct {
	APIKey  string
	BaseURL string        // defaults to the public generativelanguage endpoint
	Timeout time.Duration // zero means no client-side timeout
}

// Client is a handle on one Gemini model. Construct through NewClient (or a
// ClientCache) and reuse; the underlying HTTP client pools connections.
type Client struct {
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the given model name. Names may be given
// bare ("gemini-2.0-flash") or fully qualified ("models/gemini-2.0-flash").
func NewClient(model string, config ClientConfig) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		model:   model,
		apiKey:  config.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Transport: SharedTransport,
			Timeout:   config.Timeout,
		},
	}
}

// Model returns the model name this client was constructed for.
func (c *Client) Model() string {
	return c.model
}

// GenerateContent issues a single generateContent call for the given prompt.
// The prompt is sent as one user message; cfg may be nil.
func (c *Client) GenerateContent(ctx context.Context, prompt string, cfg *GenerationConfig) (*GenerateContentResponse, error) {
	requestBody := GenerateContentRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: prompt}}},
		},
		GenerationConfig: cfg,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.qualifiedModel(), c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(responseBody)}
	}

	var apiResp GenerateContentResponse
	if err := json.Unmarshal(responseBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}
	return &apiResp, nil
}

// qualifiedModel returns the model name with the "models/" prefix the
// generateContent route expects.
func (c *Client) qualifiedModel() string {
	if strings.Contains(c.model, "/") {
		return c.model
	}
	return "models/" + c.model
}
