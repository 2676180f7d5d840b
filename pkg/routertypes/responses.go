package routertypes

// GenerateResponse is the envelope for /v1/generate.
type GenerateResponse struct {
	Content  string                 `json:"content"`
	Usage    interface{}            `json:"usage,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// StructuredResponse is the envelope for /v1/structured. Result is the
// parsed JSON object, or {"raw": <text>} when the upstream output did not
// parse.
type StructuredResponse struct {
	Result   map[string]interface{} `json:"result"`
	Usage    interface{}            `json:"usage,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ErrorResponse is the uniform error envelope for non-2xx answers.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is the envelope for /v1/health.
type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}
