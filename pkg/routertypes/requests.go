package routertypes

// GenerateRequest represents a text generation request.
// Temperature is a pointer so a caller-supplied zero is distinguishable
// from an absent field; only absence triggers the configured default.
type GenerateRequest struct {
	Prompt      string                 `json:"prompt"`
	Model       string                 `json:"model,omitempty"`
	Temperature *float64               `json:"temperature,omitempty"`
	MaxTokens   int                    `json:"max_tokens,omitempty"`
	Stop        string                 `json:"stop,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// StructuredRequest represents a generation request constrained to a
// caller-supplied output schema. The schema is passed opaquely upstream.
type StructuredRequest struct {
	Prompt      string                 `json:"prompt"`
	Schema      map[string]interface{} `json:"schema"`
	Model       string                 `json:"model,omitempty"`
	Temperature *float64               `json:"temperature,omitempty"`
	MaxTokens   int                    `json:"max_tokens,omitempty"`
	Stop        string                 `json:"stop,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}
