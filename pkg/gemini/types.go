// Package gemini provides a minimal REST client for the Google Gemini
// generateContent API, plus a cache of per-model client handles.
package gemini

// GenerateContentRequest represents a request to generate content
type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content represents message content
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part represents a part of content
type Part struct {
	Text string `json:"text,omitempty"`
}

// GenerationConfig represents generation configuration sent with each call.
// Temperature is a pointer so an explicit zero survives serialization.
// The six pass-through knobs below are the full set the router copies from
// a request's extras; keys outside this struct never reach the wire.
type GenerationConfig struct {
	Temperature      *float64               `json:"temperature,omitempty"`
	MaxOutputTokens  int                    `json:"maxOutputTokens,omitempty"`
	CandidateCount   int                    `json:"candidateCount,omitempty"`
	StopSequences    []string               `json:"stopSequences,omitempty"`
	ResponseMimeType string                 `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]interface{} `json:"responseSchema,omitempty"`
	PresencePenalty  *float64               `json:"presencePenalty,omitempty"`
	FrequencyPenalty *float64               `json:"frequencyPenalty,omitempty"`
}

// GenerateContentResponse represents a response from generate content
type GenerateContentResponse struct {
	Candidates    []Candidate    `json:"candidates"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
}

// Candidate represents a response candidate
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// UsageMetadata represents usage metadata
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Text returns the concatenated text of the first candidate's parts.
// An empty string means the model produced no text output.
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, part := range r.Candidates[0].Content.Parts {
		out += part.Text
	}
	return out
}
