// Package router implements the core request/response normalization logic:
// merging per-request overrides into an upstream generation config, and
// converting upstream responses into JSON-serializable shapes.
package router

import (
	"github.com/jrs-engineer/gemini-router/pkg/gemini"
)

// Params groups the per-request generation knobs the normalizer merges.
// A nil Temperature means "absent"; an explicit zero is kept as zero.
// A non-nil Schema marks a structured request and forces JSON output mode.
type Params struct {
	Temperature *float64
	MaxTokens   int
	Extra       map[string]interface{}
	Schema      map[string]interface{}
}

// The closed set of keys copied from a request's extras into the generation
// config. Anything else in extras is silently dropped.
var allowedExtraKeys = []string{
	"candidate_count",
	"stop_sequences",
	"response_mime_type",
	"response_schema",
	"presence_penalty",
	"frequency_penalty",
}

// BuildGenerationConfig assembles the configuration sent upstream.
// Precedence: caller-supplied schema > allow-listed extras > computed
// values > defaults. No range validation is performed; out-of-range values
// surface as the upstream API's own error.
func BuildGenerationConfig(p Params, defaultTemperature float64) *gemini.GenerationConfig {
	temperature := defaultTemperature
	if p.Temperature != nil {
		temperature = *p.Temperature
	}

	cfg := &gemini.GenerationConfig{
		Temperature: &temperature,
	}
	if p.MaxTokens > 0 {
		cfg.MaxOutputTokens = p.MaxTokens
	}

	for _, key := range allowedExtraKeys {
		value, ok := p.Extra[key]
		if !ok {
			continue
		}
		applyExtra(cfg, key, value)
	}

	// Applied after extras so the top-level schema always wins.
	if p.Schema != nil {
		cfg.ResponseMimeType = "application/json"
		cfg.ResponseSchema = p.Schema
	}

	return cfg
}

// applyExtra copies one allow-listed extra into the config, coercing from
// the loosely typed JSON value. Values of the wrong shape are dropped.
func applyExtra(cfg *gemini.GenerationConfig, key string, value interface{}) {
	switch key {
	case "candidate_count":
		if n, ok := asInt(value); ok {
			cfg.CandidateCount = n
		}
	case "stop_sequences":
		if seqs, ok := asStringSlice(value); ok {
			cfg.StopSequences = seqs
		}
	case "response_mime_type":
		if s, ok := value.(string); ok {
			cfg.ResponseMimeType = s
		}
	case "response_schema":
		if m, ok := value.(map[string]interface{}); ok {
			cfg.ResponseSchema = m
		}
	case "presence_penalty":
		if f, ok := asFloat(value); ok {
			cfg.PresencePenalty = &f
		}
	case "frequency_penalty":
		if f, ok := asFloat(value); ok {
			cfg.FrequencyPenalty = &f
		}
	}
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func asStringSlice(v interface{}) ([]string, bool) {
	switch seq := v.(type) {
	case []string:
		return seq, true
	case []interface{}:
		out := make([]string, 0, len(seq))
		for _, item := range seq {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
