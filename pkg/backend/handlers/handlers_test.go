package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrs-engineer/gemini-router/internal/config"
	"github.com/jrs-engineer/gemini-router/pkg/gemini"
)

// upstreamText builds a minimal generateContent response body.
func upstreamText(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{"role": "model", "parts": []map[string]string{{"text": text}}}},
		},
		"usageMetadata": map[string]int{
			"promptTokenCount":     3,
			"candidatesTokenCount": 7,
			"totalTokenCount":      10,
		},
	})
	return string(b)
}

func testSettings() *config.Settings {
	s := &config.Settings{}
	s.Gemini.DefaultModel = "models/gemini-2.0-flash"
	s.Gemini.DefaultTemperature = 0.7
	return s
}

// newTestEnv wires a client cache at a fake upstream and returns both.
func newTestEnv(t *testing.T, upstream http.HandlerFunc) (*gemini.ClientCache, *config.Settings) {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)
	cache := gemini.NewClientCache(gemini.ClientConfig{APIKey: "k", BaseURL: server.URL})
	return cache, testSettings()
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestGenerate_Success(t *testing.T) {
	var gotReq gemini.GenerateContentRequest
	var gotPath string
	cache, settings := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(upstreamText("hi there")))
	})

	h := NewGenerateHandler(cache, settings)
	w := postJSON(t, h.Generate, "/v1/generate", `{"prompt": "say hi", "max_tokens": 64}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotPath != "/models/gemini-2.0-flash:generateContent" {
		t.Errorf("Expected default model on the wire, got path %s", gotPath)
	}
	if gotReq.GenerationConfig == nil || gotReq.GenerationConfig.Temperature == nil || *gotReq.GenerationConfig.Temperature != 0.7 {
		t.Errorf("Expected default temperature 0.7 upstream, got %+v", gotReq.GenerationConfig)
	}
	if gotReq.GenerationConfig.MaxOutputTokens != 64 {
		t.Errorf("Expected maxOutputTokens 64, got %d", gotReq.GenerationConfig.MaxOutputTokens)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response JSON: %v", err)
	}
	if resp["content"] != "hi there" {
		t.Errorf("Unexpected content %v", resp["content"])
	}
	usage, ok := resp["usage"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected usage object, got %T", resp["usage"])
	}
	if usage["totalTokenCount"] != float64(10) {
		t.Errorf("Unexpected usage %v", usage)
	}
	metadata := resp["metadata"].(map[string]interface{})
	if metadata["provider"] != "gemini" || metadata["model"] != "models/gemini-2.0-flash" {
		t.Errorf("Unexpected metadata %v", metadata)
	}
}

func TestGenerate_ModelOverride(t *testing.T) {
	var gotPath string
	cache, settings := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(upstreamText("ok")))
	})

	h := NewGenerateHandler(cache, settings)
	w := postJSON(t, h.Generate, "/v1/generate", `{"prompt": "x", "model": "models/gemini-2.5-pro"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotPath != "/models/gemini-2.5-pro:generateContent" {
		t.Errorf("Expected overridden model on the wire, got %s", gotPath)
	}
}

func TestGenerate_ExtrasReachTheWire(t *testing.T) {
	var gotReq gemini.GenerateContentRequest
	cache, settings := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(upstreamText("ok")))
	})

	h := NewGenerateHandler(cache, settings)
	body := `{"prompt": "x", "extra": {"candidate_count": 2, "unknown_key": "dropped"}}`
	if w := postJSON(t, h.Generate, "/v1/generate", body); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	if gotReq.GenerationConfig.CandidateCount != 2 {
		t.Errorf("Expected candidateCount 2 upstream, got %d", gotReq.GenerationConfig.CandidateCount)
	}
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	cache, settings := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	})

	h := NewGenerateHandler(cache, settings)
	w := postJSON(t, h.Generate, "/v1/generate", `{"prompt": "x"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.HasPrefix(resp["detail"], "Gemini error: ") {
		t.Errorf("Expected wrapped upstream error, got %q", resp["detail"])
	}
	if !strings.Contains(resp["detail"], "quota exceeded") {
		t.Errorf("Expected upstream message embedded, got %q", resp["detail"])
	}
}

func TestGenerate_BadRequests(t *testing.T) {
	cache, settings := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Upstream must not be called for invalid requests")
	})
	h := NewGenerateHandler(cache, settings)

	if w := postJSON(t, h.Generate, "/v1/generate", `{not json`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed JSON, got %d", w.Code)
	}
	if w := postJSON(t, h.Generate, "/v1/generate", `{"model": "m"}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing prompt, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/generate", nil)
	w := httptest.NewRecorder()
	h.Generate(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", w.Code)
	}
}

func TestStructured_ParsedResult(t *testing.T) {
	var gotReq gemini.GenerateContentRequest
	cache, settings := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(upstreamText(`{"name": "Rex", "age": 4}`)))
	})

	h := NewStructuredHandler(cache, settings)
	body := `{
		"prompt": "describe a dog",
		"schema": {"type": "object"},
		"extra": {"response_schema": {"type": "string"}, "response_mime_type": "text/plain"}
	}`
	w := postJSON(t, h.Structured, "/v1/structured", body)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The top-level schema must win over extras-injected values.
	if gotReq.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("Expected forced JSON mime type, got %q", gotReq.GenerationConfig.ResponseMimeType)
	}
	if gotReq.GenerationConfig.ResponseSchema["type"] != "object" {
		t.Errorf("Expected top-level schema upstream, got %v", gotReq.GenerationConfig.ResponseSchema)
	}

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	result := resp["result"].(map[string]interface{})
	if result["name"] != "Rex" {
		t.Errorf("Unexpected result %v", result)
	}
}

func TestStructured_FallbackIsStillOK(t *testing.T) {
	cache, settings := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(upstreamText("definitely not json")))
	})

	h := NewStructuredHandler(cache, settings)
	w := postJSON(t, h.Structured, "/v1/structured", `{"prompt": "x", "schema": {"type": "object"}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Fallback must still be 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	result := resp["result"].(map[string]interface{})
	if result["raw"] != "definitely not json" {
		t.Errorf("Expected raw fallback, got %v", result)
	}
}

func TestStructured_SchemaRequired(t *testing.T) {
	cache, settings := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Upstream must not be called without a schema")
	})
	h := NewStructuredHandler(cache, settings)

	if w := postJSON(t, h.Structured, "/v1/structured", `{"prompt": "x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing schema, got %d", w.Code)
	}
}

func TestHealth_OK(t *testing.T) {
	cache, settings := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(upstreamText("Hello!")))
	})
	h := NewHealthHandler(cache, settings)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("Unexpected body %v", resp)
	}
}

func TestHealth_UpstreamError(t *testing.T) {
	cache, settings := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "backend down"}}`))
	})
	h := NewHealthHandler(cache, settings)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "error" || resp["detail"] == "" {
		t.Errorf("Unexpected body %v", resp)
	}
}

func TestHealth_EmptyUpstreamText(t *testing.T) {
	cache, settings := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})
	h := NewHealthHandler(cache, settings)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 for empty response, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["detail"] != "No response from model." {
		t.Errorf("Unexpected detail %q", resp["detail"])
	}
}
