package backend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrs-engineer/gemini-router/internal/config"
)

func newTestServer(t *testing.T, secret string, upstream http.HandlerFunc) *Server {
	t.Helper()
	fake := httptest.NewServer(upstream)
	t.Cleanup(fake.Close)

	settings := &config.Settings{}
	settings.Gemini.APIKey = "upstream-key"
	settings.Gemini.BaseURL = fake.URL
	settings.Gemini.DefaultModel = "models/gemini-2.0-flash"
	settings.Gemini.DefaultTemperature = 0.7
	settings.Auth.APIKey = secret
	settings.CORS.AllowedOrigins = []string{"*"}
	settings.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	settings.CORS.AllowedHeaders = []string{"Content-Type", "x-api-key"}

	return NewServer(settings)
}

func generateOK(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "pong"}]}}]}`))
}

func TestServer_GenerateThroughFullChain(t *testing.T) {
	srv := newTestServer(t, "secret", generateOK)

	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewBufferString(`{"prompt": "ping"}`))
	req.Header.Set("x-api-key", "secret")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID on the response")
	}

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["content"] != "pong" {
		t.Errorf("Unexpected content %v", resp["content"])
	}
}

func TestServer_GenerateRequiresAPIKey(t *testing.T) {
	srv := newTestServer(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		t.Error("Upstream must not be called for unauthorized requests")
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewBufferString(`{"prompt": "ping"}`))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["detail"] != "Invalid or missing API key." {
		t.Errorf("Unexpected detail %q", resp["detail"])
	}
}

func TestServer_HealthIsPublic(t *testing.T) {
	srv := newTestServer(t, "secret", generateOK)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected health to bypass the access guard, got %d", w.Code)
	}
}

func TestServer_NoSecretAllowsAll(t *testing.T) {
	srv := newTestServer(t, "", generateOK)

	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewBufferString(`{"prompt": "ping"}`))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 without a configured secret, got %d", w.Code)
	}
}
