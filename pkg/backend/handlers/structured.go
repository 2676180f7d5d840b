package handlers

import (
	"log"
	"net/http"

	"github.com/jrs-engineer/gemini-router/internal/config"
	"github.com/jrs-engineer/gemini-router/pkg/backend/middleware"
	"github.com/jrs-engineer/gemini-router/pkg/gemini"
	"github.com/jrs-engineer/gemini-router/pkg/router"
	"github.com/jrs-engineer/gemini-router/pkg/routertypes"
)

// StructuredHandler serves /v1/structured: generation constrained to a
// caller-supplied JSON schema, with a raw-text fallback when the upstream
// output does not parse.
type StructuredHandler struct {
	clients  *gemini.ClientCache
	settings *config.Settings
}

// NewStructuredHandler creates a new structured-output handler
func NewStructuredHandler(clients *gemini.ClientCache, settings *config.Settings) *StructuredHandler {
	return &StructuredHandler{clients: clients, settings: settings}
}

// Structured handles POST requests for schema-constrained generation
func (h *StructuredHandler) Structured(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		SendDetail(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	var req routertypes.StructuredRequest
	if err := ParseJSON(r, &req); err != nil {
		SendDetail(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.Prompt == "" {
		SendDetail(w, http.StatusBadRequest, "'prompt' must be provided")
		return
	}
	if req.Schema == nil {
		SendDetail(w, http.StatusBadRequest, "'schema' must be provided")
		return
	}

	model := h.settings.ResolveModel(req.Model)
	client := h.clients.Get(model)

	// Schema is applied last so it wins over anything injected via extras.
	genConfig := router.BuildGenerationConfig(router.Params{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Extra:       req.Extra,
		Schema:      req.Schema,
	}, h.settings.Gemini.DefaultTemperature)

	resp, err := client.GenerateContent(r.Context(), req.Prompt, genConfig)
	if err != nil {
		requestID := middleware.GetRequestID(r.Context())
		log.Printf("[%s] structured generate failed: model=%s err=%v", requestID, model, err)
		SendDetail(w, http.StatusInternalServerError, "Gemini error: "+err.Error())
		return
	}

	result, status := router.ParseStructured(resp.Text())
	if status == router.ParseFallback {
		requestID := middleware.GetRequestID(r.Context())
		log.Printf("[%s] structured response did not parse as JSON, returning raw text", requestID)
	}

	SendJSON(w, http.StatusOK, routertypes.StructuredResponse{
		Result:   result,
		Usage:    normalizeUsage(resp.UsageMetadata),
		Metadata: responseMetadata(model),
	})
}
