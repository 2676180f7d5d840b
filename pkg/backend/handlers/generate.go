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

// GenerateHandler serves /v1/generate: one inbound request maps to exactly
// one upstream generateContent call.
type GenerateHandler struct {
	clients  *gemini.ClientCache
	settings *config.Settings
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(clients *gemini.ClientCache, settings *config.Settings) *GenerateHandler {
	return &GenerateHandler{clients: clients, settings: settings}
}

// Generate handles POST requests for text generation
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		SendDetail(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	var req routertypes.GenerateRequest
	if err := ParseJSON(r, &req); err != nil {
		SendDetail(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.Prompt == "" {
		SendDetail(w, http.StatusBadRequest, "'prompt' must be provided")
		return
	}

	model := h.settings.ResolveModel(req.Model)
	client := h.clients.Get(model)

	genConfig := router.BuildGenerationConfig(router.Params{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Extra:       req.Extra,
	}, h.settings.Gemini.DefaultTemperature)

	resp, err := client.GenerateContent(r.Context(), req.Prompt, genConfig)
	if err != nil {
		requestID := middleware.GetRequestID(r.Context())
		log.Printf("[%s] generate failed: model=%s err=%v", requestID, model, err)
		SendDetail(w, http.StatusInternalServerError, "Gemini error: "+err.Error())
		return
	}

	SendJSON(w, http.StatusOK, routertypes.GenerateResponse{
		Content:  resp.Text(),
		Usage:    normalizeUsage(resp.UsageMetadata),
		Metadata: responseMetadata(model),
	})
}

// normalizeUsage converts upstream usage metadata to a serializable shape,
// wrapping any non-mapping result so the envelope stays an object.
func normalizeUsage(usage *gemini.UsageMetadata) interface{} {
	converted := router.ToSerializable(usage)
	if converted == nil {
		return nil
	}
	if _, ok := converted.(map[string]interface{}); !ok {
		return map[string]interface{}{"value": converted}
	}
	return converted
}

func responseMetadata(model string) map[string]interface{} {
	return map[string]interface{}{
		"model":    model,
		"provider": "gemini",
	}
}
