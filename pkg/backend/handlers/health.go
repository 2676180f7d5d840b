package handlers

import (
	"net/http"

	"github.com/jrs-engineer/gemini-router/internal/config"
	"github.com/jrs-engineer/gemini-router/pkg/gemini"
	"github.com/jrs-engineer/gemini-router/pkg/routertypes"
)

// healthProbePrompt is the trivial prompt sent to the default model to
// verify upstream liveness.
const healthProbePrompt = "Hello"

type HealthHandler struct {
	clients  *gemini.ClientCache
	settings *config.Settings
}

func NewHealthHandler(clients *gemini.ClientCache, settings *config.Settings) *HealthHandler {
	return &HealthHandler{clients: clients, settings: settings}
}

// Health probes the default model with a one-word generation. A transport
// or API failure, and an empty response, both report 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		SendDetail(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	client := h.clients.Get(h.settings.ResolveModel(""))

	resp, err := client.GenerateContent(r.Context(), healthProbePrompt, nil)
	if err != nil {
		SendJSON(w, http.StatusServiceUnavailable, routertypes.HealthResponse{
			Status: "error",
			Detail: err.Error(),
		})
		return
	}
	if resp.Text() == "" {
		SendJSON(w, http.StatusServiceUnavailable, routertypes.HealthResponse{
			Status: "error",
			Detail: "No response from model.",
		})
		return
	}

	SendJSON(w, http.StatusOK, routertypes.HealthResponse{Status: "ok"})
}
