package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jrs-engineer/gemini-router/pkg/routertypes"
)

// SendJSON writes a JSON response with the given status code.
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// SendDetail writes the uniform {"detail": ...} error envelope.
func SendDetail(w http.ResponseWriter, statusCode int, detail string) {
	SendJSON(w, statusCode, routertypes.ErrorResponse{Detail: detail})
}

// ParseJSON parses JSON from request body into target
func ParseJSON(r *http.Request, target interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(target)
}
