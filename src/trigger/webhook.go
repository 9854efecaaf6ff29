package trigger

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"kiln-agent/src/forge"
)

// EventHeader carries the webhook event type.
const EventHeader = "X-Forge-Event"

// maxPayloadBytes bounds webhook bodies; forge payloads are small.
const maxPayloadBytes = 1 << 20

// webhookResponse is the JSON body returned to the forge.
type webhookResponse struct {
	Scheduled bool   `json:"scheduled"`
	RunID     string `json:"run_id,omitempty"`
}

// Handler serves webhook deliveries and feeds them to the evaluator.
type Handler struct {
	evaluator *Evaluator
}

// NewHandler creates the webhook HTTP handler.
func NewHandler(evaluator *Evaluator) *Handler {
	return &Handler{evaluator: evaluator}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}

	event, err := forge.ParseWebhook(r.Header.Get(EventHeader), payload)
	if errors.Is(err, forge.ErrIgnoredEvent) {
		// Deliveries with no runnable branch reference are dropped,
		// not rejected
		writeJSON(w, http.StatusAccepted, webhookResponse{Scheduled: false})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	runID, err := h.evaluator.Evaluate(r.Context(), *event)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, webhookResponse{
		Scheduled: runID != "",
		RunID:     runID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
