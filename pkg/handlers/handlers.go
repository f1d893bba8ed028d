package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"crm-softphone-connector/pkg/bridge"
	"crm-softphone-connector/pkg/models"
	"crm-softphone-connector/pkg/widget"
)

type Handler struct {
	bridge  *bridge.Bridge
	emitter widget.Emitter
	logger  *logrus.Logger
}

func NewHandler(b *bridge.Bridge, emitter widget.Emitter, logger *logrus.Logger) *Handler {
	return &Handler{
		bridge:  b,
		emitter: emitter,
		logger:  logger,
	}
}

// CallUpdated is the sandbox ingress for widget call-updated events.
func (h *Handler) CallUpdated(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	callID := vars["id"]

	if callID == "" {
		http.Error(w, "Missing call ID", http.StatusBadRequest)
		return
	}

	var request struct {
		PbxRoomID   string    `json:"pbx_room_id"`
		Incoming    bool      `json:"incoming"`
		PartyNumber string    `json:"party_number"`
		CreatedAt   time.Time `json:"created_at,omitempty"`
		Tenant      string    `json:"tenant,omitempty"`
		User        string    `json:"user,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}

	call := models.Call{
		ID:          callID,
		PbxRoomID:   request.PbxRoomID,
		Incoming:    request.Incoming,
		PartyNumber: request.PartyNumber,
		CreatedAt:   request.CreatedAt,
		Tenant:      request.Tenant,
		User:        request.User,
	}

	h.emitter.EmitCallUpdated(call)

	response := map[string]interface{}{
		"success":  true,
		"call_key": call.Key(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)

	h.logger.WithFields(logrus.Fields{
		"call_key": call.Key(),
		"number":   call.PartyNumber,
	}).Debug("Injected call-updated event")
}

// CallEnded is the sandbox ingress for widget call-ended events.
func (h *Handler) CallEnded(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	callID := vars["id"]

	if callID == "" {
		http.Error(w, "Missing call ID", http.StatusBadRequest)
		return
	}

	var request struct {
		PbxRoomID string `json:"pbx_room_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	call := models.Call{ID: callID, PbxRoomID: request.PbxRoomID}
	h.emitter.EmitCallEnded(call)

	response := map[string]interface{}{
		"success":  true,
		"call_key": call.Key(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)

	h.logger.WithField("call_key", call.Key()).Debug("Injected call-ended event")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":           "healthy",
		"logged_in":        h.bridge.LoggedIn(),
		"tracked_calls":    h.bridge.TrackedCallCount(),
		"pending_contacts": len(h.bridge.PendingEntries()),
		"timestamp":        time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"logged_in":        h.bridge.LoggedIn(),
		"tracked_calls":    h.bridge.TrackedCallCount(),
		"pending_contacts": len(h.bridge.PendingEntries()),
		"current_url":      h.bridge.CurrentURL(),
		"timestamp":        time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Queue exposes the pending new-contact entries for debugging.
func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"entries":   h.bridge.PendingEntries(),
		"timestamp": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
