package leads

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/leadcapture-api/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Handler handles HTTP requests for leads
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ErrorResponse is the JSON body of every failed lead request.
type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// MessageResponse is returned by operations without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateContactLead handles POST /api/leads requests
func (h *Handler) CreateContactLead(w http.ResponseWriter, r *http.Request) {
	var req ContactSubmission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}

	lead, err := h.service.SubmitContact(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

// CreateCartLead handles POST /api/leads/cart requests
func (h *Handler) CreateCartLead(w http.ResponseWriter, r *http.Request) {
	var req CartSubmission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}

	lead, err := h.service.SubmitCart(r.Context(), req)
	if err != nil {
		var (
			ve *ValidationError
			ce *ConflictError
		)
		switch {
		case errors.As(err, &ve):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: ve.Message, Details: ve.Details})
		case errors.As(err, &ce):
			writeJSON(w, http.StatusConflict, ErrorResponse{Message: ce.Message, Details: ce.Details})
		default:
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Failed to save cart lead", Details: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

// ListLeads handles GET /api/leads requests. Admin only.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.service.ListAll(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

// ClearLeads handles DELETE /api/leads requests. Admin only.
func (h *Handler) ClearLeads(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.ClearAll(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "All leads cleared"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
