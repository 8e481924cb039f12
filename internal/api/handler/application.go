// internal/api/handler/application.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gigpay/internal/api/middleware"
	"gigpay/internal/domain"
	"gigpay/internal/service"
	"gigpay/internal/util"
)

// ApplicationHandler handles HTTP requests for gig applications and cashout.
type ApplicationHandler struct {
	gigs       service.GigService
	settlement service.SettlementService
	logger     *slog.Logger
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(gigs service.GigService, settlement service.SettlementService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{gigs: gigs, settlement: settlement, logger: logger}
}

// ApplyRequest represents the request body for applying to a gig.
type ApplyRequest struct {
	CoverLetter string `json:"cover_letter"`
}

// Apply files a pending application on a gig by the calling player.
// POST /gigs/{gigID}/applications
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}
	gigID, err := uuid.Parse(chi.URLParam(r, "gigID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	application, err := h.gigs.Apply(r.Context(), principal, gigID, req.CoverLetter)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, application)
}

// ListForGig lists applications on a gig for its owner.
// GET /gigs/{gigID}/applications
func (h *ApplicationHandler) ListForGig(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}
	gigID, err := uuid.Parse(chi.URLParam(r, "gigID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	applications, err := h.gigs.ListGigApplications(r.Context(), principal, gigID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, applications)
}

// MyApplications lists the calling player's applications.
// GET /my_applications
func (h *ApplicationHandler) MyApplications(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	applications, err := h.gigs.MyApplications(r.Context(), principal)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, applications)
}

// Get returns an application visible to its player or the gig owner.
// GET /applications/{applicationID}
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}
	applicationID, err := uuid.Parse(chi.URLParam(r, "applicationID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	application, err := h.gigs.GetApplication(r.Context(), principal, applicationID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, application)
}

// DecideRequest represents the request body for accepting or rejecting an
// application.
type DecideRequest struct {
	Status domain.ApplicationStatus `json:"status"`
}

// Decide accepts or rejects a pending application on behalf of the gig
// owner.
// PATCH /applications/{applicationID}
func (h *ApplicationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}
	applicationID, err := uuid.Parse(chi.URLParam(r, "applicationID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	application, err := h.gigs.DecideApplication(r.Context(), principal, applicationID, req.Status)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, application)
}

// Cashout records the worker's withdrawal intent for a settled gig.
// Repeating a cashout returns the original receipt.
// POST /applications/{applicationID}/cashout
func (h *ApplicationHandler) Cashout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}
	if principal.Role != domain.RolePlayer {
		respondWithError(w, h.logger, util.ErrForbidden)
		return
	}
	applicationID, err := uuid.Parse(chi.URLParam(r, "applicationID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	receipt, err := h.settlement.Cashout(r.Context(), applicationID, principal.UserID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	message := "Cashout request submitted successfully"
	if receipt.AlreadyCashedOut {
		message = "Cashout already recorded"
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message": message,
		"receipt": receipt,
	})
}
