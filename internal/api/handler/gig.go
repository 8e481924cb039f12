// internal/api/handler/gig.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gigpay/internal/api/middleware"
	"gigpay/internal/domain"
	"gigpay/internal/repository"
	"gigpay/internal/service"
	"gigpay/internal/util"
)

// GigHandler handles HTTP requests for the gig lifecycle.
type GigHandler struct {
	gigs   service.GigService
	logger *slog.Logger
}

// NewGigHandler creates a new GigHandler.
func NewGigHandler(gigs service.GigService, logger *slog.Logger) *GigHandler {
	return &GigHandler{gigs: gigs, logger: logger}
}

// CreateGigRequest represents the request body for gig creation.
type CreateGigRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Game        string          `json:"game"`
	Location    string          `json:"location"`
	Tags        []string        `json:"tags"`
	Budget      decimal.Decimal `json:"budget"`
	Method      string          `json:"method"`
}

// Create posts a new gig and escrows its budget.
// POST /gigs
func (h *GigHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	var req CreateGigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	gig, err := h.gigs.CreateGig(r.Context(), principal, service.CreateGigInput{
		Title:       req.Title,
		Description: req.Description,
		Game:        req.Game,
		Location:    req.Location,
		Tags:        req.Tags,
		Budget:      req.Budget,
		Method:      req.Method,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, gig)
}

// Browse lists gigs matching the query filters.
// GET /gigs
func (h *GigHandler) Browse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.GigFilter{
		Search:   query.Get("search"),
		Location: query.Get("location"),
		Game:     query.Get("game"),
		Status:   domain.GigStatusActive,
	}
	if tags := query.Get("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}
	if status := query.Get("status"); status != "" {
		s := domain.GigStatus(status)
		if !s.Valid() {
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
		filter.Status = s
	}
	if minBudget := query.Get("min_budget"); minBudget != "" {
		v, err := decimal.NewFromString(minBudget)
		if err != nil {
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
		filter.MinBudget = &v
	}
	if maxBudget := query.Get("max_budget"); maxBudget != "" {
		v, err := decimal.NewFromString(maxBudget)
		if err != nil {
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
		filter.MaxBudget = &v
	}

	gigs, err := h.gigs.BrowseGigs(r.Context(), filter)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, gigs)
}

// Get returns a gig's details.
// GET /gigs/{gigID}
func (h *GigHandler) Get(w http.ResponseWriter, r *http.Request) {
	gigID, err := uuid.Parse(chi.URLParam(r, "gigID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	gig, err := h.gigs.GetGig(r.Context(), gigID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, gig)
}

// MyGigs lists the calling org's gigs.
// GET /my_gigs
func (h *GigHandler) MyGigs(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	gigs, err := h.gigs.MyGigs(r.Context(), principal)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, gigs)
}

// Complete marks a gig as completed, enabling settlement.
// PATCH /gigs/{gigID}/complete
func (h *GigHandler) Complete(w http.ResponseWriter, r *http.Request) {
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

	gig, err := h.gigs.CompleteGig(r.Context(), principal, gigID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, gig)
}

// Close cancels an active gig and releases its escrow.
// DELETE /gigs/{gigID}
func (h *GigHandler) Close(w http.ResponseWriter, r *http.Request) {
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

	if err := h.gigs.CloseGig(r.Context(), principal, gigID); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Gig closed"})
}
