package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/service"
)

const dateLayout = "2006-01-02"

type RentalHandler struct {
	rentals service.RentalService
}

func NewRentalHandler(rentals service.RentalService) *RentalHandler {
	return &RentalHandler{rentals: rentals}
}

type createRentalRequest struct {
	InventoryID uuid.UUID `json:"inventory_id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Notes       string    `json:"notes"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type extendRequest struct {
	AdditionalDays int32 `json:"additional_days"`
}

type completeResponse struct {
	Rental *domain.Rental        `json:"rental"`
	Payout *service.PayoutResult `json:"payout"`
}

type listResponse struct {
	Rentals []domain.Rental `json:"rentals"`
	Total   int32           `json:"total"`
	Page    int32           `json:"page"`
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("", "invalid request body"))
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, domain.NewValidationError("start_date", "expected format YYYY-MM-DD"))
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeError(w, domain.NewValidationError("end_date", "expected format YYYY-MM-DD"))
		return
	}

	rental, err := h.rentals.CreateRequest(r.Context(), IdentityFromContext(r.Context()), req.InventoryID, start, end, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.RentalStatus(r.URL.Query().Get("status"))
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 10)

	rentals, total, err := h.rentals.List(r.Context(), IdentityFromContext(r.Context()), status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Rentals: rentals, Total: total, Page: page})
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathUUID(r, "rental_id")
	if err != nil {
		writeError(w, err)
		return
	}
	rental, err := h.rentals.Get(r.Context(), IdentityFromContext(r.Context()), rentalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) Pay(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rentals.Pay)
}

func (h *RentalHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rentals.Confirm)
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rentals.Cancel)
}

func (h *RentalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathUUID(r, "rental_id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("", "invalid request body"))
		return
	}
	rental, err := h.rentals.Reject(r.Context(), IdentityFromContext(r.Context()), rentalID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathUUID(r, "rental_id")
	if err != nil {
		writeError(w, err)
		return
	}
	rental, payout, err := h.rentals.Complete(r.Context(), IdentityFromContext(r.Context()), rentalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, completeResponse{Rental: rental, Payout: payout})
}

func (h *RentalHandler) Extend(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathUUID(r, "rental_id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req extendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("", "invalid request body"))
		return
	}
	rental, err := h.rentals.Extend(r.Context(), IdentityFromContext(r.Context()), rentalID, req.AdditionalDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

type transitionFunc func(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*domain.Rental, error)

func (h *RentalHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	rentalID, err := pathUUID(r, "rental_id")
	if err != nil {
		writeError(w, err)
		return
	}
	rental, err := fn(r.Context(), IdentityFromContext(r.Context()), rentalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "invalid identifier")
	}
	return id, nil
}

func queryInt32(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}
