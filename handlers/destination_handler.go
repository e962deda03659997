package handlers

import (
	"net/http"

	"travelmate/backend/models"
	"travelmate/backend/services"

	"github.com/gorilla/mux"
)

// DestinationHandler 處理旅遊指南 (/destinations)
type DestinationHandler struct {
	destinations *services.DestinationService
	responder
}

func newDestinationHandler(destinations *services.DestinationService, rp responder) *DestinationHandler {
	return &DestinationHandler{destinations: destinations, responder: rp}
}

func (h *DestinationHandler) ListDestinations(w http.ResponseWriter, r *http.Request) {
	f, err := ParseDestinationFilter(r)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch destinations")
		return
	}
	list, err := h.destinations.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch destinations")
		return
	}
	h.ok(w, http.StatusOK, list)
}

func (h *DestinationHandler) GetDestination(w http.ResponseWriter, r *http.Request) {
	d, err := h.destinations.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err, "Failed to fetch destination")
		return
	}
	h.ok(w, http.StatusOK, d)
}

func (h *DestinationHandler) CreateDestination(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDestinationRequest
	if !h.decode(w, r, &req) {
		return
	}
	d, err := h.destinations.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "Failed to create destination")
		return
	}
	h.ok(w, http.StatusCreated, d)
}

func (h *DestinationHandler) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	if err := h.destinations.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err, "Failed to delete destination")
		return
	}
	h.ok(w, http.StatusOK, map[string]string{"message": "Destination deleted"})
}

// ParseDestinationFilter reads the guide filters; "all" and empty disable one.
func ParseDestinationFilter(r *http.Request) (models.DestinationFilter, error) {
	q := r.URL.Query()
	f := models.DestinationFilter{Query: filterValue(q.Get("query"))}
	if v := filterValue(q.Get("category")); v != "" {
		c, err := models.ParseDestinationCategory(v)
		if err != nil {
			return f, err
		}
		f.Category = c
	}
	if v := filterValue(q.Get("continent")); v != "" {
		c, err := models.ParseContinent(v)
		if err != nil {
			return f, err
		}
		f.Continent = c
	}
	if v := filterValue(q.Get("expense")); v != "" {
		e, err := models.ParseExpense(v)
		if err != nil {
			return f, err
		}
		f.Expense = e
	}
	return f, nil
}
