package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/family-meal-planner/internal/model"
	"github.com/sakif/family-meal-planner/internal/service"
)

const (
	NoticeFoodAdded   = "Food item added successfully!"
	NoticeFoodUpdated = "Food item updated successfully!"
	NoticeFoodDeleted = "Food item deleted successfully!"
)

// FoodHandler serves the family's food collection.
type FoodHandler struct {
	sessions *service.SessionController
	logger   *slog.Logger
}

// NewFoodHandler creates a new FoodHandler.
func NewFoodHandler(sessions *service.SessionController, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{sessions: sessions, logger: logger}
}

// HandleList returns the foods matching the query.
//
// HTTP: GET /api/foods?q=pav&category=snack&type=veg&addedBy=Asha
//
// Every parameter is optional; "all" is the same as leaving it out.
func (h *FoodHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	writeJSON(w, http.StatusOK, d.Foods(model.FoodFilter{
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Type:     q.Get("type"),
		AddedBy:  q.Get("addedBy"),
	}))
}

// HandleContributors lists who has added food, for the "added by" filter.
//
// HTTP: GET /api/foods/contributors
func (h *FoodHandler) HandleContributors(w http.ResponseWriter, r *http.Request) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d.Contributors())
}

// HandleCreate adds a dish as the current user.
//
// HTTP: POST /api/foods
// REQUEST BODY: {"name": "Thalipeeth", "description": "...", "category": "breakfast", "type": "veg"}
func (h *FoodHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Category    model.Category `json:"category"`
		Type        model.FoodType `json:"type"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := d.AddFood(r.Context(), model.NewFood{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
	})
	if err != nil {
		h.logError("adding food failed", err)
		writeError(w, r, err)
		return
	}
	writeNotice(w, http.StatusCreated, NoticeFoodAdded, item)
}

// HandleUpdate patches a dish. Fields left out of the body are unchanged.
//
// HTTP: PATCH /api/foods/{id}
func (h *FoodHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}

	var patch model.FoodPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := d.EditFood(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.logError("updating food failed", err)
		writeError(w, r, err)
		return
	}
	writeNotice(w, http.StatusOK, NoticeFoodUpdated, item)
}

// HandleDelete removes a dish.
//
// HTTP: DELETE /api/foods/{id}
func (h *FoodHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}

	if err := d.DeleteFood(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logError("deleting food failed", err)
		writeError(w, r, err)
		return
	}
	writeNotice(w, http.StatusOK, NoticeFoodDeleted, nil)
}

func (h *FoodHandler) logError(msg string, err error) {
	if isInternal(err) {
		h.logger.Error(msg, slog.String("error", err.Error()))
	}
}

// currentDashboard writes a 401 and reports false while nobody is signed in.
func currentDashboard(sessions *service.SessionController, w http.ResponseWriter, r *http.Request) (*service.Dashboard, bool) {
	d, err := sessions.Dashboard()
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return d, true
}
