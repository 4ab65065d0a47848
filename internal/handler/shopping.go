package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/family-meal-planner/internal/model"
	"github.com/sakif/family-meal-planner/internal/service"
)

const (
	NoticeShoppingGenerated = "Shopping list generated successfully!"
	NoticeShoppingReset     = "All items unchecked"
	NoticeShoppingChecked   = "All items checked!"
)

// ShoppingView is the open list along with the grouped view and progress the
// checklist screen shows.
type ShoppingView struct {
	Items    []model.ShoppingItem   `json:"items"`
	Groups   []model.CategoryGroup  `json:"groups"`
	Progress model.ShoppingProgress `json:"progress"`
}

func newShoppingView(items []model.ShoppingItem) ShoppingView {
	return ShoppingView{
		Items:    items,
		Groups:   service.GroupByCategory(items),
		Progress: service.Progress(items),
	}
}

// ShoppingHandler serves the shopping checklist.
type ShoppingHandler struct {
	sessions *service.SessionController
	logger   *slog.Logger
}

// NewShoppingHandler creates a new ShoppingHandler.
func NewShoppingHandler(sessions *service.SessionController, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{sessions: sessions, logger: logger}
}

// HandleOpen generates a list for the current plan.
//
// HTTP: POST /api/shopping
func (h *ShoppingHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}

	items, err := d.OpenShoppingList(r.Context())
	if err != nil {
		if isInternal(err) && r.Context().Err() == nil {
			h.logger.Error("shopping list generation failed", slog.String("error", err.Error()))
		}
		writeError(w, r, err)
		return
	}
	writeNotice(w, http.StatusCreated, NoticeShoppingGenerated, newShoppingView(items))
}

// HandleGet returns the open list.
//
// HTTP: GET /api/shopping
func (h *ShoppingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "", func(d *service.Dashboard) ([]model.ShoppingItem, error) {
		return d.ShoppingList()
	})
}

// HandleToggle flips one item.
//
// HTTP: POST /api/shopping/items/{id}/toggle
func (h *ShoppingHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.respond(w, r, "", func(d *service.Dashboard) ([]model.ShoppingItem, error) {
		return d.ToggleShoppingItem(id)
	})
}

// HandleReset unchecks everything.
//
// HTTP: POST /api/shopping/reset
func (h *ShoppingHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, NoticeShoppingReset, (*service.Dashboard).ResetShoppingList)
}

// HandleCheckAll checks everything.
//
// HTTP: POST /api/shopping/check-all
func (h *ShoppingHandler) HandleCheckAll(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, NoticeShoppingChecked, (*service.Dashboard).CheckAllShoppingItems)
}

// HandleClose discards the list.
//
// HTTP: DELETE /api/shopping
func (h *ShoppingHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}
	d.CloseShoppingList()
	w.WriteHeader(http.StatusNoContent)
}

// respond runs op against the dashboard and writes the resulting view. GET
// returns the view bare; mutations wrap it with their notice.
func (h *ShoppingHandler) respond(w http.ResponseWriter, r *http.Request, notice string, op func(*service.Dashboard) ([]model.ShoppingItem, error)) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}

	items, err := op(d)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view := newShoppingView(items)
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, view)
		return
	}
	writeNotice(w, http.StatusOK, notice, view)
}
