package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/family-meal-planner/internal/apperror"
	"github.com/sakif/family-meal-planner/internal/service"
)

const (
	NoticePlanGenerated = "Daily meal plan generated!"
	NoticePlanLiked     = "Great! 👍"
	NoticePlanDisliked  = "Noted 👎"
)

// PlanHandler serves today's meal plan.
type PlanHandler struct {
	sessions *service.SessionController
	logger   *slog.Logger
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(sessions *service.SessionController, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{sessions: sessions, logger: logger}
}

// HandleGet returns the current plan.
//
// HTTP: GET /api/plan
func (h *PlanHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}

	plan, ok := d.Plan()
	if !ok {
		writeError(w, r, apperror.Missing("meal plan"))
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// HandleGenerate replaces the plan with a fresh one. It can take as long as
// the configured planning latency; a client that disconnects cancels it.
//
// HTTP: POST /api/plan
func (h *PlanHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}

	plan, err := d.RegeneratePlan(r.Context())
	if err != nil {
		if isInternal(err) && r.Context().Err() == nil {
			h.logger.Error("meal plan generation failed", slog.String("error", err.Error()))
		}
		writeError(w, r, err)
		return
	}
	writeNotice(w, http.StatusOK, NoticePlanGenerated, plan)
}

// HandleFeedback records a thumbs up or down on the plan.
//
// HTTP: POST /api/plan/feedback
// REQUEST BODY: {"liked": true}
func (h *PlanHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}

	var req struct {
		Liked *bool `json:"liked"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Liked == nil {
		writeError(w, r, apperror.ValidationFailed("liked", "liked must be true or false"))
		return
	}

	plan, err := d.SetFeedback(*req.Liked)
	if err != nil {
		writeError(w, r, err)
		return
	}

	notice := NoticePlanDisliked
	if *req.Liked {
		notice = NoticePlanLiked
	}
	writeNotice(w, http.StatusOK, notice, plan)
}
