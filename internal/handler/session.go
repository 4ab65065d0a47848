package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/family-meal-planner/internal/model"
	"github.com/sakif/family-meal-planner/internal/service"
)

// SessionHandler serves onboarding and the session lifecycle.
type SessionHandler struct {
	sessions *service.SessionController
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionController, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// HandleState returns where the device is: mode selection, the details
// form (with the pending family key when creating) or a live session.
//
// HTTP: GET /api/session
func (h *SessionHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.State())
}

// HandleSelectMode moves to the details form.
//
// HTTP: POST /api/onboarding/mode
// REQUEST BODY: {"mode": "create"}
func (h *SessionHandler) HandleSelectMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode model.Mode `json:"mode"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	st, err := h.sessions.SelectMode(req.Mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeNotice(w, http.StatusOK, "", st)
}

// HandleBack returns to mode selection.
//
// HTTP: POST /api/onboarding/back
func (h *SessionHandler) HandleBack(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.Back()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeNotice(w, http.StatusOK, "", st)
}

// onboardingRequest is the details form. Which fields matter depends on mode.
type onboardingRequest struct {
	Mode       model.Mode `json:"mode"`
	FamilyName string     `json:"familyName"`
	FamilyKey  string     `json:"familyKey"`
	UserName   string     `json:"userName"`
	Avatar     string     `json:"avatar"`
}

func (req onboardingRequest) onboarding() model.Onboarding {
	switch req.Mode {
	case model.ModeCreate:
		return model.CreateFamily{FamilyName: req.FamilyName, UserName: req.UserName, Avatar: req.Avatar}
	case model.ModeJoin:
		return model.JoinFamily{FamilyKey: req.FamilyKey, UserName: req.UserName, Avatar: req.Avatar}
	}
	return nil
}

// HandleComplete finishes onboarding and starts the session.
//
// HTTP: POST /api/onboarding
// REQUEST BODY: {"mode": "join", "familyKey": "sunny-curry-feast", "userName": "Ravi", "avatar": "🥕"}
func (h *SessionHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req onboardingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	st, err := h.sessions.Complete(r.Context(), req.onboarding())
	if err != nil {
		h.logError("onboarding failed", err)
		writeError(w, r, err)
		return
	}
	writeNotice(w, http.StatusCreated, "", st)
}

// HandleLogout ends the session on this device.
//
// HTTP: POST /api/logout
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.Logout(r.Context())
	if err != nil {
		h.logError("logout failed", err)
		writeError(w, r, err)
		return
	}
	writeNotice(w, http.StatusOK, "", st)
}

// HandleAvatars lists the avatars onboarding accepts.
//
// HTTP: GET /api/avatars
func (h *SessionHandler) HandleAvatars(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Avatars)
}

func (h *SessionHandler) logError(msg string, err error) {
	if isInternal(err) {
		h.logger.Error(msg, slog.String("error", err.Error()))
	}
}

// HandleMembers returns the family roster, current user first.
//
// HTTP: GET /api/family/members
func (h *SessionHandler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	d, ok := currentDashboard(h.sessions, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d.Members())
}
