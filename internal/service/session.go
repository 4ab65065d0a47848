package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sakif/family-meal-planner/internal/apperror"
	"github.com/sakif/family-meal-planner/internal/model"
)

// Onboarding validation messages shown to the user as-is.
const (
	MsgUserNameRequired   = "Please enter your name"
	MsgAvatarRequired     = "Please choose an avatar"
	MsgFamilyNameRequired = "Please enter a family name"
	MsgFamilyKeyRequired  = "Please enter a family key"
)

// Phase is where a device is in its lifecycle.
type Phase string

const (
	PhaseModeSelect    Phase = "mode-select"
	PhaseDetails       Phase = "details"
	PhaseAuthenticated Phase = "authenticated"
)

// SessionStore persists the device's single active session.
type SessionStore interface {
	SaveSession(ctx context.Context, s model.Session) error
	LoadSession(ctx context.Context) (model.Session, bool, error)
	ClearSession(ctx context.Context) error
}

// Storage is the device-local store: the session plus the food collections.
type Storage interface {
	SessionStore
	FoodStore
}

// KeyGenerator produces family keys; familykey.Generator implements it.
type KeyGenerator interface {
	Generate() string
}

// State is a snapshot of the controller for presentation.
type State struct {
	Phase      Phase          `json:"phase"`
	Mode       model.Mode     `json:"mode,omitempty"`
	PendingKey string         `json:"pendingKey,omitempty"`
	Session    *model.Session `json:"session,omitempty"`
}

// SessionController drives onboarding and owns the Dashboard of the
// authenticated session.
//
//	mode-select --SelectMode--> details --Complete--> authenticated
//	     ^                        |                        |
//	     +---------Back-----------+                        |
//	     +-------------------Logout------------------------+
type SessionController struct {
	store    Storage
	keys     KeyGenerator
	planner  *MealPlanner
	shopping *ShoppingListGenerator
	logger   *slog.Logger

	mu         sync.Mutex
	phase      Phase
	mode       model.Mode
	pendingKey string
	dashboard  *Dashboard
}

// NewSessionController creates a SessionController at mode selection.
func NewSessionController(store Storage, keys KeyGenerator, planner *MealPlanner, shopping *ShoppingListGenerator, logger *slog.Logger) *SessionController {
	return &SessionController{
		store:    store,
		keys:     keys,
		planner:  planner,
		shopping: shopping,
		logger:   logger,
		phase:    PhaseModeSelect,
	}
}

// Restore resumes a persisted session, if there is one. Without one, or
// when storage cannot be read, the controller stays at mode selection.
func (c *SessionController) Restore(ctx context.Context) (State, error) {
	c.mu.Lock()
	s, ok, err := c.store.LoadSession(ctx)
	if err != nil {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, fmt.Errorf("restoring session: %w", err)
	}
	if !ok {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, nil
	}
	d := c.authenticate(ctx, s)
	c.mu.Unlock()

	c.logger.Info("session restored",
		slog.String("family", s.FamilyKey),
		slog.String("user", s.UserName),
	)
	d.generateFirstPlan(ctx)
	return c.State(), nil
}

// State returns the current snapshot.
func (c *SessionController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// SelectMode moves onboarding to the details step. Choosing create draws the
// family key right away so it can be shown before the form is submitted.
func (c *SessionController) SelectMode(mode model.Mode) (State, error) {
	if !mode.Valid() {
		return State{}, apperror.ValidationFailed("mode", fmt.Sprintf("unknown mode %q", mode))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseAuthenticated {
		return State{}, apperror.Conflict("already part of a family, log out first")
	}

	c.phase = PhaseDetails
	c.mode = mode
	c.pendingKey = ""
	if mode == model.ModeCreate {
		c.pendingKey = c.keys.Generate()
	}
	return c.stateLocked(), nil
}

// Back returns from the details step to mode selection, dropping any pending key.
func (c *SessionController) Back() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseAuthenticated {
		return State{}, apperror.Conflict("already part of a family, log out first")
	}
	c.resetOnboarding()
	return c.stateLocked(), nil
}

// Complete validates the onboarding form, persists the resulting session and
// opens its dashboard. An invalid form changes nothing.
//
// The first plan is generated after the controller is unlocked, so State and
// Dashboard answer while it is being made.
func (c *SessionController) Complete(ctx context.Context, ob model.Onboarding) (State, error) {
	d, err := c.start(ctx, ob)
	if err != nil {
		return State{}, err
	}
	d.generateFirstPlan(ctx)
	return c.State(), nil
}

func (c *SessionController) start(ctx context.Context, ob model.Onboarding) (*Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseAuthenticated {
		return nil, apperror.Conflict("already part of a family, log out first")
	}

	s, err := c.normalize(ob)
	if err != nil {
		return nil, err
	}

	if err := c.store.SaveSession(ctx, s); err != nil {
		c.logger.Error("failed to save session", slog.String("error", err.Error()))
		return nil, fmt.Errorf("saving session: %w", err)
	}

	d := c.authenticate(ctx, s)
	c.logger.Info("session started",
		slog.String("mode", string(s.Mode)),
		slog.String("family", s.FamilyKey),
		slog.String("user", s.UserName),
	)
	return d, nil
}

// Logout forgets the session on this device. The family's food collection
// stays in storage.
func (c *SessionController) Logout(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.ClearSession(ctx); err != nil {
		c.logger.Error("failed to clear session", slog.String("error", err.Error()))
		return State{}, fmt.Errorf("clearing session: %w", err)
	}

	if c.dashboard != nil {
		c.logger.Info("session ended", slog.String("family", c.dashboard.Session().FamilyKey))
	}
	c.dashboard = nil
	c.resetOnboarding()
	return c.stateLocked(), nil
}

// Dashboard returns the authenticated session's dashboard.
func (c *SessionController) Dashboard() (*Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dashboard == nil {
		return nil, apperror.NoSession()
	}
	return c.dashboard, nil
}

// RefreshPlan regenerates a stale meal plan. Without a session there is
// nothing to refresh.
func (c *SessionController) RefreshPlan(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	d := c.dashboard
	c.mu.Unlock()
	if d == nil {
		return nil
	}

	refreshed, err := d.RefreshIfStale(ctx, now)
	if err != nil {
		return fmt.Errorf("refreshing meal plan: %w", err)
	}
	if refreshed {
		c.logger.Info("stale meal plan refreshed", slog.String("family", d.Session().FamilyKey))
	}
	return nil
}

// normalize turns the onboarding form into a Session.
func (c *SessionController) normalize(ob model.Onboarding) (model.Session, error) {
	switch f := ob.(type) {
	case model.CreateFamily:
		if err := validateMember(f.UserName, f.Avatar); err != nil {
			return model.Session{}, err
		}
		familyName := strings.TrimSpace(f.FamilyName)
		if familyName == "" {
			return model.Session{}, apperror.ValidationFailed("familyName", MsgFamilyNameRequired)
		}
		key := c.pendingKey
		if c.mode != model.ModeCreate || key == "" {
			key = c.keys.Generate()
		}
		return model.Session{
			Mode:       model.ModeCreate,
			FamilyKey:  key,
			FamilyName: familyName,
			UserName:   strings.TrimSpace(f.UserName),
			UserAvatar: f.Avatar,
			IsAdmin:    true,
		}, nil

	case model.JoinFamily:
		if err := validateMember(f.UserName, f.Avatar); err != nil {
			return model.Session{}, err
		}
		if strings.TrimSpace(f.FamilyKey) == "" {
			return model.Session{}, apperror.ValidationFailed("familyKey", MsgFamilyKeyRequired)
		}
		return model.Session{
			Mode:       model.ModeJoin,
			FamilyKey:  f.FamilyKey,
			FamilyName: model.JoinedFamilyName(f.FamilyKey),
			UserName:   strings.TrimSpace(f.UserName),
			UserAvatar: f.Avatar,
			IsAdmin:    false,
		}, nil
	}
	return model.Session{}, apperror.ValidationFailed("mode", "choose to create or join a family")
}

func validateMember(userName, avatar string) error {
	if strings.TrimSpace(userName) == "" {
		return apperror.ValidationFailed("userName", MsgUserNameRequired)
	}
	if !model.IsAvatar(avatar) {
		return apperror.ValidationFailed("avatar", MsgAvatarRequired)
	}
	return nil
}

// authenticate opens the session's dashboard without a plan. Callers generate
// the first plan once c.mu is released.
func (c *SessionController) authenticate(ctx context.Context, s model.Session) *Dashboard {
	c.dashboard = newDashboard(ctx, s, c.store, c.planner, c.shopping, c.logger)
	c.phase = PhaseAuthenticated
	c.mode = s.Mode
	c.pendingKey = ""
	return c.dashboard
}

func (c *SessionController) resetOnboarding() {
	c.phase = PhaseModeSelect
	c.mode = ""
	c.pendingKey = ""
}

func (c *SessionController) stateLocked() State {
	st := State{Phase: c.phase, Mode: c.mode, PendingKey: c.pendingKey}
	if c.dashboard != nil {
		s := c.dashboard.Session()
		st.Session = &s
	}
	return st
}
