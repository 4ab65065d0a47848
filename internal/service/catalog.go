// Package service holds the planner's business logic.
//
// THE LAYERS:
//
//	Handler (HTTP)      → parses requests, writes JSON and notices
//	Service (this)      → validates, owns in-memory state, decides what to persist
//	LocalStore          → turns state into key-value pairs
//
// Services take their collaborators as interfaces (FoodStore, SessionStore,
// Selector, KeyGenerator) so tests can hand them in-memory fakes and seeded
// randomness. Nothing in this package imports net/http.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/family-meal-planner/internal/apperror"
	"github.com/sakif/family-meal-planner/internal/model"
)

// Validation messages shown to the user as-is.
const (
	MsgFoodNameRequired = "Please enter a food name"
)

// FoodStore persists one food collection per family. localstore.LocalStore
// is the production implementation.
//
// LoadFoodItems returns an error only when the store could not be read; a
// family without a collection gets the store's default dishes.
type FoodStore interface {
	LoadFoodItems(ctx context.Context, familyKey string) ([]model.FoodItem, error)
	SaveFoodItems(ctx context.Context, familyKey string, items []model.FoodItem) error
}

// FoodCatalog is the ordered food collection of one family.
//
// A FoodCatalog is not safe for concurrent use; Dashboard serialises access.
//
// Until the collection has been read from the store the catalog is empty and
// refuses changes. Every change retries the read first.
type FoodCatalog struct {
	familyKey string
	store     FoodStore
	logger    *slog.Logger

	now   func() time.Time
	newID func() string

	items  []model.FoodItem
	loaded bool
}

// NewFoodCatalog loads the family's collection from store. A family without a
// stored collection starts from the store's seed dishes.
func NewFoodCatalog(ctx context.Context, familyKey string, store FoodStore, logger *slog.Logger) *FoodCatalog {
	c := &FoodCatalog{
		familyKey: familyKey,
		store:     store,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return xid.New().String() },
		items:     []model.FoodItem{},
	}
	c.load(ctx)
	return c
}

// Loaded reports whether the collection has been read from the store.
func (c *FoodCatalog) Loaded() bool {
	return c.loaded
}

// Items returns a copy of the collection in insertion order.
func (c *FoodCatalog) Items() []model.FoodItem {
	return slices.Clone(c.items)
}

// Add validates nf, appends it as a new item and persists the collection.
//
// The name is trimmed and required. An empty category means lunch and an
// empty type means veg, matching the defaults of the add form.
//
// When only the save fails, the item is still returned together with the
// error: the in-memory collection already holds it.
func (c *FoodCatalog) Add(ctx context.Context, nf model.NewFood) (model.FoodItem, error) {
	if err := c.load(ctx); err != nil {
		return model.FoodItem{}, err
	}

	name := strings.TrimSpace(nf.Name)
	if name == "" {
		return model.FoodItem{}, apperror.ValidationFailed("name", MsgFoodNameRequired)
	}

	category := nf.Category
	if category == "" {
		category = model.Lunch
	}
	foodType := nf.Type
	if foodType == "" {
		foodType = model.Veg
	}
	if err := validateKinds(category, foodType); err != nil {
		return model.FoodItem{}, err
	}

	item := model.FoodItem{
		ID:            c.newID(),
		Name:          name,
		Description:   strings.TrimSpace(nf.Description),
		Category:      category,
		Type:          foodType,
		AddedBy:       nf.AddedBy,
		AddedByAvatar: nf.AddedByAvatar,
		CreatedAt:     model.Timestamp(c.now()),
	}
	c.items = append(c.items, item)

	c.logger.Info("food added",
		slog.String("family", c.familyKey),
		slog.String("id", item.ID),
		slog.String("name", item.Name),
	)

	return item, c.persist(ctx)
}

// Edit applies the non-nil fields of patch to the item with the given id.
// The id and creation time never change. An unknown id reports false and
// leaves the collection untouched.
func (c *FoodCatalog) Edit(ctx context.Context, id string, patch model.FoodPatch) (model.FoodItem, bool, error) {
	if err := c.load(ctx); err != nil {
		return model.FoodItem{}, false, err
	}

	i := c.indexOf(id)
	if i < 0 {
		return model.FoodItem{}, false, nil
	}

	updated := c.items[i]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.FoodItem{}, true, apperror.ValidationFailed("name", MsgFoodNameRequired)
		}
		updated.Name = name
	}
	if patch.Description != nil {
		updated.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	if patch.Type != nil {
		updated.Type = *patch.Type
	}
	if err := validateKinds(updated.Category, updated.Type); err != nil {
		return model.FoodItem{}, true, err
	}

	c.items[i] = updated
	c.logger.Info("food updated", slog.String("family", c.familyKey), slog.String("id", id))

	return updated, true, c.persist(ctx)
}

// Delete removes the item with the given id. Deleting an unknown id is a
// no-op that reports false.
func (c *FoodCatalog) Delete(ctx context.Context, id string) (bool, error) {
	if err := c.load(ctx); err != nil {
		return false, err
	}

	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}

	c.items = slices.Delete(c.items, i, i+1)
	c.logger.Info("food deleted", slog.String("family", c.familyKey), slog.String("id", id))

	return true, c.persist(ctx)
}

// Filter returns the items matching every dimension of f, in collection order.
func (c *FoodCatalog) Filter(f model.FoodFilter) []model.FoodItem {
	search := strings.ToLower(f.Search)

	out := make([]model.FoodItem, 0, len(c.items))
	for _, item := range c.items {
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Name), search) &&
			!strings.Contains(strings.ToLower(item.Description), search) {
			continue
		}
		if !matches(f.Category, string(item.Category)) ||
			!matches(f.Type, string(item.Type)) ||
			!matches(f.AddedBy, item.AddedBy) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// DistinctContributors lists each addedBy value once, in the order it first
// appears in the collection.
func (c *FoodCatalog) DistinctContributors() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, item := range c.items {
		if seen[item.AddedBy] {
			continue
		}
		seen[item.AddedBy] = true
		out = append(out, item.AddedBy)
	}
	return out
}

func (c *FoodCatalog) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(item model.FoodItem) bool { return item.ID == id })
}

// load reads the collection unless that already succeeded.
func (c *FoodCatalog) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	items, err := c.store.LoadFoodItems(ctx, c.familyKey)
	if err != nil {
		c.logger.Warn("food collection unavailable",
			slog.String("family", c.familyKey),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("loading food collection: %w", err)
	}
	c.items = items
	c.loaded = true
	return nil
}

func (c *FoodCatalog) persist(ctx context.Context) error {
	if err := c.store.SaveFoodItems(ctx, c.familyKey, c.items); err != nil {
		c.logger.Error("failed to save food collection",
			slog.String("family", c.familyKey),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("saving food collection: %w", err)
	}
	return nil
}

// matches reports whether value passes a single filter dimension.
func matches(want, value string) bool {
	return want == "" || want == model.FilterAll || want == value
}

func validateKinds(category model.Category, foodType model.FoodType) error {
	if !category.Valid() {
		return apperror.ValidationFailed("category", fmt.Sprintf("unknown category %q", category))
	}
	if !foodType.Valid() {
		return apperror.ValidationFailed("type", fmt.Sprintf("unknown food type %q", foodType))
	}
	return nil
}
