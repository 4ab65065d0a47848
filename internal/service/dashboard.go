package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/sakif/family-meal-planner/internal/apperror"
	"github.com/sakif/family-meal-planner/internal/model"
)

// Dashboard is everything an authenticated device works with: the family's
// food catalog, today's meal plan and, while it is open, the shopping list.
//
// LOCKING:
// mu guards the catalog, plan and list. genMu serialises plan and list
// generation, which may sleep; it is taken before mu and mu is released while
// generating, so reads stay fast during a slow generation.
type Dashboard struct {
	session  model.Session
	planner  *MealPlanner
	shopping *ShoppingListGenerator
	logger   *slog.Logger

	genMu sync.Mutex

	mu      sync.Mutex
	catalog *FoodCatalog
	plan    *model.MealPlan
	list    []model.ShoppingItem // nil while closed
}

// OpenDashboard loads the family's catalog and generates the first plan. A
// failed first generation is logged and leaves the dashboard without a plan.
func OpenDashboard(ctx context.Context, session model.Session, foods FoodStore, planner *MealPlanner, shopping *ShoppingListGenerator, logger *slog.Logger) *Dashboard {
	d := newDashboard(ctx, session, foods, planner, shopping, logger)
	d.generateFirstPlan(ctx)
	return d
}

func newDashboard(ctx context.Context, session model.Session, foods FoodStore, planner *MealPlanner, shopping *ShoppingListGenerator, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		session:  session,
		planner:  planner,
		shopping: shopping,
		logger:   logger,
		catalog:  NewFoodCatalog(ctx, session.FamilyKey, foods, logger),
	}
}

func (d *Dashboard) generateFirstPlan(ctx context.Context) {
	if _, err := d.RegeneratePlan(ctx); err != nil {
		d.logger.Warn("initial meal plan not generated", slog.String("error", err.Error()))
	}
}

// Session returns the session the dashboard was opened for.
func (d *Dashboard) Session() model.Session {
	return d.session
}

// Foods returns the filtered food collection.
func (d *Dashboard) Foods(f model.FoodFilter) []model.FoodItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog.Filter(f)
}

// Contributors returns the distinct family members who added food.
func (d *Dashboard) Contributors() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog.DistinctContributors()
}

// Members is the family roster as this device knows it: the session's user
// first, then everyone else who has added a dish. Seed dishes do not make
// anyone a member.
func (d *Dashboard) Members() []model.FamilyMember {
	d.mu.Lock()
	items := d.catalog.Items()
	d.mu.Unlock()

	members := []model.FamilyMember{{
		Name:          d.session.UserName,
		Avatar:        d.session.UserAvatar,
		IsAdmin:       d.session.IsAdmin,
		IsCurrentUser: true,
	}}
	seen := map[string]bool{d.session.UserName: true, model.SystemContributor: true}
	for _, item := range items {
		if seen[item.AddedBy] {
			continue
		}
		seen[item.AddedBy] = true
		members = append(members, model.FamilyMember{Name: item.AddedBy, Avatar: item.AddedByAvatar})
	}
	return members
}

// AddFood adds a dish on behalf of the session's user.
func (d *Dashboard) AddFood(ctx context.Context, nf model.NewFood) (model.FoodItem, error) {
	nf.AddedBy = d.session.UserName
	nf.AddedByAvatar = d.session.UserAvatar

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog.Add(ctx, nf)
}

// EditFood patches a dish. Unknown ids are reported as not found.
func (d *Dashboard) EditFood(ctx context.Context, id string, patch model.FoodPatch) (model.FoodItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	item, ok, err := d.catalog.Edit(ctx, id, patch)
	if !ok && err == nil {
		return model.FoodItem{}, apperror.NotFound("food item", id)
	}
	return item, err
}

// DeleteFood removes a dish. Unknown ids are reported as not found.
func (d *Dashboard) DeleteFood(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ok, err := d.catalog.Delete(ctx, id)
	if !ok && err == nil {
		return apperror.NotFound("food item", id)
	}
	return err
}

// Plan returns the current meal plan, if one has been generated.
func (d *Dashboard) Plan() (model.MealPlan, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.plan == nil {
		return model.MealPlan{}, false
	}
	return *d.plan, true
}

// RegeneratePlan replaces the current plan with a fresh one built from the
// catalog as it is when generation starts. A catalog that still cannot be
// read from storage fails the generation.
func (d *Dashboard) RegeneratePlan(ctx context.Context) (model.MealPlan, error) {
	d.genMu.Lock()
	defer d.genMu.Unlock()

	d.mu.Lock()
	err := d.catalog.load(ctx)
	foods := d.catalog.Items()
	d.mu.Unlock()
	if err != nil {
		return model.MealPlan{}, err
	}

	plan, err := d.planner.Generate(ctx, foods)
	if err != nil {
		return model.MealPlan{}, err
	}

	d.mu.Lock()
	d.plan = &plan
	d.mu.Unlock()
	return plan, nil
}

// RefreshIfStale regenerates the plan when there is none or it was made for a
// day other than now. It reports whether a new plan was generated.
func (d *Dashboard) RefreshIfStale(ctx context.Context, now time.Time) (bool, error) {
	plan, ok := d.Plan()
	if ok && plan.Date == now.Format(DateLayout) {
		return false, nil
	}
	if _, err := d.RegeneratePlan(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// SetFeedback records whether the user liked the current plan.
func (d *Dashboard) SetFeedback(liked bool) (model.MealPlan, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.plan == nil {
		return model.MealPlan{}, apperror.Missing("meal plan")
	}
	plan := d.planner.SetFeedback(*d.plan, liked)
	d.plan = &plan
	return plan, nil
}

// OpenShoppingList generates a list for the current plan, replacing any list
// that was already open.
func (d *Dashboard) OpenShoppingList(ctx context.Context) ([]model.ShoppingItem, error) {
	d.genMu.Lock()
	defer d.genMu.Unlock()

	plan, ok := d.Plan()
	if !ok {
		return nil, apperror.Missing("meal plan")
	}

	items, err := d.shopping.Generate(ctx, plan)
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []model.ShoppingItem{}
	}

	d.mu.Lock()
	d.list = items
	d.mu.Unlock()
	return slices.Clone(items), nil
}

// ShoppingList returns the open list.
func (d *Dashboard) ShoppingList() ([]model.ShoppingItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.list == nil {
		return nil, apperror.Missing("shopping list")
	}
	return slices.Clone(d.list), nil
}

// ToggleShoppingItem flips one item of the open list.
func (d *Dashboard) ToggleShoppingItem(id string) ([]model.ShoppingItem, error) {
	return d.updateList(func(items []model.ShoppingItem) ([]model.ShoppingItem, error) {
		if !slices.ContainsFunc(items, func(it model.ShoppingItem) bool { return it.ID == id }) {
			return nil, apperror.NotFound("shopping item", id)
		}
		return Toggle(items, id), nil
	})
}

// ResetShoppingList unchecks every item of the open list.
func (d *Dashboard) ResetShoppingList() ([]model.ShoppingItem, error) {
	return d.updateList(func(items []model.ShoppingItem) ([]model.ShoppingItem, error) {
		return ResetAll(items), nil
	})
}

// CheckAllShoppingItems checks every item of the open list.
func (d *Dashboard) CheckAllShoppingItems() ([]model.ShoppingItem, error) {
	return d.updateList(func(items []model.ShoppingItem) ([]model.ShoppingItem, error) {
		return CheckAll(items), nil
	})
}

// CloseShoppingList discards the open list. Closing a closed list is a no-op.
func (d *Dashboard) CloseShoppingList() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.list = nil
}

func (d *Dashboard) updateList(fn func([]model.ShoppingItem) ([]model.ShoppingItem, error)) ([]model.ShoppingItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.list == nil {
		return nil, apperror.Missing("shopping list")
	}
	next, err := fn(d.list)
	if err != nil {
		return nil, err
	}
	d.list = next
	return slices.Clone(next), nil
}
