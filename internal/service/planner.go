package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/family-meal-planner/internal/model"
)

// DateLayout is the format of MealPlan.Date.
const DateLayout = "2006-01-02"

const (
	PlanTheme     = "Balanced & Nutritious 🌱"
	PlanReasoning = "AI selected these healthy, balanced meals from your family's favorite dishes to ensure proper nutrition throughout the day."
)

// DefaultDishes fills a slot that has no candidate in the collection.
var DefaultDishes = map[model.Category]string{
	model.Breakfast: "Poha",
	model.Lunch:     "Dal Tadka with Rice",
	model.Snack:     "Kanda Bhaji",
	model.Dinner:    "Roti with Sabzi",
}

// MealPlanner builds a day's plan by picking one dish per meal slot.
type MealPlanner struct {
	selector Selector
	latency  time.Duration
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewMealPlanner creates a planner. latency delays every Generate call, the
// way a remote planning service would; zero means no delay.
func NewMealPlanner(selector Selector, latency time.Duration, logger *slog.Logger) *MealPlanner {
	return &MealPlanner{
		selector: selector,
		latency:  latency,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return xid.New().String() },
	}
}

// Generate returns a fresh plan for today. Each slot gets the selector's pick
// among the foods of that category, or the slot's default dish. A context
// cancelled during the latency wait yields ctx.Err() and no plan.
func (p *MealPlanner) Generate(ctx context.Context, foods []model.FoodItem) (model.MealPlan, error) {
	if err := wait(ctx, p.latency); err != nil {
		return model.MealPlan{}, err
	}

	byCategory := make(map[model.Category][]model.FoodItem, len(model.Categories))
	for _, f := range foods {
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}

	plan := model.MealPlan{
		ID:        p.newID(),
		Date:      p.now().Format(DateLayout),
		Theme:     PlanTheme,
		Reasoning: PlanReasoning,
	}
	for _, c := range model.Categories {
		dish := DefaultDishes[c]
		if pick, ok := p.selector.Select(byCategory[c]); ok {
			dish = pick.Name
		}
		plan.SetDish(c, dish)
	}

	p.logger.Info("meal plan generated",
		slog.String("id", plan.ID),
		slog.String("date", plan.Date),
		slog.Int("foods", len(foods)),
	)
	return plan, nil
}

// SetFeedback returns a copy of plan carrying the user's reaction. Feedback
// is recorded only; it does not steer later selections.
func (p *MealPlanner) SetFeedback(plan model.MealPlan, liked bool) model.MealPlan {
	plan.Liked = &liked
	return plan
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
