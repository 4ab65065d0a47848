package service

import (
	"math/rand/v2"
	"sync"

	"github.com/sakif/family-meal-planner/internal/model"
)

// Selector picks one dish for a meal slot. It reports false when it declines
// to pick, which always happens for an empty candidate list.
type Selector interface {
	Select(candidates []model.FoodItem) (model.FoodItem, bool)
}

// SelectorFunc adapts a plain function to the Selector interface.
type SelectorFunc func(candidates []model.FoodItem) (model.FoodItem, bool)

func (f SelectorFunc) Select(candidates []model.FoodItem) (model.FoodItem, bool) {
	return f(candidates)
}

// RandomSelector picks uniformly among the candidates.
type RandomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSelector returns a selector drawing from rng, or from the
// process-wide source when rng is nil.
func NewRandomSelector(rng *rand.Rand) *RandomSelector {
	return &RandomSelector{rng: rng}
}

func (s *RandomSelector) Select(candidates []model.FoodItem) (model.FoodItem, bool) {
	if len(candidates) == 0 {
		return model.FoodItem{}, false
	}
	if s.rng == nil {
		return candidates[rand.IntN(len(candidates))], true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return candidates[s.rng.IntN(len(candidates))], true
}
