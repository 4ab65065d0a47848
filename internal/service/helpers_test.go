package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/family-meal-planner/internal/localstore"
	"github.com/sakif/family-meal-planner/internal/model"
	"github.com/sakif/family-meal-planner/internal/repository/memory"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStorage() *localstore.LocalStore {
	return localstore.New(memory.New(), testLogger())
}

// firstSelector always takes the first candidate, making plans predictable.
var firstSelector = SelectorFunc(func(candidates []model.FoodItem) (model.FoodItem, bool) {
	if len(candidates) == 0 {
		return model.FoodItem{}, false
	}
	return candidates[0], true
})

func newTestPlanner(sel Selector) *MealPlanner {
	p := NewMealPlanner(sel, 0, testLogger())
	p.now = func() time.Time { return testNow }
	return p
}

func newTestShopping() *ShoppingListGenerator {
	return NewShoppingListGenerator(StaticShoppingSource{}, 0, testLogger())
}

// brokenFoodStore loads an empty collection and fails every save.
type brokenFoodStore struct{}

func (brokenFoodStore) LoadFoodItems(context.Context, string) ([]model.FoodItem, error) {
	return []model.FoodItem{}, nil
}

func (brokenFoodStore) SaveFoodItems(context.Context, string, []model.FoodItem) error {
	return errors.New("storage full")
}

// sequenceKeys hands out keys from a fixed list.
type sequenceKeys struct {
	keys []string
	next int
}

func (s *sequenceKeys) Generate() string {
	k := s.keys[s.next%len(s.keys)]
	s.next++
	return k
}

// flakyKV is a memory store whose reads of one key fail until told otherwise.
type flakyKV struct {
	*memory.Store

	mu    sync.Mutex
	key   string
	fails int
}

func newFlakyKV() *flakyKV {
	return &flakyKV{Store: memory.New()}
}

// failNext makes the next read of key fail.
func (f *flakyKV) failNext(key string) {
	f.failReads(key, 1)
}

func (f *flakyKV) failReads(key string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.key, f.fails = key, n
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	fail := key == f.key && f.fails > 0
	if fail {
		f.fails--
	}
	f.mu.Unlock()
	if fail {
		return "", false, errors.New("database is locked")
	}
	return f.Store.Get(ctx, key)
}
