package localstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/family-meal-planner/internal/model"
	"github.com/sakif/family-meal-planner/internal/repository/memory"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*LocalStore, *memory.Store) {
	t.Helper()
	kv := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ls := New(kv, logger)
	ls.now = func() time.Time { return fixedNow }
	return ls, kv
}

// failingStore errors on every call, like a storage backend that went away.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("disk on fire") }
func (failingStore) Remove(context.Context, string) error      { return errors.New("disk on fire") }

// flakyStore is a memory store whose reads of one key can be made to fail.
type flakyStore struct {
	*memory.Store
	key   string
	fails int
}

func newFlakyStore(t *testing.T) (*LocalStore, *flakyStore) {
	t.Helper()
	kv := &flakyStore{Store: memory.New()}
	ls := New(kv, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ls.now = func() time.Time { return fixedNow }
	return ls, kv
}

func (f *flakyStore) failNext(key string, n int) {
	f.key, f.fails = key, n
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == f.key && f.fails > 0 {
		f.fails--
		return "", false, errors.New("database is locked")
	}
	return f.Store.Get(ctx, key)
}

var sampleSession = model.Session{
	Mode:       model.ModeCreate,
	FamilyKey:  "sunny-curry-feast",
	FamilyName: "Patil Family",
	UserName:   "Asha",
	UserAvatar: "🍳",
	IsAdmin:    true,
}

func TestSession_RoundTrip(t *testing.T) {
	ls, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, ls.SaveSession(ctx, sampleSession))

	got, ok, err := ls.LoadSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleSession, got)
}

func TestSaveSession_WritesLegacyKeys(t *testing.T) {
	ls, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, ls.SaveSession(ctx, sampleSession))

	for key, want := range map[string]string{
		KeyFamilyKey:  "sunny-curry-feast",
		KeyUserName:   "Asha",
		KeyUserAvatar: "🍳",
	} {
		got, ok, _ := kv.Get(ctx, key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
}

func TestLoadSession_Empty(t *testing.T) {
	ls, _ := newTestStore(t)

	_, ok, err := ls.LoadSession(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadSession_LegacyKeysOnly(t *testing.T) {
	ls, kv := newTestStore(t)
	ctx := context.Background()
	kv.Set(ctx, KeyFamilyKey, "calm-river-home")
	kv.Set(ctx, KeyUserName, "Ravi")
	kv.Set(ctx, KeyUserAvatar, "🥕")

	got, ok, err := ls.LoadSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.Session{
		Mode:       model.ModeJoin,
		FamilyKey:  "calm-river-home",
		FamilyName: "Family of calm-river-home",
		UserName:   "Ravi",
		UserAvatar: "🥕",
		IsAdmin:    false,
	}, got)
}

func TestLoadSession_IncompleteLegacyKeys(t *testing.T) {
	ls, kv := newTestStore(t)
	ctx := context.Background()
	kv.Set(ctx, KeyFamilyKey, "calm-river-home")
	kv.Set(ctx, KeyUserName, "Ravi")

	_, ok, err := ls.LoadSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadSession_Corrupt(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not json", "{oops"},
		{"unknown mode", `{"mode":"spectate","familyKey":"a-b-c"}`},
		{"missing key", `{"mode":"join","userName":"Ravi"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls, kv := newTestStore(t)
			ctx := context.Background()
			kv.Set(ctx, KeySession, tt.value)

			_, ok, err := ls.LoadSession(ctx)
			require.NoError(t, err)
			assert.False(t, ok)

			_, stillThere, _ := kv.Get(ctx, KeySession)
			assert.False(t, stillThere, "corrupt session should be removed")
		})
	}
}

func TestLoadSession_CorruptFallsBackToLegacy(t *testing.T) {
	ls, kv := newTestStore(t)
	ctx := context.Background()
	kv.Set(ctx, KeySession, "[]")
	kv.Set(ctx, KeyFamilyKey, "calm-river-home")
	kv.Set(ctx, KeyUserName, "Ravi")
	kv.Set(ctx, KeyUserAvatar, "🥕")

	got, ok, err := ls.LoadSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "calm-river-home", got.FamilyKey)
}

func TestLoadSession_StoreFailure(t *testing.T) {
	ls := New(failingStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, ok, err := ls.LoadSession(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestLoadSession_ReadFailureSkipsLegacyKeys(t *testing.T) {
	ls, kv := newFlakyStore(t)
	ctx := context.Background()
	require.NoError(t, ls.SaveSession(ctx, sampleSession))

	kv.failNext(KeySession, 1)
	_, ok, err := ls.LoadSession(ctx)
	require.Error(t, err)
	assert.False(t, ok, "an admin must not come back as a joined member")

	got, ok, err := ls.LoadSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleSession, got)
}

func TestLoadSession_LegacyReadFailure(t *testing.T) {
	ls, kv := newFlakyStore(t)
	ctx := context.Background()
	kv.Set(ctx, KeyFamilyKey, "calm-river-home")
	kv.Set(ctx, KeyUserName, "Ravi")
	kv.Set(ctx, KeyUserAvatar, "🥕")

	kv.failNext(KeyUserName, 1)
	_, ok, err := ls.LoadSession(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestClearSession_KeepsFoods(t *testing.T) {
	ls, kv := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, ls.SaveSession(ctx, sampleSession))
	require.NoError(t, ls.SaveFoodItems(ctx, sampleSession.FamilyKey, SeedFoods(fixedNow)[:2]))

	require.NoError(t, ls.ClearSession(ctx))

	_, ok, err := ls.LoadSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{FoodsKey(sampleSession.FamilyKey)}, kv.Keys())
}

func TestFoodItems_RoundTrip(t *testing.T) {
	ls, _ := newTestStore(t)
	ctx := context.Background()

	items := []model.FoodItem{
		{
			ID: "b", Name: "Sabudana Khichdi", Description: "Tapioca pearls",
			Category: model.Breakfast, Type: model.Veg,
			AddedBy: "Asha", AddedByAvatar: "🍳", CreatedAt: fixedNow.Add(time.Hour),
		},
		{
			ID: "a", Name: "Kombdi Vade", Description: "",
			Category: model.Dinner, Type: model.NonVeg,
			AddedBy: "Ravi", AddedByAvatar: "🥕", CreatedAt: fixedNow,
		},
	}
	require.NoError(t, ls.SaveFoodItems(ctx, "k", items))

	got, err := ls.LoadFoodItems(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestFoodItems_RoundTripWallClock(t *testing.T) {
	ls, _ := newTestStore(t)
	ctx := context.Background()

	items := []model.FoodItem{{
		ID: "x", Name: "Thalipeeth", Category: model.Breakfast, Type: model.Veg,
		AddedBy: "Asha", AddedByAvatar: "🍳", CreatedAt: model.Timestamp(time.Now()),
	}}
	require.NoError(t, ls.SaveFoodItems(ctx, "k", items))

	got, err := ls.LoadFoodItems(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestFoodItems_EmptyStaysEmpty(t *testing.T) {
	ls, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, ls.SaveFoodItems(ctx, "k", nil))

	got, err := ls.LoadFoodItems(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFoodItems_PerFamily(t *testing.T) {
	ls, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, ls.SaveFoodItems(ctx, "one", []model.FoodItem{{ID: "x", Name: "Usal"}}))

	one, err := ls.LoadFoodItems(ctx, "one")
	require.NoError(t, err)
	assert.Len(t, one, 1)
	two, err := ls.LoadFoodItems(ctx, "two")
	require.NoError(t, err)
	assert.Len(t, two, len(seedDishes))
}

func TestLoadFoodItems_MissingReturnsSeed(t *testing.T) {
	ls, _ := newTestStore(t)

	got, err := ls.LoadFoodItems(context.Background(), "new-family")
	require.NoError(t, err)

	require.Len(t, got, 10)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "Poha", got[0].Name)
	assert.Equal(t, model.Dinner, got[3].Category)
	assert.Equal(t, model.NonVeg, got[3].Type)
	for _, item := range got {
		assert.Equal(t, "System", item.AddedBy)
		assert.Equal(t, "🏠", item.AddedByAvatar)
		assert.Equal(t, fixedNow, item.CreatedAt)
	}
}

func TestLoadFoodItems_CorruptReturnsSeed(t *testing.T) {
	ls, kv := newTestStore(t)
	ctx := context.Background()
	kv.Set(ctx, FoodsKey("k"), `{"not":"a list"}`)

	got, err := ls.LoadFoodItems(ctx, "k")

	require.NoError(t, err)
	assert.Len(t, got, 10)
	_, stillThere, _ := kv.Get(ctx, FoodsKey("k"))
	assert.False(t, stillThere)
}

func TestLoadFoodItems_ReadFailureKeepsCollection(t *testing.T) {
	ls, kv := newFlakyStore(t)
	ctx := context.Background()
	stored := []model.FoodItem{{ID: "x", Name: "Thalipeeth", Category: model.Breakfast, Type: model.Veg}}
	require.NoError(t, ls.SaveFoodItems(ctx, "k", stored))

	kv.failNext(FoodsKey("k"), 1)
	got, err := ls.LoadFoodItems(ctx, "k")
	require.Error(t, err)
	assert.Nil(t, got, "no seed dishes on a failed read")

	got, err = ls.LoadFoodItems(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestSaveFoodItems_StoreFailure(t *testing.T) {
	ls := New(failingStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := ls.SaveFoodItems(context.Background(), "k", nil)
	assert.Error(t, err)
}
