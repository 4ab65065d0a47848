// Package localstore persists the planner's device-local state: the active
// session, the legacy per-field session keys, and one food collection per family.
//
// A value that cannot be decoded is removed and replaced by its default, so a
// corrupted key costs the user that value and nothing else. A value that could
// not be read at all is reported as an error and left in place.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/family-meal-planner/internal/model"
	"github.com/sakif/family-meal-planner/internal/repository"
)

// Storage keys. They match what the browser version of the app wrote, so a
// migrated store keeps working.
const (
	KeySession    = "session"
	KeyFamilyKey  = "family_key"
	KeyUserName   = "user_name"
	KeyUserAvatar = "user_avatar"

	foodsKeyPrefix = "foods_"
)

// FoodsKey is the storage key of a family's food collection.
func FoodsKey(familyKey string) string {
	return foodsKeyPrefix + familyKey
}

// LocalStore reads and writes planner state through a KeyValueStore.
type LocalStore struct {
	kv     repository.KeyValueStore
	logger *slog.Logger
	now    func() time.Time
}

// New creates a LocalStore on top of kv.
func New(kv repository.KeyValueStore, logger *slog.Logger) *LocalStore {
	return &LocalStore{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// SaveSession persists s, both as one JSON record and as the legacy
// family_key/user_name/user_avatar keys.
func (l *LocalStore) SaveSession(ctx context.Context, s model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("localstore: encoding session: %w", err)
	}
	if err := l.kv.Set(ctx, KeySession, string(data)); err != nil {
		return fmt.Errorf("localstore: saving session: %w", err)
	}

	legacy := map[string]string{
		KeyFamilyKey:  s.FamilyKey,
		KeyUserName:   s.UserName,
		KeyUserAvatar: s.UserAvatar,
	}
	for key, value := range legacy {
		if err := l.kv.Set(ctx, key, value); err != nil {
			return fmt.Errorf("localstore: saving %s: %w", key, err)
		}
	}

	return nil
}

// LoadSession returns the persisted session, if any.
//
// The JSON record wins. Without one (or when it cannot be decoded) the legacy
// keys are consulted; a device that only has those restores as a member who
// joined, since nothing records that it created the family. A failing store
// is an error, never a reason to fall back.
func (l *LocalStore) LoadSession(ctx context.Context) (model.Session, bool, error) {
	raw, ok, err := l.read(ctx, KeySession)
	if err != nil {
		return model.Session{}, false, err
	}
	if ok {
		var s model.Session
		err := json.Unmarshal([]byte(raw), &s)
		if err == nil && s.Mode.Valid() && s.FamilyKey != "" {
			return s, true, nil
		}
		l.discard(ctx, KeySession, "unreadable session", err)
	}

	legacy := make(map[string]string, 3)
	for _, key := range []string{KeyFamilyKey, KeyUserName, KeyUserAvatar} {
		value, _, err := l.read(ctx, key)
		if err != nil {
			return model.Session{}, false, err
		}
		legacy[key] = value
	}
	familyKey, userName, avatar := legacy[KeyFamilyKey], legacy[KeyUserName], legacy[KeyUserAvatar]
	if familyKey == "" || userName == "" || avatar == "" {
		return model.Session{}, false, nil
	}

	l.logger.Info("session restored from legacy keys", slog.String("familyKey", familyKey))
	return model.Session{
		Mode:       model.ModeJoin,
		FamilyKey:  familyKey,
		FamilyName: model.JoinedFamilyName(familyKey),
		UserName:   userName,
		UserAvatar: avatar,
	}, true, nil
}

// ClearSession forgets the active session. Food collections are kept so the
// family's dishes are still there when someone rejoins with the same key.
func (l *LocalStore) ClearSession(ctx context.Context) error {
	for _, key := range []string{KeySession, KeyFamilyKey, KeyUserName, KeyUserAvatar} {
		if err := l.kv.Remove(ctx, key); err != nil {
			return fmt.Errorf("localstore: clearing %s: %w", key, err)
		}
	}
	return nil
}

// SaveFoodItems replaces a family's stored food collection.
func (l *LocalStore) SaveFoodItems(ctx context.Context, familyKey string, items []model.FoodItem) error {
	if items == nil {
		items = []model.FoodItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("localstore: encoding food items: %w", err)
	}
	if err := l.kv.Set(ctx, FoodsKey(familyKey), string(data)); err != nil {
		return fmt.Errorf("localstore: saving food items for %s: %w", familyKey, err)
	}
	return nil
}

// LoadFoodItems returns a family's food collection. A family that has never
// saved one, or whose stored collection cannot be decoded, starts from
// SeedFoods. When the store itself fails the error is returned and nothing is
// seeded, so the caller cannot overwrite a collection it never saw.
func (l *LocalStore) LoadFoodItems(ctx context.Context, familyKey string) ([]model.FoodItem, error) {
	key := FoodsKey(familyKey)

	raw, ok, err := l.read(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return SeedFoods(l.now()), nil
	}

	var items []model.FoodItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		l.discard(ctx, key, "unreadable food collection", err)
		return SeedFoods(l.now()), nil
	}
	if items == nil {
		items = []model.FoodItem{}
	}
	return items, nil
}

func (l *LocalStore) read(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := l.kv.Get(ctx, key)
	if err != nil {
		l.logger.Error("storage read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return "", false, fmt.Errorf("localstore: reading %s: %w", key, err)
	}
	return value, ok, nil
}

// discard removes a value that could not be used.
func (l *LocalStore) discard(ctx context.Context, key, reason string, cause error) {
	attrs := []any{slog.String("key", key)}
	if cause != nil {
		attrs = append(attrs, slog.String("error", cause.Error()))
	}
	l.logger.Warn(reason+", discarding", attrs...)

	if err := l.kv.Remove(ctx, key); err != nil {
		l.logger.Error("failed to remove corrupt value",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
