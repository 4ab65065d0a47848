// Package repository declares the storage contracts the rest of the app depends on.
package repository

import "context"

// KeyValueStore is the device-local storage everything persists through.
// Values are opaque text; callers decide how to encode them.
//
// Get reports ok=false for a missing key; err is reserved for the store
// itself failing.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
