package repository

import "context"

// SettingRepository looks up key/value integration settings scoped by
// provider (e.g. provider "airtable", key "api_key").
type SettingRepository interface {
	// Get returns the setting value. Returns entity.ErrSettingNotFound when
	// the provider/key pair has no row; callers treat that as "integration
	// not configured" rather than an error.
	Get(ctx context.Context, provider, key string) (string, error)
}
