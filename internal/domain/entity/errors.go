package entity

import "errors"

// Sentinel errors for domain layer operations.
var (
	// ErrArticleNotFound indicates that an article update or lookup matched
	// no row. For the publish pipeline this is the "patch did not take
	// effect" signal.
	ErrArticleNotFound = errors.New("article not found")

	// ErrSettingNotFound indicates that an integration setting is absent.
	// Callers treat this as "integration not configured", not a failure.
	ErrSettingNotFound = errors.New("integration setting not found")
)
