// Package publish implements the publication engine: due-date resolution,
// the publish state transition, best-effort external synchronization, and
// the per-cycle batch runner.
package publish

import (
	"strings"
	"time"

	"autopress/internal/domain/entity"
)

// dueDateLayouts are the timestamp layouts accepted in ScheduledAt,
// PublishedAt and Date. Anything else is treated as unresolved, never as an
// error.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseInstant parses timestamp text against the accepted layouts.
// Date-only values resolve to midnight UTC.
func parseInstant(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ResolveDueDate determines the article's effective scheduled instant.
// ScheduledAt wins; PublishedAt is the fallback. The second return value is
// false when neither field parses.
//
// NOTE: the PublishedAt fallback conflates "when it was scheduled" with
// "when it was already published". An article that was published and then
// reverted to draft keeps its old PublishedAt and will look due
// immediately. Kept for compatibility with existing data.
func ResolveDueDate(article *entity.Article) (time.Time, bool) {
	if ts, ok := parseInstant(article.ScheduledAt); ok {
		return ts, true
	}
	if ts, ok := parseInstant(article.PublishedAt); ok {
		return ts, true
	}
	return time.Time{}, false
}

// IsDue reports whether the article has a resolvable scheduled instant at
// or before now.
func IsDue(article *entity.Article, now time.Time) bool {
	due, ok := ResolveDueDate(article)
	return ok && !due.After(now)
}
