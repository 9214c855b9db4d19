// Package entity defines the core domain entities for the publication
// scheduler: the Article with its lifecycle statuses, and domain-specific
// errors.
package entity

import "time"

// Article statuses relevant to the publication scheduler. Other status
// values exist in the database (e.g. archived) but the scheduler only ever
// reads draft/pending and writes published.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPublished = "published"
)

// FeaturedYes is the value of the Featured flag that marks an article as
// featured. Any other value (including empty) means not featured.
const FeaturedYes = "yes"

// Article represents a content record in the system.
//
// ScheduledAt, PublishedAt and Date carry timestamp text exactly as it was
// authored; unparsable values are tolerated data, not an error. Resolving
// them into instants is the publish use case's job.
type Article struct {
	ID          int64
	Title       string
	Description string
	Content     string
	Hashtags    string
	Image       string
	Featured    string // "yes" means featured

	Status      string
	ScheduledAt string
	PublishedAt string
	Date        string

	// ExternalID is the identifier of this article's record in the external
	// tabular mirror. Non-empty means the article is already mirrored; the
	// scheduler never clears or overwrites it.
	ExternalID string
	// Source is the provenance tag, set to the mirror's name once pushed.
	Source string
	// Finished is a completion flag independent of Status; it is mirrored
	// into the external system.
	Finished bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPublishCandidate reports whether the article's status makes it eligible
// for the publication scan.
func (a *Article) IsPublishCandidate() bool {
	return a.Status == StatusDraft || a.Status == StatusPending
}

// IsFeatured reports whether the boolean-like Featured flag is set.
func (a *Article) IsFeatured() bool {
	return a.Featured == FeaturedYes
}
