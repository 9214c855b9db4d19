package db

import "database/sql"

// MigrateUp creates the tables the worker depends on. Statements are
// idempotent so the worker can run them on every boot.
func MigrateUp(database *sql.DB) error {
	if _, err := database.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id            SERIAL PRIMARY KEY,
    title         TEXT NOT NULL,
    description   TEXT,
    content       TEXT,
    hashtags      TEXT,
    image         TEXT,
    featured      TEXT,
    status        VARCHAR(20) NOT NULL DEFAULT 'draft',
    scheduled_at  TEXT,
    published_at  TEXT,
    date          TEXT,
    external_id   TEXT,
    source        TEXT,
    finished      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := database.Exec(`
CREATE TABLE IF NOT EXISTS integration_settings (
    id        SERIAL PRIMARY KEY,
    provider  TEXT NOT NULL,
    key       TEXT NOT NULL,
    value     TEXT NOT NULL,
    UNIQUE (provider, key)
)`); err != nil {
		return err
	}

	// The cycle scan always filters on status.
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_external_id ON articles(external_id)`,
	}
	for _, idx := range indexes {
		if _, err := database.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}
