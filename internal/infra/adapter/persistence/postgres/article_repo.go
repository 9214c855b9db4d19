// Package postgres implements the repository interfaces on top of
// database/sql with the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"autopress/internal/domain/entity"
	"autopress/internal/repository"
)

const articleColumns = `id, title, description, content, hashtags, image, featured,
status, scheduled_at, published_at, date, external_id, source, finished,
created_at, updated_at`

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

func scanArticle(row interface{ Scan(...any) error }) (*entity.Article, error) {
	var (
		article     entity.Article
		description sql.NullString
		content     sql.NullString
		hashtags    sql.NullString
		image       sql.NullString
		featured    sql.NullString
		scheduledAt sql.NullString
		publishedAt sql.NullString
		date        sql.NullString
		externalID  sql.NullString
		source      sql.NullString
	)
	if err := row.Scan(&article.ID, &article.Title, &description, &content,
		&hashtags, &image, &featured, &article.Status, &scheduledAt,
		&publishedAt, &date, &externalID, &source, &article.Finished,
		&article.CreatedAt, &article.UpdatedAt); err != nil {
		return nil, err
	}
	article.Description = description.String
	article.Content = content.String
	article.Hashtags = hashtags.String
	article.Image = image.String
	article.Featured = featured.String
	article.ScheduledAt = scheduledAt.String
	article.PublishedAt = publishedAt.String
	article.Date = date.String
	article.ExternalID = externalID.String
	article.Source = source.String
	return &article, nil
}

// ListByStatus returns all articles with the given status ordered by id, so
// cycle batches are deterministic.
func (repo *ArticleRepo) ListByStatus(ctx context.Context, status string) ([]*entity.Article, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM articles
WHERE status = $1
ORDER BY id`, articleColumns)

	rows, err := repo.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("ListByStatus: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 32)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByStatus: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// Patch applies a partial update and returns the updated row. A patch that
// matches no row yields entity.ErrArticleNotFound.
func (repo *ArticleRepo) Patch(ctx context.Context, id int64, patch repository.ArticlePatch) (*entity.Article, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("Patch: empty patch for article %d", id)
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Finished != nil {
		add("finished", *patch.Finished)
	}
	if patch.PublishedAt != nil {
		add("published_at", *patch.PublishedAt)
	}
	if patch.ExternalID != nil {
		add("external_id", *patch.ExternalID)
	}
	if patch.Source != nil {
		add("source", *patch.Source)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`
UPDATE articles
SET %s
WHERE id = $%d
RETURNING %s`, strings.Join(sets, ", "), len(args), articleColumns)

	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Patch: article %d: %w", id, entity.ErrArticleNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Patch: %w", err)
	}
	return article, nil
}
