package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"autopress/internal/domain/entity"
	pg "autopress/internal/infra/adapter/persistence/postgres"
	"autopress/internal/repository"
)

func artRow(articles ...*entity.Article) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "content", "hashtags", "image",
		"featured", "status", "scheduled_at", "published_at", "date",
		"external_id", "source", "finished", "created_at", "updated_at",
	})
	for _, a := range articles {
		rows.AddRow(
			a.ID, a.Title, a.Description, a.Content, a.Hashtags, a.Image,
			a.Featured, a.Status, a.ScheduledAt, a.PublishedAt, a.Date,
			a.ExternalID, a.Source, a.Finished, a.CreatedAt, a.UpdatedAt,
		)
	}
	return rows
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestArticleRepo_ListByStatus(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)
	want := []*entity.Article{
		{
			ID: 1, Title: "first", Status: entity.StatusDraft,
			ScheduledAt: "2025-07-18T10:00:00Z",
			CreatedAt:   now, UpdatedAt: now,
		},
		{
			ID: 2, Title: "second", Status: entity.StatusDraft,
			CreatedAt: now, UpdatedAt: now,
		},
	}

	mock.ExpectQuery("FROM articles").
		WithArgs(entity.StatusDraft).
		WillReturnRows(artRow(want...))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListByStatus(context.Background(), entity.StatusDraft)
	if err != nil {
		t.Fatalf("ListByStatus err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_ListByStatus_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").
		WithArgs(entity.StatusPending).
		WillReturnRows(artRow())

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListByStatus(context.Background(), entity.StatusPending)
	if err != nil || len(got) != 0 {
		t.Fatalf("ListByStatus err=%v len=%d", err, len(got))
	}
}

func TestArticleRepo_Patch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)
	want := &entity.Article{
		ID: 1, Title: "first", Status: entity.StatusPublished,
		PublishedAt: "2025-07-19T00:00:00Z", Finished: true,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery("UPDATE articles").
		WithArgs(entity.StatusPublished, true, "2025-07-19T00:00:00Z", int64(1)).
		WillReturnRows(artRow(want))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Patch(context.Background(), 1, repository.ArticlePatch{
		Status:      strPtr(entity.StatusPublished),
		Finished:    boolPtr(true),
		PublishedAt: strPtr("2025-07-19T00:00:00Z"),
	})
	if err != nil {
		t.Fatalf("Patch err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Patch_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("UPDATE articles").
		WithArgs("rec123", "airtable", int64(42)).
		WillReturnRows(artRow())

	repo := pg.NewArticleRepo(db)
	_, err := repo.Patch(context.Background(), 42, repository.ArticlePatch{
		ExternalID: strPtr("rec123"),
		Source:     strPtr("airtable"),
	})
	if !errors.Is(err, entity.ErrArticleNotFound) {
		t.Fatalf("Patch err=%v, want ErrArticleNotFound", err)
	}
}

func TestArticleRepo_Patch_Empty(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := pg.NewArticleRepo(db)
	if _, err := repo.Patch(context.Background(), 1, repository.ArticlePatch{}); err == nil {
		t.Fatal("Patch with empty patch should fail")
	}
}
