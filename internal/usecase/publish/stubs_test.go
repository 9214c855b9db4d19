package publish_test

import (
	"context"
	"fmt"
	"sync"

	"autopress/internal/domain/entity"
	"autopress/internal/repository"
	"autopress/internal/usecase/publish"
)

// stubArticleRepo is an in-memory ArticleRepository. Patch applies the
// patch to a copy of the matching article so callers observe the same
// read-back semantics as the real repository.
type stubArticleRepo struct {
	mu       sync.Mutex
	drafts   []*entity.Article
	pending  []*entity.Article
	draftErr error
	pendErr  error

	patchCalls []patchCall
	patchErrBy map[int64]error
	panicOn    int64
}

type patchCall struct {
	id    int64
	patch repository.ArticlePatch
}

func (s *stubArticleRepo) ListByStatus(_ context.Context, status string) ([]*entity.Article, error) {
	switch status {
	case entity.StatusDraft:
		return s.drafts, s.draftErr
	case entity.StatusPending:
		return s.pending, s.pendErr
	}
	return nil, nil
}

func (s *stubArticleRepo) Patch(_ context.Context, id int64, patch repository.ArticlePatch) (*entity.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.panicOn == id && id != 0 {
		panic(fmt.Sprintf("storage corrupted for article %d", id))
	}
	s.patchCalls = append(s.patchCalls, patchCall{id: id, patch: patch})
	if err := s.patchErrBy[id]; err != nil {
		return nil, err
	}

	base := &entity.Article{ID: id}
	for _, a := range append(append([]*entity.Article{}, s.drafts...), s.pending...) {
		if a.ID == id {
			copied := *a
			base = &copied
			break
		}
	}
	if patch.Status != nil {
		base.Status = *patch.Status
	}
	if patch.Finished != nil {
		base.Finished = *patch.Finished
	}
	if patch.PublishedAt != nil {
		base.PublishedAt = *patch.PublishedAt
	}
	if patch.ExternalID != nil {
		base.ExternalID = *patch.ExternalID
	}
	if patch.Source != nil {
		base.Source = *patch.Source
	}
	return base, nil
}

// callsFor returns the patches recorded for one article in order.
func (s *stubArticleRepo) callsFor(id int64) []patchCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []patchCall
	for _, c := range s.patchCalls {
		if c.id == id {
			out = append(out, c)
		}
	}
	return out
}

// stubSettingRepo serves settings from a map keyed "provider/key".
type stubSettingRepo struct {
	values map[string]string
	err    error
}

func (s *stubSettingRepo) Get(_ context.Context, provider, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.values[provider+"/"+key]
	if !ok {
		return "", entity.ErrSettingNotFound
	}
	return v, nil
}

// mirrorSettings returns a fully configured settings stub.
func mirrorSettings() *stubSettingRepo {
	return &stubSettingRepo{values: map[string]string{
		publish.MirrorProvider + "/" + publish.MirrorAPIKeyName: "key-abc",
		publish.MirrorProvider + "/" + publish.MirrorBaseIDName: "base-123",
		publish.MirrorProvider + "/" + publish.MirrorTableName:  "Articles",
	}}
}

// stubMirror records CreateRecord calls.
type stubMirror struct {
	recordID string
	err      error

	calls   int
	lastCfg publish.MirrorConfig
	lastRec publish.MirrorRecord
}

func (m *stubMirror) CreateRecord(_ context.Context, cfg publish.MirrorConfig, record publish.MirrorRecord) (string, error) {
	m.calls++
	m.lastCfg = cfg
	m.lastRec = record
	return m.recordID, m.err
}

// stubCrossPoster records PostArticle calls.
type stubCrossPoster struct {
	result publish.CrossPostResult
	err    error

	calls int
	last  *entity.Article
}

func (p *stubCrossPoster) PostArticle(_ context.Context, article *entity.Article) (publish.CrossPostResult, error) {
	p.calls++
	p.last = article
	return p.result, p.err
}
