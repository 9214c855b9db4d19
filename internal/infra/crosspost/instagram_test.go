package crosspost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"autopress/internal/domain/entity"
)

func testArticle() *entity.Article {
	return &entity.Article{
		ID:          1,
		Title:       "Go 1.24 released",
		Description: "what's new",
		Hashtags:    "#golang",
		Image:       "https://cdn.example.com/go.png",
		Status:      entity.StatusPublished,
	}
}

func newTestClient(baseURL string) *Client {
	c := NewClient(InstagramConfig{
		Enabled:     true,
		AccessToken: "token",
		AccountID:   "17841400000000000",
		Timeout:     5 * time.Second,
	})
	c.BaseURL = baseURL
	return c
}

func TestClient_PostArticle(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		var params map[string]string
		_ = json.NewDecoder(r.Body).Decode(&params)

		switch {
		case strings.HasSuffix(r.URL.Path, "/media"):
			if !strings.Contains(params["caption"], "Go 1.24 released") {
				t.Errorf("caption missing title: %q", params["caption"])
			}
			_, _ = w.Write([]byte(`{"id":"container1"}`))
		case strings.HasSuffix(r.URL.Path, "/media_publish"):
			if params["creation_id"] != "container1" {
				t.Errorf("creation_id = %q, want container1", params["creation_id"])
			}
			_, _ = w.Write([]byte(`{"id":"post1"}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	got, err := client.PostArticle(context.Background(), testArticle())
	if err != nil {
		t.Fatalf("PostArticle err=%v", err)
	}
	if !got.Success {
		t.Fatalf("PostArticle = %+v, want success", got)
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want media then media_publish", calls)
	}
}

func TestClient_PostArticle_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid image URL","type":"OAuthException","code":100}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	got, err := client.PostArticle(context.Background(), testArticle())
	if err != nil {
		t.Fatalf("PostArticle err=%v, API rejections should travel in the result", err)
	}
	if got.Success {
		t.Fatal("PostArticle reported success on API error")
	}
	if got.Message != "Invalid image URL" {
		t.Errorf("Message = %q, want API error message", got.Message)
	}
}

func TestClient_PostArticle_NoImage(t *testing.T) {
	client := newTestClient("http://unused.invalid")
	article := testArticle()
	article.Image = ""

	got, err := client.PostArticle(context.Background(), article)
	if err != nil {
		t.Fatalf("PostArticle err=%v", err)
	}
	if got.Success {
		t.Fatal("PostArticle should not succeed without an image")
	}
}

func TestClient_PostArticle_NotConfigured(t *testing.T) {
	client := NewClient(InstagramConfig{Enabled: false})
	got, err := client.PostArticle(context.Background(), testArticle())
	if err != nil || got.Success {
		t.Fatalf("PostArticle = (%+v, %v), want unconfigured skip", got, err)
	}
}

func TestBuildCaption_Truncation(t *testing.T) {
	article := testArticle()
	article.Description = strings.Repeat("x", 3000)

	caption := buildCaption(article)
	if len(caption) > maxCaptionLength {
		t.Fatalf("caption length = %d, want <= %d", len(caption), maxCaptionLength)
	}
	if !strings.HasPrefix(caption, "Go 1.24 released") {
		t.Errorf("caption should start with the title")
	}
}
