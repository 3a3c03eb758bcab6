package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/goextract/internal/failure"
	"github.com/hyperifyio/goextract/internal/fetch"
)

func postPayload(id, title string) string {
	return fmt.Sprintf(`[{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":%q,"title":%q,"subreddit":"golang"}}]}},{"kind":"Listing","data":{"children":[]}}]`, id, title)
}

// fakeReddit serves post, new and about endpoints. The first post answers
// late so completion order differs from listing order.
func fakeReddit(t *testing.T, ids []string, failing string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/r/golang/new.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") == "" {
			t.Errorf("expected limit query parameter")
		}
		children := make([]string, 0, len(ids)+1)
		for _, id := range ids {
			children = append(children, fmt.Sprintf(`{"kind":"t3","data":{"id":%q}}`, id))
		}
		children = append(children, `{"kind":"more","data":{"id":"zzz"}}`)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"kind":"Listing","data":{"children":[%s]}}`, strings.Join(children, ","))
	})
	mux.HandleFunc("/comments/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/comments/"), ".json")
		if id == failing {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if id == ids[0] {
			time.Sleep(50 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(postPayload(id, "title "+id)))
	})
	mux.HandleFunc("/r/golang/about.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"t5","data":{"display_name":"golang","icon_img":"","community_icon":"https://styles.redditmedia.com/icon.png?width=256&amp;s=1"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func clientsFor(srv *httptest.Server) (*PostClient, *SubredditClient, Options) {
	o := DefaultOptions()
	o.BaseURL = srv.URL
	hc := &fetch.Client{UserAgent: "goextract-test", PerRequestTimeout: 2 * time.Second}
	posts := NewPostClient(hc, o)
	return posts, NewSubredditClient(hc, posts, o), o
}

func TestPostClient_FetchesAndTransforms(t *testing.T) {
	srv := fakeReddit(t, []string{"p1"}, "")
	posts, _, _ := clientsFor(srv)
	p, err := posts.Post(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Post.Title != "title p1" || p.Post.URL != srv.URL+"/r/golang/comments/p1/" {
		t.Fatalf("unexpected post %+v", p.Post)
	}
}

func TestPostClient_UpstreamErrorIsTransient(t *testing.T) {
	srv := fakeReddit(t, []string{"p1"}, "p1")
	posts, _, _ := clientsFor(srv)
	_, err := posts.Post(context.Background(), "p1")
	if err == nil || !failure.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestSubredditClient_NewPostsKeepsOrder(t *testing.T) {
	ids := []string{"a1", "b2", "c3", "d4"}
	srv := fakeReddit(t, ids, "")
	_, subs, _ := clientsFor(srv)
	got, err := subs.NewPosts(context.Background(), "golang")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(ids) {
		t.Fatalf("expected %d posts, got %d", len(ids), len(got))
	}
	for i, id := range ids {
		if got[i].Post.ID != id {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Post.ID, id)
		}
	}
}

func TestSubredditClient_OneFailureFailsBatch(t *testing.T) {
	srv := fakeReddit(t, []string{"a1", "b2", "c3"}, "b2")
	_, subs, _ := clientsFor(srv)
	if _, err := subs.NewPosts(context.Background(), "golang"); err == nil {
		t.Fatalf("expected batch failure")
	}
}

func TestSubredditClient_About(t *testing.T) {
	srv := fakeReddit(t, []string{"a1"}, "")
	_, subs, _ := clientsFor(srv)
	about, err := subs.About(context.Background(), "golang")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if about.Field("display_name") != "golang" {
		t.Fatalf("unexpected about %+v", about)
	}
}

func TestPostClient_InvalidBase(t *testing.T) {
	o := DefaultOptions()
	o.BaseURL = "::::"
	_, err := NewPostClient(&fetch.Client{}, o).Post(context.Background(), "x")
	if !failure.IsConfig(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}
