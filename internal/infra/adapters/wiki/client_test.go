//go:build !integration

package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"wikiukbot/internal/domain"
	"wikiukbot/internal/domain/model"
)

func newAPIServer(t *testing.T, status int, body string, check func(url.Values)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("User-Agent") != "wikiukbot-test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if check != nil {
			check(r.URL.Query())
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	base := []Option{
		WithHTTPClient(srv.Client()),
		WithAPIURL(srv.URL + "/w/api.php"),
		WithArticleBase(srv.URL + "/wiki/"),
		WithUserAgent("wikiukbot-test"),
	}
	return NewClient(append(base, opts...)...)
}

func asUpstream(t *testing.T, err error) *domain.UpstreamError {
	t.Helper()
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *domain.UpstreamError, got %T (%v)", err, err)
	}
	return ue
}

const searchBody = `{
  "batchcomplete": true,
  "query": {
    "pages": [
      {"pageid": 7, "ns": 0, "title": "Ан-225", "index": 2},
      {"pageid": 42, "ns": 0, "title": "Ан-225 Мрія", "index": 0, "description": "літак",
       "thumbnail": {"source": "https://upload.wikimedia.org/mriya.jpg", "width": 120, "height": 80}},
      {"pageid": 9, "ns": 0, "title": "Ан-22", "index": 1, "description": "транспортний літак",
       "thumbnail": {"width": 120, "height": 80}}
    ]
  }
}`

func TestSearchSortsAndNormalizes(t *testing.T) {
	srv, _ := newAPIServer(t, http.StatusOK, searchBody, func(q url.Values) {
		want := map[string]string{
			"action":        "query",
			"generator":     "prefixsearch",
			"gpssearch":     "Ан-225",
			"gpslimit":      "15",
			"gpsnamespace":  "0",
			"pithumbsize":   "120",
			"formatversion": "2",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("param %s = %q, want %q", k, got, v)
			}
		}
		if !strings.Contains(q.Get("prop"), "description") {
			t.Errorf("prop = %q should request descriptions", q.Get("prop"))
		}
	})
	c := newTestClient(srv)

	got, err := c.Search(context.Background(), "Ан-225")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []model.SearchResult{
		{PageID: 42, Title: "Ан-225 Мрія", Index: 0, Description: "літак",
			Thumbnail: &model.Thumbnail{URL: "https://upload.wikimedia.org/mriya.jpg", Width: 120, Height: 80}},
		{PageID: 9, Title: "Ан-22", Index: 1, Description: "транспортний літак"},
		{PageID: 7, Title: "Ан-225", Index: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchStableOnEqualIndex(t *testing.T) {
	body := `{"query":{"pages":[
		{"pageid":1,"title":"A","index":1},
		{"pageid":2,"title":"B","index":0},
		{"pageid":3,"title":"C","index":1}
	]}}`
	srv, _ := newAPIServer(t, http.StatusOK, body, nil)
	got, err := newTestClient(srv).Search(context.Background(), "x")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	var ids []int64
	for _, r := range got {
		ids = append(ids, r.PageID)
	}
	if diff := cmp.Diff([]int64{2, 1, 3}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchIdempotent(t *testing.T) {
	srv, calls := newAPIServer(t, http.StatusOK, searchBody, nil)
	c := newTestClient(srv)
	first, err := c.Search(context.Background(), "Ан")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Search(context.Background(), "Ан")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated search differs:\n%s", diff)
	}
	if calls.Load() != 2 {
		t.Errorf("expected one upstream call per search, got %d", calls.Load())
	}
}

func TestSearchZeroResults(t *testing.T) {
	for name, body := range map[string]string{
		"no query key": `{"batchcomplete":true}`,
		"no pages key": `{"batchcomplete":true,"query":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv, _ := newAPIServer(t, http.StatusOK, body, nil)
			got, err := newTestClient(srv).Search(context.Background(), "zzzzxyq123nonexistent")
			if err != nil {
				t.Fatalf("zero hits must not be an error: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil slice, got %#v", got)
			}
		})
	}
}

func TestSearchFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantReason domain.UpstreamReason
		wantInMsg  []string
	}{
		{
			name:       "service unavailable",
			status:     http.StatusServiceUnavailable,
			body:       "<html>down</html>",
			wantReason: domain.ReasonHTTPStatus,
			wantInMsg:  []string{"503", "Service Unavailable"},
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       "",
			wantReason: domain.ReasonHTTPStatus,
			wantInMsg:  []string{"404"},
		},
		{
			name:       "api error with 200",
			status:     http.StatusOK,
			body:       `{"error":{"code":"badvalue","info":"Unrecognized value for parameter \"generator\"."}}`,
			wantReason: domain.ReasonAPI,
			wantInMsg:  []string{"badvalue", "Unrecognized value"},
		},
		{
			name:       "api error with 500",
			status:     http.StatusInternalServerError,
			body:       `{"error":{"code":"internal_api_error","info":"boom"}}`,
			wantReason: domain.ReasonAPI,
			wantInMsg:  []string{"internal_api_error", "boom", "500"},
		},
		{
			name:       "not json",
			status:     http.StatusOK,
			body:       "<html>captive portal</html>",
			wantReason: domain.ReasonMalformed,
		},
		{
			name:       "page without title",
			status:     http.StatusOK,
			body:       `{"query":{"pages":[{"pageid":5,"index":0}]}}`,
			wantReason: domain.ReasonMalformed,
		},
		{
			name:       "good page next to one without id",
			status:     http.StatusOK,
			body:       `{"query":{"pages":[{"pageid":1,"title":"Київ","index":0},{"pageid":0,"title":"X","index":1}]}}`,
			wantReason: domain.ReasonMalformed,
		},
		{
			name:       "good page next to one without title",
			status:     http.StatusOK,
			body:       `{"query":{"pages":[{"pageid":1,"title":"Київ","index":0},{"pageid":2,"title":"","index":1}]}}`,
			wantReason: domain.ReasonMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newAPIServer(t, tt.status, tt.body, nil)
			res, err := newTestClient(srv).Search(context.Background(), "q")
			if res != nil {
				t.Errorf("expected nil results on failure, got %v", res)
			}
			ue := asUpstream(t, err)
			if ue.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", ue.Reason, tt.wantReason)
			}
			for _, w := range tt.wantInMsg {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q should mention %q", err, w)
				}
			}
		})
	}
}

func TestSearchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	c := newTestClient(srv, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))

	_, err := c.Search(context.Background(), "q")
	if ue := asUpstream(t, err); ue.Reason != domain.ReasonTransport {
		t.Fatalf("reason = %q, want transport", ue.Reason)
	}
}

func TestSearchHonoursContext(t *testing.T) {
	srv, calls := newAPIServer(t, http.StatusOK, searchBody, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(srv).Search(ctx, "q")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("cancelled request should not reach upstream")
	}
}

func TestRandomArticleList(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv, _ := newAPIServer(t, http.StatusOK, `{"query":{"random":[{"id":1,"ns":0,"title":"Крим"}]}}`, func(q url.Values) {
			if q.Get("list") != "random" || q.Get("rnnamespace") != "0" {
				t.Errorf("unexpected query %v", q)
			}
		})
		ref, err := newTestClient(srv).RandomArticle(context.Background())
		if err != nil {
			t.Fatalf("RandomArticle: %v", err)
		}
		if ref.Title != "Крим" || ref.URL != "" {
			t.Errorf("ref = %+v", ref)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		srv, _ := newAPIServer(t, http.StatusOK, `{"query":{"random":[]}}`, nil)
		_, err := newTestClient(srv).RandomArticle(context.Background())
		if ue := asUpstream(t, err); ue.Reason != domain.ReasonMalformed {
			t.Errorf("reason = %q", ue.Reason)
		}
	})

	t.Run("http error", func(t *testing.T) {
		srv, _ := newAPIServer(t, http.StatusBadGateway, "", nil)
		_, err := newTestClient(srv).RandomArticle(context.Background())
		ue := asUpstream(t, err)
		if ue.Status != http.StatusBadGateway || !strings.Contains(err.Error(), "502") {
			t.Errorf("unexpected error %v", err)
		}
	})
}

func newRedirectServer(t *testing.T, handler func(w http.ResponseWriter, base string)) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/Special:Random" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		handler(w, srv.URL+"/wiki/")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRandomArticleRedirect(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv := newRedirectServer(t, func(w http.ResponseWriter, base string) {
			w.Header().Set("Location", base+url.PathEscape("Ан-225_Мрія"))
			w.WriteHeader(http.StatusFound)
		})
		ref, err := newTestClient(srv, WithRandomMode(RandomRedirect)).RandomArticle(context.Background())
		if err != nil {
			t.Fatalf("RandomArticle: %v", err)
		}
		if ref.Title != "Ан-225 Мрія" {
			t.Errorf("title = %q", ref.Title)
		}
		if ref.URL != srv.URL+"/wiki/"+url.PathEscape("Ан-225_Мрія") {
			t.Errorf("url = %q", ref.URL)
		}
	})

	failures := []struct {
		name    string
		handler func(w http.ResponseWriter, base string)
	}{
		{"foreign host", func(w http.ResponseWriter, _ string) {
			w.Header().Set("Location", "https://evil.example/wiki/Kyiv")
			w.WriteHeader(http.StatusFound)
		}},
		{"outside article path", func(w http.ResponseWriter, base string) {
			w.Header().Set("Location", strings.TrimSuffix(base, "wiki/")+"w/index.php?title=Kyiv")
			w.WriteHeader(http.StatusFound)
		}},
		{"bare article path", func(w http.ResponseWriter, base string) {
			w.Header().Set("Location", base)
			w.WriteHeader(http.StatusFound)
		}},
		{"missing location", func(w http.ResponseWriter, _ string) {
			w.WriteHeader(http.StatusFound)
		}},
		{"followed by server", func(w http.ResponseWriter, _ string) {
			w.WriteHeader(http.StatusOK)
		}},
		{"moved permanently", func(w http.ResponseWriter, base string) {
			w.Header().Set("Location", base+"Kyiv")
			w.WriteHeader(http.StatusMovedPermanently)
		}},
		{"server error", func(w http.ResponseWriter, _ string) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRedirectServer(t, tt.handler)
			ref, err := newTestClient(srv, WithRandomMode(RandomRedirect)).RandomArticle(context.Background())
			if err == nil {
				t.Fatalf("expected error, got %+v", ref)
			}
			asUpstream(t, err)
		})
	}
}
