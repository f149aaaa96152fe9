package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/paperdigest/internal/retry"
	"github.com/dgallion1/paperdigest/internal/stats"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query</title>
  <id>http://arxiv.org/api/query</id>
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <published>2024-01-02T18:59:59Z</published>
    <title>  Graph Neural Networks
 for Molecules </title>
    <summary>
      We apply graph neural networks to molecules.
    </summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <link href="http://arxiv.org/abs/2401.00001v1" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2401.00001v1" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.00002v1</id>
    <published>sometime in 2024</published>
    <title>Unrelated Survey</title>
    <summary>Nothing about graphs in the title.</summary>
    <author><name>Grace Hopper</name></author>
  </entry>
</feed>`

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:   baseURL,
		UserAgent: "paperdigest-test",
		RetryWait: func(int) time.Duration { return 0 },
	})
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", EmptyQuery},
		{"   ", EmptyQuery},
		{"graph neural networks", `ti:"graph neural networks"`},
		{"  padded  ", `ti:"padded"`},
		{"au:hinton", "au:hinton"},
		{"ti:transformer AND cat:cs.CL", "ti:transformer AND cat:cs.CL"},
		{"deep or shallow", "deep or shallow"},
		{`say "hi"`, `say "hi"`},
		{"(grouped)", "(grouped)"},
		{"android apps", `ti:"android apps"`},
	}
	for _, tt := range tests {
		if got := BuildSearchQuery(tt.in); got != tt.want {
			t.Errorf("BuildSearchQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsAdvanced(t *testing.T) {
	assert.True(t, IsAdvanced("ABS:quantum"))
	assert.True(t, IsAdvanced("x AND y"))
	assert.False(t, IsAdvanced("sandbox orchestration"))
	assert.False(t, IsAdvanced("category theory"))
}

func TestSearch_ParsesAndFilters(t *testing.T) {
	var gotQuery map[string]string
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	papers, err := newTestClient(srv.URL).Search(context.Background(), "graph  NEURAL networks", 200)
	require.NoError(t, err)

	assert.Equal(t, `ti:"graph  NEURAL networks"`, gotQuery["search_query"])
	assert.Equal(t, "0", gotQuery["start"])
	assert.Equal(t, "50", gotQuery["max_results"])
	assert.Equal(t, "submittedDate", gotQuery["sortBy"])
	assert.Equal(t, "descending", gotQuery["sortOrder"])
	assert.Equal(t, "paperdigest-test", gotUA)

	require.Len(t, papers, 1)
	p := papers[0]
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", p.ID)
	assert.Equal(t, "Graph Neural Networks  for Molecules", p.Title)
	assert.Equal(t, "We apply graph neural networks to molecules.", p.Summary)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, p.Authors)
	assert.Equal(t, "2024-01-02T18:59:59", p.Published)
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", p.Link)
	assert.Equal(t, "http://arxiv.org/pdf/2401.00001v1", p.PDFURL)
}

func TestSearch_AdvancedQueryIsNotFiltered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	papers, err := newTestClient(srv.URL).Search(context.Background(), "au:hopper", 0)
	require.NoError(t, err)
	require.Len(t, papers, 2)

	second := papers[1]
	assert.Equal(t, "sometime in 2024", second.Published, "unparseable dates pass through")
	assert.Equal(t, second.ID, second.Link, "missing alternate link falls back to the id")
	assert.Empty(t, second.PDFURL)
}

func TestSearch_ClampsMaxResults(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("max_results")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), "", -5)
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestSearch_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	papers, err := newTestClient(srv.URL).Search(context.Background(), "cat:cs.LG", 10)
	require.NoError(t, err)
	assert.Len(t, papers, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), "anything", 10)
	require.Error(t, err)
	assert.True(t, retry.IsRetryable(err))
	assert.Equal(t, int32(retry.MaxRetries), calls.Load())
}

func TestSearch_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad query", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), "anything", 10)
	require.Error(t, err)
	assert.False(t, retry.IsRetryable(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearch_RecordsLatency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	latency := stats.NewLatency(time.Hour)
	c := NewClient(Config{BaseURL: srv.URL, Stats: latency})
	_, err := c.Search(context.Background(), "graph", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, latency.Snapshot().Count)
}
