package greenhouse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobcollect-engine/internal/logging"
	"jobcollect-engine/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const board = `<html><body>
<div class="opening"><a href="/acme/jobs/101">QA Engineer</a><span class="location">Recife, Brazil</span></div>
<div class="opening"><a href="/acme/jobs/102">Backend Engineer</a><span class="location">Recife</span></div>
<div class="opening"><a href="/acme/jobs/103?gh_src=abc">View job</a><span class="location">Remote</span></div>
<div class="opening"><a href="/acme/jobs/104">QA Engineer II</a><span class="location">Recife</span></div>
<a href="/acme">All jobs</a>
</body></html>`

func jobPage(title, content string, posted time.Time) string {
	return fmt.Sprintf(`<html><head><meta property="article:published_time" content="%s"></head>
<body><h1>%s</h1><div id="content"><p>%s</p></div></body></html>`, posted.Format(time.RFC3339), title, content)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	recent := time.Now().Add(-2 * time.Hour)
	pages := map[string]string{
		"/acme":          board,
		"/acme/jobs/101": jobPage("QA Engineer", "Test all the things", recent),
		"/acme/jobs/102": jobPage("Backend Engineer", "Go services", recent),
		"/acme/jobs/103": jobPage("Senior QA Engineer", "Lead <b>quality</b>", recent),
		"/acme/jobs/104": jobPage("QA Engineer II", "Old posting", time.Now().Add(-30*24*time.Hour)),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchScrapesBoard(t *testing.T) {
	srv := newServer(t)
	s := New(Config{BaseURL: srv.URL, Companies: []Company{{Slug: "acme", Name: "Acme"}}}, nil, logging.Nop())

	recs, err := s.Search(context.Background(), types.Query{Term: "QA Engineer", Location: "Recife", HoursOld: 168})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, "greenhouse:acme:101", first.Get("id").Str())
	assert.Equal(t, "greenhouse", first.SiteName())
	assert.Equal(t, "Recife, Brazil", first.Get("location").Str())
	assert.Contains(t, first.Get("description").Str(), "Test all the things")
	assert.Equal(t, srv.URL+"/acme/jobs/101", first.Get("job_url").Str())

	remote := recs[1]
	assert.Equal(t, "greenhouse:acme:103", remote.Get("id").Str())
	assert.Equal(t, "Senior QA Engineer", remote.Get("title").Str())
	assert.True(t, remote.Get("is_remote").Truth())
	assert.Equal(t, srv.URL+"/acme/jobs/103", remote.Get("job_url").Str())
}

func TestSearchCapsResults(t *testing.T) {
	srv := newServer(t)
	s := New(Config{BaseURL: srv.URL, Companies: []Company{{Slug: "acme", Name: "Acme"}}}, nil, logging.Nop())

	recs, err := s.Search(context.Background(), types.Query{Term: "qa", ResultsWanted: 1})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestSearchFailsOnlyWhenEveryBoardFails(t *testing.T) {
	srv := newServer(t)

	s := New(Config{BaseURL: srv.URL, Companies: []Company{{Slug: "missing"}, {Slug: "acme", Name: "Acme"}}}, nil, logging.Nop())
	recs, err := s.Search(context.Background(), types.Query{Term: "qa"})
	require.NoError(t, err)
	assert.NotEmpty(t, recs)

	s = New(Config{BaseURL: srv.URL, Companies: []Company{{Slug: "missing"}}}, nil, logging.Nop())
	_, err = s.Search(context.Background(), types.Query{Term: "qa"})
	assert.Error(t, err)
}

func TestExtractJobID(t *testing.T) {
	assert.Equal(t, "4012", extractJobID("https://boards.greenhouse.io/acme/jobs/4012?gh_src=x"))
	assert.Equal(t, "", extractJobID("https://boards.greenhouse.io/acme"))
}
