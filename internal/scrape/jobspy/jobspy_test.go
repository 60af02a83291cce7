package jobspy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobcollect-engine/internal/domain"
	"jobcollect-engine/internal/logging"
	"jobcollect-engine/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = `{
  "count": 2,
  "jobs": [
    {"id": "in-1", "site": "indeed", "title": "QA Engineer", "date_posted": "2025-02-28",
     "min_amount": 4500.5, "is_remote": true, "description": "Test things", "emails": null,
     "skills": ["selenium", "go"]},
    {"id": "gd-1", "site": "glassdoor", "title": "SDET", "date_posted": "nan",
     "min_amount": "NaN", "description": ""}
  ]
}`

func TestSearchSendsQueryAndDecodesJobs(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	remote := true
	c := New(Config{BaseURL: srv.URL + "/", APIKey: "secret"}, nil, logging.Nop())
	recs, err := c.Search(context.Background(), types.Query{
		Platforms:     []string{"indeed", "glassdoor"},
		Term:          "QA Engineer",
		Location:      "Recife",
		Country:       "Brazil",
		ResultsWanted: 10,
		HoursOld:      168,
		JobType:       "fulltime",
		IsRemote:      &remote,
		Proxies:       []string{"user:pass@host:8080"},
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, searchPath, got.URL.Path)
	assert.Equal(t, "secret", got.Header.Get("x-api-key"))
	q := got.URL.Query()
	assert.Equal(t, []string{"indeed", "glassdoor"}, q["site_name"])
	assert.Equal(t, "QA Engineer", q.Get("search_term"))
	assert.Equal(t, "Recife", q.Get("location"))
	assert.Equal(t, "Brazil", q.Get("country_indeed"))
	assert.Equal(t, "10", q.Get("results_wanted"))
	assert.Equal(t, "168", q.Get("hours_old"))
	assert.Equal(t, "fulltime", q.Get("job_type"))
	assert.Equal(t, "true", q.Get("is_remote"))
	assert.Equal(t, []string{"user:pass@host:8080"}, q["proxies"])
	assert.Equal(t, "true", q.Get("linkedin_fetch_description"))

	require.Len(t, recs, 2)
	first := recs[0]
	assert.Equal(t, domain.KindDate, first.Get("date_posted").Kind())
	assert.Equal(t, "2025-02-28", first.Get("date_posted").Text())
	assert.Equal(t, 4500.5, first.Get("min_amount").Num())
	assert.True(t, first.Get("is_remote").Truth())
	assert.True(t, first.Get("emails").IsNull())
	assert.Equal(t, "selenium, go", first.Get("skills").Str())

	// NaN-like values are left for the cleaner
	second := recs[1]
	assert.Equal(t, "nan", second.Get("date_posted").Str())
	assert.True(t, second.Get("min_amount").IsNaNLike())
}

func TestSearchOmitsUnsetParams(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"count":0,"jobs":[]}`))
	}))
	defer srv.Close()

	recs, err := New(Config{BaseURL: srv.URL}, nil, logging.Nop()).
		Search(context.Background(), types.Query{Platforms: []string{"linkedin"}, Term: "go"})
	require.NoError(t, err)
	assert.Empty(t, recs)

	q := got.URL.Query()
	assert.Empty(t, got.Header.Get("x-api-key"))
	for _, k := range []string{"is_remote", "job_type", "hours_old", "proxies", "country_indeed"} {
		assert.NotContains(t, q, k)
	}
}

func TestSearchReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}, nil, logging.Nop()).
		Search(context.Background(), types.Query{Platforms: []string{"indeed"}, Term: "go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}
