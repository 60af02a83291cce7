// Package jobspy queries a JobSpy API service, which scrapes the large job
// boards on our behalf.
package jobspy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobcollect-engine/internal/domain"
	"jobcollect-engine/internal/scrape/types"
	"jobcollect-engine/internal/scrape/util"

	"go.uber.org/zap"
)

const searchPath = "/api/v1/search_jobs"

// Platforms served by the JobSpy service.
var Platforms = []string{"indeed", "linkedin", "glassdoor", "zip_recruiter", "google", "bayt", "naukri"}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	log     *zap.SugaredLogger
}

func New(cfg Config, limiter *util.HostLimiter, log *zap.SugaredLogger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		log:     log,
	}
}

func (c *Client) Name() string        { return "jobspy" }
func (c *Client) Platforms() []string { return Platforms }

type searchResponse struct {
	Count int              `json:"count"`
	Jobs  []map[string]any `json:"jobs"`
}

func (c *Client) Search(ctx context.Context, q types.Query) ([]domain.RawRecord, error) {
	u := c.cfg.BaseURL + searchPath + "?" + encodeQuery(q).Encode()

	if err := c.limiter.WaitURL(ctx, u); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}
	if len(q.Proxies) > 0 {
		c.log.Debugf("[jobspy] using %d proxies", len(q.Proxies))
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jobspy get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("jobspy status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	var sr searchResponse
	if err := dec.Decode(&sr); err != nil {
		return nil, fmt.Errorf("jobspy decode: %w", err)
	}

	out := make([]domain.RawRecord, 0, len(sr.Jobs))
	for _, j := range sr.Jobs {
		out = append(out, toRecord(j))
	}
	c.log.Debugf("[jobspy] term=%q location=%q count=%d returned=%d", q.Term, q.Location, sr.Count, len(out))
	return out, nil
}

func encodeQuery(q types.Query) url.Values {
	v := url.Values{}
	for _, p := range q.Platforms {
		v.Add("site_name", p)
	}
	v.Set("search_term", q.Term)
	v.Set("location", q.Location)
	if q.Country != "" {
		v.Set("country_indeed", q.Country)
	}
	if q.ResultsWanted > 0 {
		v.Set("results_wanted", strconv.Itoa(q.ResultsWanted))
	}
	if q.HoursOld > 0 {
		v.Set("hours_old", strconv.Itoa(q.HoursOld))
	}
	if q.JobType != "" {
		v.Set("job_type", q.JobType)
	}
	if q.IsRemote != nil {
		v.Set("is_remote", strconv.FormatBool(*q.IsRemote))
	}
	for _, p := range q.Proxies {
		v.Add("proxies", p)
	}
	v.Set("linkedin_fetch_description", "true")
	return v
}

// toRecord keeps every field the service returned. NaN-like strings are left
// for the cleaner.
func toRecord(j map[string]any) domain.RawRecord {
	r := make(domain.RawRecord, len(j))
	for k, x := range j {
		v := domain.FromAny(x)
		if k == domain.FieldDatePosted.String() && v.Kind() == domain.KindString {
			if d, ok := domain.ParseDate(v.Str()); ok {
				v = d
			}
		}
		r[k] = v
	}
	return r
}
