package smartrecruiters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"jobcollect-engine/internal/domain"
	"jobcollect-engine/internal/scrape/types"
	"jobcollect-engine/internal/scrape/util"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.smartrecruiters.com"
	jobsHost       = "https://jobs.smartrecruiters.com"
	pageSize       = 100
	maxOffset      = 5000
)

type Config struct {
	Companies []Company
	BaseURL   string
}

type Company struct {
	// Slug is the SmartRecruiters company identifier used in URLs, e.g.
	// https://jobs.smartrecruiters.com/<slug>
	Slug string
	Name string
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	log     *zap.SugaredLogger
}

func New(cfg Config, limiter *util.HostLimiter, log *zap.SugaredLogger) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 25 * time.Second},
		limiter: limiter,
		log:     log,
	}
}

func (s *Scraper) Name() string        { return "smartrecruiters" }
func (s *Scraper) Platforms() []string { return []string{"smartrecruiters"} }

// { "content": [...], "totalFound": N, "offset": O, "limit": L }
type postingsResponse struct {
	Content    []posting `json:"content"`
	TotalFound int       `json:"totalFound"`
}

type posting struct {
	ID           string    `json:"id"`
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	ReleasedDate time.Time `json:"releasedDate"`
	Ref          string    `json:"ref"`
	Location     struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
	TypeOfEmployment struct {
		Label string `json:"label"`
	} `json:"typeOfEmployment"`
	ExperienceLevel struct {
		Label string `json:"label"`
	} `json:"experienceLevel"`
	Function struct {
		Label string `json:"label"`
	} `json:"function"`
}

type companyResult struct {
	co   Company
	jobs []domain.RawRecord
	err  error
}

// Search asks each company for postings matching the term. The API does the
// term match; location, remote and age are filtered here.
func (s *Scraper) Search(ctx context.Context, q types.Query) ([]domain.RawRecord, error) {
	const workers = 8

	companies := s.cfg.Companies
	resCh := make(chan companyResult, len(companies))
	workCh := make(chan Company)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for co := range workCh {
				cctx, cancel := context.WithTimeout(ctx, 20*time.Second)
				jobs, err := s.fetchCompany(cctx, co, q)
				cancel()
				resCh <- companyResult{co: co, jobs: jobs, err: err}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, co := range companies {
			select {
			case <-ctx.Done():
				return
			case workCh <- co:
			}
		}
	}()

	wg.Wait()
	close(resCh)

	byCompany := make(map[string]companyResult, len(companies))
	for r := range resCh {
		byCompany[r.co.Slug] = r
	}

	var (
		out    []domain.RawRecord
		errs   error
		failed int
	)
	for _, co := range companies {
		r, ok := byCompany[co.Slug]
		if !ok {
			continue
		}
		if r.err != nil {
			s.log.Warnf("[ats:smartrecruiters] company=%q slug=%q err=%v", co.Name, co.Slug, r.err)
			errs = multierr.Append(errs, r.err)
			failed++
			continue
		}
		out = append(out, r.jobs...)
	}
	if failed > 0 && failed == len(companies) {
		return nil, fmt.Errorf("smartrecruiters: every company failed: %w", errs)
	}
	if q.ResultsWanted > 0 && len(out) > q.ResultsWanted {
		out = out[:q.ResultsWanted]
	}

	s.log.Debugf("[smartrecruiters] matched: %d", len(out))
	return out, nil
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company, q types.Query) ([]domain.RawRecord, error) {
	slug := strings.TrimSpace(co.Slug)
	if slug == "" {
		return nil, fmt.Errorf("empty slug")
	}
	base := fmt.Sprintf("%s/v1/companies/%s/postings", s.cfg.BaseURL, url.PathEscape(slug))

	var out []domain.RawRecord
	for offset := 0; offset <= maxOffset; offset += pageSize {
		pr, err := s.fetchPage(ctx, base, q.Term, offset)
		if err != nil {
			return out, err
		}
		if len(pr.Content) == 0 {
			break
		}

		for _, p := range pr.Content {
			rec, id, ok := s.toRecord(co, slug, p, q)
			if !ok {
				continue
			}
			if desc, err := s.fetchDescription(ctx, base, id); err != nil {
				s.log.Debugf("[ats:smartrecruiters] detail slug=%q err=%v", slug, err)
			} else {
				rec["description"] = domain.String(desc)
			}
			out = append(out, rec)
		}

		if pr.TotalFound > 0 && offset+pageSize >= pr.TotalFound {
			break
		}
		if q.ResultsWanted > 0 && len(out) >= q.ResultsWanted {
			break
		}
	}
	return out, nil
}

func (s *Scraper) fetchPage(ctx context.Context, base, term string, offset int) (postingsResponse, error) {
	v := url.Values{}
	v.Set("limit", fmt.Sprint(pageSize))
	v.Set("offset", fmt.Sprint(offset))
	if t := strings.TrimSpace(term); t != "" {
		v.Set("q", t)
	}
	u := base + "?" + v.Encode()

	var pr postingsResponse
	if err := s.limiter.WaitURL(ctx, u); err != nil {
		return pr, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return pr, err
	}
	req.Header.Set("User-Agent", "JobCollect/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return pr, fmt.Errorf("smartrecruiters get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return pr, fmt.Errorf("smartrecruiters status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(&pr); err != nil {
		return pr, fmt.Errorf("smartrecruiters decode: %w", err)
	}
	return pr, nil
}

func (s *Scraper) toRecord(co Company, slug string, p posting, q types.Query) (domain.RawRecord, string, bool) {
	title := strings.TrimSpace(p.Name)
	id := strings.TrimSpace(firstNonEmpty(p.ID, p.UUID, p.Ref))
	if title == "" || id == "" {
		return nil, "", false
	}

	loc := util.NormalizeLocation(strings.Join(nonEmpty(p.Location.City, p.Location.Region, p.Location.Country), ", "))
	mode := util.InferWorkModeFromText(loc, title, "")
	if p.Location.Remote {
		mode = "Remote"
	}
	if !util.PassesLocation(q.Location, loc, mode, q.IsRemote) {
		return nil, "", false
	}

	var postedAt *time.Time
	if !p.ReleasedDate.IsZero() {
		posted := p.ReleasedDate
		if q.HoursOld > 0 && time.Since(posted) > time.Duration(q.HoursOld)*time.Hour {
			return nil, "", false
		}
		postedAt = &posted
	}

	lead := types.Lead{
		SourceID: fmt.Sprintf("smartrecruiters:%s:%s", slug, id),
		Site:     "smartrecruiters",
		Company:  co.Name,
		Title:    title,
		URL:      fmt.Sprintf("%s/%s/%s", jobsHost, slug, id),
		Location: loc,
		WorkMode: mode,
		PostedAt: postedAt,
	}
	rec := lead.Record()
	if l := p.TypeOfEmployment.Label; l != "" {
		rec["job_type"] = domain.String(l)
	}
	if l := p.ExperienceLevel.Label; l != "" {
		rec["job_level"] = domain.String(l)
	}
	if l := p.Function.Label; l != "" {
		rec["job_function"] = domain.String(l)
	}
	return rec, id, true
}

type postingDetail struct {
	JobAd struct {
		Sections struct {
			JobDescription struct {
				Text string `json:"text"`
			} `json:"jobDescription"`
			Qualifications struct {
				Text string `json:"text"`
			} `json:"qualifications"`
		} `json:"sections"`
	} `json:"jobAd"`
}

// fetchDescription loads the posting detail; the listing carries no description.
func (s *Scraper) fetchDescription(ctx context.Context, base, id string) (string, error) {
	u := base + "/" + url.PathEscape(id)

	if err := s.limiter.WaitURL(ctx, u); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "JobCollect/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return "", fmt.Errorf("detail status %d", res.StatusCode)
	}
	var d postingDetail
	if err := json.NewDecoder(res.Body).Decode(&d); err != nil {
		return "", err
	}
	sec := d.JobAd.Sections
	return strings.TrimSpace(strings.Join(nonEmpty(sec.JobDescription.Text, sec.Qualifications.Text), "\n")), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
