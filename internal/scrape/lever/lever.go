package lever

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"jobcollect-engine/internal/domain"
	"jobcollect-engine/internal/scrape/types"
	"jobcollect-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.lever.co"

type Config struct {
	Companies []Company
	BaseURL   string
}

type Company struct {
	Slug string // api.lever.co/v0/postings/<slug>
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
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		log:     log,
	}
}

func (s *Scraper) Name() string        { return "lever" }
func (s *Scraper) Platforms() []string { return []string{"lever"} }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	ApplyURL   string `json:"applyUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
		Department string `json:"department"`
	} `json:"categories"`
	WorkplaceType    string `json:"workplaceType"` // remote/hybrid/onsite/unspecified
	Description      string `json:"description"`   // html
	DescriptionPlain string `json:"descriptionPlain"`
}

type companyResult struct {
	co   Company
	jobs []domain.RawRecord
	err  error
}

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
				cctx, cancel := context.WithTimeout(ctx, 30*time.Second)
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

	// Keep configured company order so results are deterministic.
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
			s.log.Warnf("[ats:lever] company=%q slug=%q err=%v", co.Name, co.Slug, r.err)
			errs = multierr.Append(errs, r.err)
			failed++
			continue
		}
		out = append(out, r.jobs...)
	}
	if failed > 0 && failed == len(companies) {
		return nil, fmt.Errorf("lever: every board failed: %w", errs)
	}
	if q.ResultsWanted > 0 && len(out) > q.ResultsWanted {
		out = out[:q.ResultsWanted]
	}

	s.log.Debugf("[lever] matched: %d", len(out))
	return out, nil
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company, q types.Query) ([]domain.RawRecord, error) {
	apiURL := fmt.Sprintf("%s/v0/postings/%s?mode=json", s.cfg.BaseURL, co.Slug)

	if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "JobCollect/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("lever status %d", res.StatusCode)
	}

	var postings []leverPosting
	if err := json.NewDecoder(res.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("lever decode: %w", err)
	}

	out := make([]domain.RawRecord, 0, len(postings))
	for _, p := range postings {
		if p.ID == "" || p.HostedURL == "" || strings.TrimSpace(p.Text) == "" {
			continue
		}
		if !util.MatchesTerm(q.Term, p.Text, p.DescriptionPlain) {
			continue
		}
		jobType := commitmentToJobType(p.Categories.Commitment)
		if q.JobType != "" && jobType != "" && jobType != q.JobType {
			continue
		}

		var posted *time.Time
		if p.CreatedAt > 0 {
			t := time.UnixMilli(p.CreatedAt).UTC()
			posted = &t
			if q.HoursOld > 0 && time.Since(t) > time.Duration(q.HoursOld)*time.Hour {
				continue
			}
		}

		lead := types.Lead{
			SourceID:    fmt.Sprintf("lever:%s:%s", co.Slug, p.ID),
			Site:        "lever",
			Company:     co.Name,
			Title:       strings.TrimSpace(p.Text),
			Location:    util.NormalizeLocation(p.Categories.Location),
			URL:         util.CanonicalizeURL(p.HostedURL),
			Description: p.Description,
			PostedAt:    posted,
		}
		lead.WorkMode = workMode(p.WorkplaceType, lead.Location, lead.Title, p.DescriptionPlain)

		if lead.Location == "" || lead.WorkMode == "Unknown" {
			if err := s.hydrateJob(ctx, &lead); err != nil {
				s.log.Debugf("[ats:lever] hydrate url=%q err=%v", lead.URL, err)
			}
		}
		if !util.PassesLocation(q.Location, lead.Location, lead.WorkMode, q.IsRemote) {
			continue
		}

		rec := lead.Record()
		if p.ApplyURL != "" {
			rec["job_url_direct"] = domain.String(p.ApplyURL)
		}
		if jobType != "" {
			rec["job_type"] = domain.String(jobType)
		}
		if p.Categories.Team != "" {
			rec["job_function"] = domain.String(p.Categories.Team)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Scraper) hydrateJob(ctx context.Context, j *types.Lead) error {
	if err := s.limiter.WaitURL(ctx, j.URL); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.URL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "JobCollect/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("job page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return err
	}

	// location fallback (try a few lever-ish patterns)
	if j.Location == "" {
		candidates := []string{
			"[itemprop='jobLocation']",
			"[data-qa='location']",
			".location",
			".posting-categories .location",
			".posting-categories li",
		}
		for _, sel := range candidates {
			if t := util.CleanText(doc.Find(sel).First().Text()); t != "" {
				j.Location = util.NormalizeLocation(t)
				break
			}
		}
	}

	if j.WorkMode == "" || j.WorkMode == "Unknown" {
		j.WorkMode = util.InferWorkModeFromText(j.Location, j.Title, util.CleanText(doc.Find(".posting-categories").Text()))
	}
	return nil
}

func workMode(workplaceType, loc, title, desc string) string {
	switch strings.ToLower(workplaceType) {
	case "remote":
		return "Remote"
	case "hybrid":
		return "Hybrid"
	case "onsite", "on-site":
		return "Onsite"
	}
	return util.InferWorkModeFromText(loc, title, desc)
}

func commitmentToJobType(c string) string {
	c = strings.ToLower(strings.Join(strings.Fields(c), ""))
	switch {
	case c == "":
		return ""
	case strings.Contains(c, "intern"):
		return "internship"
	case strings.Contains(c, "contract"), strings.Contains(c, "freelance"):
		return "contract"
	case strings.Contains(c, "part"):
		return "parttime"
	case strings.Contains(c, "full"), strings.Contains(c, "permanent"):
		return "fulltime"
	}
	return ""
}
