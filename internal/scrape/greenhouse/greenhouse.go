package greenhouse

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jobcollect-engine/internal/domain"
	"jobcollect-engine/internal/scrape/types"
	"jobcollect-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://boards.greenhouse.io"

type Config struct {
	Companies []Company // list of boards
	BaseURL   string
}

type Company struct {
	Slug string // boards.greenhouse.io/<slug>
	Name string // display name
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

func (s *Scraper) Name() string        { return "greenhouse" }
func (s *Scraper) Platforms() []string { return []string{"greenhouse"} }

// Search walks every configured board and keeps postings matching the query.
// One board being down does not fail the search; all of them being down does.
func (s *Scraper) Search(ctx context.Context, q types.Query) ([]domain.RawRecord, error) {
	var (
		out    []domain.RawRecord
		errs   error
		failed int
	)
	for _, co := range s.cfg.Companies {
		if q.ResultsWanted > 0 && len(out) >= q.ResultsWanted {
			break
		}
		leads, err := s.fetchCompany(ctx, co)
		if err != nil {
			s.log.Warnf("[ats:greenhouse] company=%q slug=%q err=%v", co.Name, co.Slug, err)
			errs = multierr.Append(errs, err)
			failed++
			continue
		}
		for _, lead := range leads {
			if q.ResultsWanted > 0 && len(out) >= q.ResultsWanted {
				break
			}
			hydrated := false
			if !util.MatchesTerm(q.Term, lead.Title, "") {
				if !s.matchAfterHydrate(ctx, &lead, q.Term) {
					continue
				}
				hydrated = true
			}
			if !hydrated {
				if err := s.hydrateJob(ctx, &lead); err != nil {
					s.log.Debugf("[ats:greenhouse] hydrate url=%q err=%v", lead.URL, err)
				}
			}
			if !util.PassesLocation(q.Location, lead.Location, lead.WorkMode, q.IsRemote) {
				continue
			}
			if tooOld(lead.PostedAt, q.HoursOld) {
				continue
			}
			out = append(out, lead.Record())
		}
	}
	if failed > 0 && failed == len(s.cfg.Companies) {
		return nil, fmt.Errorf("greenhouse: every board failed: %w", errs)
	}
	return out, nil
}

// matchAfterHydrate loads the job page and retries the term against the description.
func (s *Scraper) matchAfterHydrate(ctx context.Context, lead *types.Lead, term string) bool {
	if err := s.hydrateJob(ctx, lead); err != nil {
		return false
	}
	return util.MatchesTerm(term, lead.Title, util.CleanText(stripTags(lead.Description)))
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company) ([]types.Lead, error) {
	boardURL := fmt.Sprintf("%s/%s", s.cfg.BaseURL, co.Slug)

	doc, err := s.getDocument(ctx, boardURL)
	if err != nil {
		return nil, fmt.Errorf("greenhouse get board: %w", err)
	}

	// Greenhouse boards usually have anchors to /<slug>/jobs/<id> or absolute /jobs/<id>
	seen := map[string]bool{}

	var jobs []types.Lead
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		abs := util.ResolveURL(boardURL, href)
		if !strings.Contains(strings.ToLower(abs), "/jobs/") {
			return
		}

		jobID := extractJobID(abs)
		if jobID == "" {
			return
		}

		sourceID := fmt.Sprintf("greenhouse:%s:%s", co.Slug, jobID)
		if seen[sourceID] {
			return
		}
		seen[sourceID] = true

		title := util.CleanText(a.Text())
		if title == "" || util.LooksLikeJunkTitle(title) {
			// the job page has the real title
			title = ""
		}
		loc := util.NormalizeLocation(a.Closest(".opening").Find(".location").First().Text())

		jobs = append(jobs, types.Lead{
			SourceID: sourceID,
			Site:     "greenhouse",
			Company:  co.Name,
			Title:    title,
			URL:      util.CanonicalizeURL(abs),
			Location: loc,
			WorkMode: util.InferWorkModeFromText(loc, title, ""),
		})
	})

	return jobs, nil
}

func (s *Scraper) hydrateJob(ctx context.Context, j *types.Lead) error {
	doc, err := s.getDocument(ctx, j.URL)
	if err != nil {
		return err
	}

	if j.Title == "" {
		if t := util.CleanText(doc.Find("h1").First().Text()); t != "" {
			j.Title = t
		}
	}

	if j.Location == "" {
		loc := util.CleanText(doc.Find(".location").First().Text())
		if loc == "" {
			loc = util.FindLocation(doc)
		}
		j.Location = util.NormalizeLocation(loc)
	}

	if sel := doc.Find("#content").First(); sel.Length() > 0 {
		if h, err := sel.Html(); err == nil {
			j.Description = strings.TrimSpace(h)
		}
	}

	if v, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content"); ok {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
			j.PostedAt = &t
		}
	}

	if j.WorkMode == "" || j.WorkMode == "Unknown" {
		j.WorkMode = util.InferWorkModeFromText(j.Location, j.Title, "")
	}
	return nil
}

func (s *Scraper) getDocument(ctx context.Context, u string) (*goquery.Document, error) {
	if err := s.limiter.WaitURL(ctx, u); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "JobCollect/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d for %s", res.StatusCode, u)
	}
	return goquery.NewDocumentFromReader(res.Body)
}

func extractJobID(u string) string {
	// split on /jobs/ and take the next run of digits
	parts := strings.Split(u, "/jobs/")
	if len(parts) < 2 {
		return ""
	}
	tail := parts[1]
	id := ""
	for _, r := range tail {
		if r >= '0' && r <= '9' {
			id += string(r)
		} else {
			break
		}
	}
	return id
}

func stripTags(h string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(h))
	if err != nil {
		return h
	}
	return doc.Text()
}

func tooOld(posted *time.Time, hoursOld int) bool {
	if posted == nil || hoursOld <= 0 {
		return false
	}
	return time.Since(*posted) > time.Duration(hoursOld)*time.Hour
}
