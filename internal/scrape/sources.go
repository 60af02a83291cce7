package scrape

import (
	"strings"
	"time"

	"jobcollect-engine/internal/config"
	"jobcollect-engine/internal/scrape/greenhouse"
	"jobcollect-engine/internal/scrape/jobspy"
	"jobcollect-engine/internal/scrape/lever"
	"jobcollect-engine/internal/scrape/smartrecruiters"
	"jobcollect-engine/internal/scrape/types"
	"jobcollect-engine/internal/scrape/util"

	"go.uber.org/zap"
)

// BuildSources creates every enabled source, sharing one host limiter.
func BuildSources(cfg config.Config, apiKey string, log *zap.SugaredLogger) []types.Source {
	limiter := util.NewHostLimiter(cfg.Scraping.RequestsPerSecond, 2)

	var out []types.Source
	if cfg.Sources.JobSpy.Enabled {
		out = append(out, jobspy.New(jobspy.Config{
			BaseURL: cfg.Sources.JobSpy.BaseURL,
			APIKey:  apiKey,
			Timeout: time.Duration(cfg.Scraping.TimeoutSeconds) * time.Second,
		}, limiter, log.Named("jobspy")))
	}
	if cfg.Sources.Greenhouse.Enabled {
		if cos := mapCompanies(cfg.Sources.Greenhouse.Companies); len(cos) > 0 {
			gh := make([]greenhouse.Company, len(cos))
			for i, c := range cos {
				gh[i] = greenhouse.Company{Slug: c.Slug, Name: c.Name}
			}
			out = append(out, greenhouse.New(greenhouse.Config{Companies: gh}, limiter, log.Named("greenhouse")))
		}
	}
	if cfg.Sources.Lever.Enabled {
		if cos := mapCompanies(cfg.Sources.Lever.Companies); len(cos) > 0 {
			lv := make([]lever.Company, len(cos))
			for i, c := range cos {
				lv[i] = lever.Company{Slug: c.Slug, Name: c.Name}
			}
			out = append(out, lever.New(lever.Config{Companies: lv}, limiter, log.Named("lever")))
		}
	}
	if cfg.Sources.SmartRecruiters.Enabled {
		if cos := mapCompanies(cfg.Sources.SmartRecruiters.Companies); len(cos) > 0 {
			sr := make([]smartrecruiters.Company, len(cos))
			for i, c := range cos {
				sr[i] = smartrecruiters.Company{Slug: c.Slug, Name: c.Name}
			}
			out = append(out, smartrecruiters.New(smartrecruiters.Config{Companies: sr}, limiter, log.Named("smartrecruiters")))
		}
	}
	return out
}

// mapCompanies drops entries without a slug and names the rest.
func mapCompanies(in []config.Company) []config.Company {
	out := make([]config.Company, 0, len(in))
	for _, c := range in {
		slug := strings.TrimSpace(c.Slug)
		if slug == "" {
			continue
		}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = slug
		}
		out = append(out, config.Company{Slug: slug, Name: name})
	}
	return out
}
