package collect

import (
	"jobcollect-engine/internal/config"
	"jobcollect-engine/internal/domain"
	"jobcollect-engine/internal/scrape/types"
)

// Plan is everything one run searches for.
type Plan struct {
	Terms     []string
	Locations []config.Location
	Platforms []string

	ResultsWanted int
	DaysOld       int
	JobType       string
	IsRemote      *bool
	Proxies       []string
}

// PlanFromConfig reads the search section of an already validated config.
func PlanFromConfig(cfg config.Config) Plan {
	return Plan{
		Terms:         cfg.Search.Terms,
		Locations:     cfg.Search.Locations,
		Platforms:     cfg.Search.Platforms,
		ResultsWanted: cfg.Search.ResultsPerTerm,
		DaysOld:       cfg.Search.DaysOld,
		JobType:       cfg.JobType(),
		IsRemote:      cfg.Filters.IsRemote,
		Proxies:       cfg.Scraping.Proxies,
	}
}

// Tasks lists every location x term combination, location outermost.
func (p Plan) Tasks() []domain.SearchTask {
	out := make([]domain.SearchTask, 0, len(p.Locations)*len(p.Terms))
	for _, loc := range p.Locations {
		for _, term := range p.Terms {
			out = append(out, domain.SearchTask{
				Term:      term,
				Location:  loc.Location,
				Country:   loc.Country,
				Platforms: p.Platforms,
			})
		}
	}
	return out
}

// Query builds the provider call for one task. Exactly one term per call.
func (p Plan) Query(t domain.SearchTask) types.Query {
	return types.Query{
		Platforms:     t.Platforms,
		Term:          t.Term,
		Location:      t.Location,
		Country:       t.Country,
		ResultsWanted: p.ResultsWanted,
		HoursOld:      p.DaysOld * 24,
		JobType:       p.JobType,
		IsRemote:      p.IsRemote,
		Proxies:       p.Proxies,
	}
}
