package config

import (
	"fmt"
	"strings"
)

// KnownPlatforms are the platform names some source can serve.
var KnownPlatforms = []string{
	"indeed", "linkedin", "glassdoor", "zip_recruiter", "google", "bayt", "naukri",
	"greenhouse", "lever", "smartrecruiters",
}

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err returns a *ValidationError, or nil when there are no errors.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return &ValidationError{Problems: v.Errors}
}

// ValidationError is the only error that stops a run before any search starts.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config validation failed:\n- " + joinLines(e.Problems)
}

// NormalizeAndValidate returns a trimmed, deduped copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string, lower bool) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			if lower {
				x = key
			}
			ys = append(ys, x)
		}
		return ys
	}

	// Normalize common lists
	out.Search.Terms = trimList(cfg.Search.Terms, false)
	out.Search.Platforms = trimList(cfg.Search.Platforms, true)
	out.Scraping.Proxies = trimList(cfg.Scraping.Proxies, false)

	locs := make([]Location, 0, len(cfg.Search.Locations))
	for i, l := range cfg.Search.Locations {
		l.Location = strings.TrimSpace(l.Location)
		l.Country = strings.TrimSpace(l.Country)
		if l.Location == "" || l.Country == "" {
			res.addErr("search.locations[%d] must have both location and country", i)
			continue
		}
		locs = append(locs, l)
	}
	out.Search.Locations = locs

	out.Output.Directory = strings.TrimSpace(out.Output.Directory)
	out.Output.Filename = strings.TrimSpace(out.Output.Filename)

	// ---- Validation rules ----

	if len(out.Search.Terms) == 0 {
		res.addErr("search.terms must be a non-empty list")
	}
	if len(cfg.Search.Locations) == 0 {
		res.addErr("search.locations must be a non-empty list")
	}
	if len(out.Search.Platforms) == 0 {
		res.addErr("search.platforms must be a non-empty list")
	}

	if out.Search.ResultsPerTerm <= 0 {
		res.addErr("search.results_per_term must be > 0")
	} else if out.Search.ResultsPerTerm > 1000 {
		res.addWarn("search.results_per_term is very high (%d); platforms usually cap results well below that.", out.Search.ResultsPerTerm)
	}
	if out.Search.DaysOld <= 0 {
		res.addErr("search.days_old must be > 0")
	}

	if out.Output.Directory == "" {
		res.addErr("output.directory is required")
	}
	if out.Output.Filename == "" {
		res.addErr("output.filename is required")
	} else if strings.ContainsAny(out.Output.Filename, `/\`) {
		res.addErr("output.filename must be a base name, not a path: %q", out.Output.Filename)
	}

	// pacing sanity
	if out.Scraping.DelayBetweenSearches < 0 {
		res.addErr("scraping.delay_between_searches must be >= 0")
	} else if out.Scraping.DelayBetweenSearches < 5 {
		res.addWarn("scraping.delay_between_searches is very low (%ds) and may cause rate limits.", out.Scraping.DelayBetweenSearches)
	}
	if out.Scraping.Verbose < 0 || out.Scraping.Verbose > 2 {
		res.addErr("scraping.verbose must be 0, 1 or 2")
	}
	if out.Scraping.TimeoutSeconds < 0 {
		res.addErr("scraping.timeout_seconds must be >= 0")
	}
	if out.Scraping.RequestsPerSecond < 0 {
		res.addErr("scraping.requests_per_second must be >= 0")
	}

	known := map[string]bool{}
	for _, p := range KnownPlatforms {
		known[p] = true
	}
	for _, p := range out.Search.Platforms {
		if !known[p] {
			res.addWarn("unknown platform %q; no source may serve it.", p)
		}
	}

	// sources required fields if enabled
	if out.Sources.JobSpy.Enabled && strings.TrimSpace(out.Sources.JobSpy.BaseURL) == "" {
		res.addErr("sources.jobspy.base_url is required when sources.jobspy.enabled=true")
	}
	if out.Sources.Greenhouse.Enabled && len(out.Sources.Greenhouse.Companies) == 0 {
		res.addWarn("sources.greenhouse is enabled but has no companies.")
	}
	if out.Sources.Lever.Enabled && len(out.Sources.Lever.Companies) == 0 {
		res.addWarn("sources.lever is enabled but has no companies.")
	}
	if out.Sources.SmartRecruiters.Enabled && len(out.Sources.SmartRecruiters.Companies) == 0 {
		res.addWarn("sources.smartrecruiters is enabled but has no companies.")
	}

	if jt := out.JobType(); jt != "" {
		switch jt {
		case "fulltime", "parttime", "contract", "internship":
		default:
			res.addWarn("filters.job_type %q is not one of fulltime, parttime, contract, internship.", jt)
		}
	}

	return out, res
}
