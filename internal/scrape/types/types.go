package types

import (
	"context"
	"strings"
	"time"

	"jobcollect-engine/internal/domain"
)

// Query is a single search against a platform set: one term, one location.
type Query struct {
	Platforms     []string
	Term          string
	Location      string
	Country       string // locale filter for indeed
	ResultsWanted int
	HoursOld      int
	JobType       string
	IsRemote      *bool
	Proxies       []string
}

// Source serves searches for the platforms it owns.
type Source interface {
	Name() string
	Platforms() []string
	Search(ctx context.Context, q Query) ([]domain.RawRecord, error)
}

// Lead is the intermediate shape board scrapers build before mapping to a record.
type Lead struct {
	SourceID    string
	Site        string
	Company     string
	Title       string
	URL         string
	Location    string
	WorkMode    string // Remote/Hybrid/Onsite/Unknown
	Description string
	PostedAt    *time.Time
}

// Record maps a lead onto the raw record shape the collector consumes.
func (l Lead) Record() domain.RawRecord {
	r := domain.RawRecord{
		"id":          domain.String(l.SourceID),
		"site":        domain.String(l.Site),
		"job_url":     domain.String(l.URL),
		"title":       domain.String(l.Title),
		"company":     domain.String(l.Company),
		"location":    domain.String(l.Location),
		"description": domain.String(l.Description),
		"is_remote":   domain.Bool(strings.EqualFold(l.WorkMode, "remote")),
	}
	if l.PostedAt != nil && !l.PostedAt.IsZero() {
		r["date_posted"] = domain.Date(*l.PostedAt)
	} else {
		r["date_posted"] = domain.Null()
	}
	if l.WorkMode != "" && !strings.EqualFold(l.WorkMode, "unknown") {
		r["work_mode"] = domain.String(l.WorkMode)
	}
	return r
}
