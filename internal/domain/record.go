package domain

import "strings"

// RawRecord is a loosely-typed record as returned by a source. Fields vary
// by platform; a missing key reads as an absent Value.
type RawRecord map[string]Value

func (r RawRecord) Get(name string) Value { return r[name] }

func (r RawRecord) Has(name string) bool {
	v, ok := r[name]
	return ok && v.Present()
}

func (r RawRecord) Set(name string, v Value) { r[name] = v }

func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// SiteName returns the platform of origin, or "unknown".
func (r RawRecord) SiteName() string {
	v := r.Get(FieldSite.String())
	if v.Kind() != KindString || strings.TrimSpace(v.Str()) == "" {
		return "unknown"
	}
	return v.Str()
}

// SearchTask is one (term, location, country) combination against a platform set.
type SearchTask struct {
	Term      string
	Location  string
	Country   string
	Platforms []string
}

// Batch is the tagged record set returned by one search task.
type Batch struct {
	Task    SearchTask
	Records []RawRecord
}
