// Package clean turns consolidated raw records into allow-listed job records.
package clean

import (
	"sort"

	"jobcollect-engine/internal/consolidate"
	"jobcollect-engine/internal/domain"

	"go.uber.org/zap"
)

// Report counts what cleaning removed and kept, per platform of origin.
type Report struct {
	Input                int
	DroppedNoDescription int
	DroppedBySite        map[string]int
	KeptBySite           map[string]int
	Output               int
}

type Cleaner struct {
	log *zap.SugaredLogger
}

func New(log *zap.SugaredLogger) *Cleaner {
	return &Cleaner{log: log}
}

// Clean drops records without a description (when the schema has one),
// projects the rest onto the allow-list and nulls every NaN-like value.
// ok is false when nothing survives: the caller has no data to export.
func (c *Cleaner) Clean(in consolidate.Result) (ds domain.Dataset, rep Report, ok bool) {
	rep = Report{
		Input:         len(in.Records),
		DroppedBySite: map[string]int{},
		KeptBySite:    map[string]int{},
	}

	gate := in.HasField(domain.FieldDescription.String())
	kept := make([]domain.RawRecord, 0, len(in.Records))
	for _, r := range in.Records {
		if gate && !hasDescription(r) {
			rep.DroppedNoDescription++
			rep.DroppedBySite[r.SiteName()]++
			continue
		}
		kept = append(kept, r)
		rep.KeptBySite[r.SiteName()]++
	}
	if rep.DroppedNoDescription > 0 {
		c.log.Warnf("[clean] removed %d jobs without description (%.1f%%)",
			rep.DroppedNoDescription, pct(rep.DroppedNoDescription, rep.Input))
		for _, site := range sortedKeys(rep.DroppedBySite) {
			c.log.Infof("[clean]   site=%s removed=%d kept=%d", site, rep.DroppedBySite[site], rep.KeptBySite[site])
		}
	}

	ds.Columns = Columns(in.Schema)
	ds.Records = make([]domain.JobRecord, len(kept))
	for i, r := range kept {
		ds.Records[i] = Project(r, ds.Columns)
	}
	rep.Output = len(ds.Records)

	if ds.Empty() {
		c.log.Warnf("[clean] no data left after cleaning (input=%d)", rep.Input)
		return domain.Dataset{}, rep, false
	}
	c.log.Infof("[clean] records=%d columns=%d", rep.Output, len(ds.Columns))
	return ds, rep, true
}

// Columns is the allow-list restricted to the fields the schema populated.
func Columns(schema []string) []domain.Field {
	present := make(map[string]bool, len(schema))
	for _, s := range schema {
		present[s] = true
	}
	var out []domain.Field
	for _, f := range domain.AllowList() {
		if present[f.String()] {
			out = append(out, f)
		}
	}
	return out
}

// Project copies the given columns from r, normalizing each value.
func Project(r domain.RawRecord, cols []domain.Field) domain.JobRecord {
	var jr domain.JobRecord
	for _, f := range cols {
		jr.Set(f, domain.Normalize(r.Get(f.String())))
	}
	return jr
}

// Sweep nulls every NaN-like value left in the dataset, in place.
func Sweep(ds *domain.Dataset) int {
	n := 0
	for i := range ds.Records {
		for _, f := range ds.Columns {
			v := ds.Records[i].Get(f)
			if v.IsNaNLike() {
				ds.Records[i].Set(f, domain.Null())
				n++
			}
		}
	}
	return n
}

func hasDescription(r domain.RawRecord) bool {
	v := r.Get(domain.FieldDescription.String())
	return v.Present() && !v.IsNull() && !v.IsNaNLike()
}

func pct(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return 100 * float64(n) / float64(of)
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
