package collect

import (
	"sort"
	"strings"

	"jobcollect-engine/internal/domain"
)

// Stats summarizes one batch: where it came from and how varied it is.
type Stats struct {
	BySite          map[string]int
	UniqueCompanies int
	UniqueLocations int
	Remote          int
	RemotePct       float64
}

func batchStats(recs []domain.RawRecord) Stats {
	st := Stats{BySite: map[string]int{}}
	companies := map[string]struct{}{}
	locations := map[string]struct{}{}

	for _, r := range recs {
		st.BySite[r.SiteName()]++
		if v := r.Get(domain.FieldCompany.String()); v.Kind() == domain.KindString && !v.IsNaNLike() {
			companies[v.Str()] = struct{}{}
		}
		if v := r.Get(domain.FieldLocation.String()); v.Kind() == domain.KindString && !v.IsNaNLike() {
			locations[v.Str()] = struct{}{}
		}
		if isRemote(r.Get(domain.FieldIsRemote.String())) {
			st.Remote++
		}
	}
	st.UniqueCompanies = len(companies)
	st.UniqueLocations = len(locations)
	if len(recs) > 0 {
		st.RemotePct = 100 * float64(st.Remote) / float64(len(recs))
	}
	return st
}

func isRemote(v domain.Value) bool {
	switch v.Kind() {
	case domain.KindBool:
		return v.Truth()
	case domain.KindString:
		return strings.EqualFold(strings.TrimSpace(v.Str()), "true")
	case domain.KindNumber:
		return v.Num() == 1
	}
	return false
}

// Sites returns the platform names in the batch, sorted.
func (s Stats) Sites() []string {
	out := make([]string, 0, len(s.BySite))
	for k := range s.BySite {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
