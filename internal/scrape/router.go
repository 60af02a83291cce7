package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobcollect-engine/internal/domain"
	"jobcollect-engine/internal/scrape/types"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoEnabledSources means none of the requested platforms is served by an enabled source.
var ErrNoEnabledSources = errors.New("no enabled source serves the requested platforms")

// Router sends a query to every source owning one of its platforms.
type Router struct {
	sources []types.Source
	owner   map[string]types.Source
	log     *zap.SugaredLogger
}

// NewRouter indexes sources by platform. The first source to claim a platform owns it.
func NewRouter(log *zap.SugaredLogger, sources ...types.Source) *Router {
	r := &Router{owner: map[string]types.Source{}, log: log}
	for _, s := range sources {
		if s == nil {
			continue
		}
		r.sources = append(r.sources, s)
		for _, p := range s.Platforms() {
			p = strings.ToLower(p)
			if _, taken := r.owner[p]; !taken {
				r.owner[p] = s
			}
		}
	}
	return r
}

// Serves reports whether some source owns platform.
func (r *Router) Serves(platform string) bool {
	_, ok := r.owner[strings.ToLower(platform)]
	return ok
}

type routed struct {
	src       types.Source
	platforms []string
}

// partition groups the query platforms by owning source, in source registration order.
func (r *Router) partition(platforms []string) []routed {
	idx := map[types.Source]int{}
	var groups []routed
	for _, p := range platforms {
		p = strings.ToLower(strings.TrimSpace(p))
		s, ok := r.owner[p]
		if !ok {
			r.log.Warnf("[router] platform=%q has no enabled source, skipped", p)
			continue
		}
		i, seen := idx[s]
		if !seen {
			i = len(groups)
			idx[s] = i
			groups = append(groups, routed{src: s})
		}
		groups[i].platforms = append(groups[i].platforms, p)
	}
	return groups
}

// Search runs the query on each owning source concurrently. A partial result
// stands; the call fails only when every involved source failed.
func (r *Router) Search(ctx context.Context, q types.Query) ([]domain.RawRecord, error) {
	groups := r.partition(q.Platforms)
	if len(groups) == 0 {
		return nil, ErrNoEnabledSources
	}

	results := make([][]domain.RawRecord, len(groups))
	errs := make([]error, len(groups))

	var g errgroup.Group
	for i, grp := range groups {
		i, grp := i, grp
		g.Go(func() error {
			sq := q
			sq.Platforms = grp.platforms
			recs, err := grp.src.Search(ctx, sq)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", grp.src.Name(), err)
				return nil
			}
			for _, rec := range recs {
				if !rec.Has(domain.FieldSite.String()) && len(grp.platforms) == 1 {
					rec.Set(domain.FieldSite.String(), domain.String(grp.platforms[0]))
				}
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	var (
		out    []domain.RawRecord
		failed error
		nfail  int
	)
	for i := range groups {
		if errs[i] != nil {
			r.log.Warnf("[router] source=%s platforms=%v err=%v", groups[i].src.Name(), groups[i].platforms, errs[i])
			failed = multierr.Append(failed, errs[i])
			nfail++
			continue
		}
		out = append(out, results[i]...)
	}
	if nfail == len(groups) {
		return nil, failed
	}
	return out, nil
}
