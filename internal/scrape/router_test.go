package scrape

import (
	"context"
	"errors"
	"sync"
	"testing"

	"jobcollect-engine/internal/domain"
	"jobcollect-engine/internal/logging"
	"jobcollect-engine/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name      string
	platforms []string
	recs      []domain.RawRecord
	err       error

	mu  sync.Mutex
	got []types.Query
}

func (f *fakeSource) Name() string        { return f.name }
func (f *fakeSource) Platforms() []string { return f.platforms }
func (f *fakeSource) Search(_ context.Context, q types.Query) ([]domain.RawRecord, error) {
	f.mu.Lock()
	f.got = append(f.got, q)
	f.mu.Unlock()
	return f.recs, f.err
}

func TestRouterPartitionsPlatforms(t *testing.T) {
	spy := &fakeSource{name: "jobspy", platforms: []string{"indeed", "linkedin"},
		recs: []domain.RawRecord{{"id": domain.String("in-1"), "site": domain.String("indeed")}}}
	gh := &fakeSource{name: "greenhouse", platforms: []string{"greenhouse"},
		recs: []domain.RawRecord{{"id": domain.String("gh-1")}}}
	r := NewRouter(logging.Nop(), spy, gh)

	recs, err := r.Search(context.Background(), types.Query{
		Platforms: []string{"Indeed", "greenhouse", "linkedin", "monster"},
		Term:      "qa",
	})
	require.NoError(t, err)

	require.Len(t, spy.got, 1)
	assert.Equal(t, []string{"indeed", "linkedin"}, spy.got[0].Platforms)
	assert.Equal(t, "qa", spy.got[0].Term)
	require.Len(t, gh.got, 1)
	assert.Equal(t, []string{"greenhouse"}, gh.got[0].Platforms)

	require.Len(t, recs, 2)
	assert.Equal(t, "in-1", recs[0].Get("id").Str())
	assert.Equal(t, "greenhouse", recs[1].SiteName())
	assert.True(t, r.Serves("LINKEDIN"))
	assert.False(t, r.Serves("monster"))
}

func TestRouterPartialFailureStands(t *testing.T) {
	ok := &fakeSource{name: "lever", platforms: []string{"lever"},
		recs: []domain.RawRecord{{"id": domain.String("lv-1")}}}
	bad := &fakeSource{name: "jobspy", platforms: []string{"indeed"}, err: errors.New("503")}

	recs, err := NewRouter(logging.Nop(), bad, ok).
		Search(context.Background(), types.Query{Platforms: []string{"indeed", "lever"}})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRouterFailsWhenAllSourcesFail(t *testing.T) {
	a := &fakeSource{name: "jobspy", platforms: []string{"indeed"}, err: errors.New("503")}
	b := &fakeSource{name: "lever", platforms: []string{"lever"}, err: errors.New("timeout")}

	_, err := NewRouter(logging.Nop(), a, b).
		Search(context.Background(), types.Query{Platforms: []string{"indeed", "lever"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jobspy: 503")
	assert.Contains(t, err.Error(), "lever: timeout")
}

func TestRouterWithoutOwningSource(t *testing.T) {
	_, err := NewRouter(logging.Nop()).
		Search(context.Background(), types.Query{Platforms: []string{"indeed"}})
	assert.ErrorIs(t, err, ErrNoEnabledSources)
}
