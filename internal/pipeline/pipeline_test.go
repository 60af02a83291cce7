package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"jobcollect-engine/internal/clean"
	"jobcollect-engine/internal/collect"
	"jobcollect-engine/internal/config"
	"jobcollect-engine/internal/domain"
	"jobcollect-engine/internal/export"
	"jobcollect-engine/internal/logging"
	"jobcollect-engine/internal/scrape/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerFunc func(q types.Query) ([]domain.RawRecord, error)

func (f providerFunc) Search(_ context.Context, q types.Query) ([]domain.RawRecord, error) {
	return f(q)
}

func plan() collect.Plan {
	return collect.Plan{
		Terms:     []string{"qa", "sdet"},
		Locations: []config.Location{{Location: "Recife", Country: "Brazil"}, {Location: "Lisbon", Country: "Portugal"}},
		Platforms: []string{"indeed", "glassdoor"},
	}
}

func build(t *testing.T, p collect.Provider) (*Pipeline, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "out")
	log := logging.Nop()
	ex, err := export.New(dir, log)
	require.NoError(t, err)
	orch := collect.New(p, time.Second, 0, log).WithPause(func(time.Duration) {})
	return New(orch, clean.New(log), ex, log), dir
}

func files(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func TestRunExportsPartialSuccess(t *testing.T) {
	calls := 0
	p, dir := build(t, providerFunc(func(q types.Query) ([]domain.RawRecord, error) {
		calls++
		switch calls {
		case 1:
			return []domain.RawRecord{
				{"id": domain.String("a"), "site": domain.String("indeed"), "description": domain.String("desc")},
				{"id": domain.String("b"), "site": domain.String("glassdoor"), "description": domain.String("")},
			}, nil
		case 2:
			return []domain.RawRecord{
				{"id": domain.String("a"), "site": domain.String("indeed"), "description": domain.String("dup")},
			}, nil
		case 3:
			return nil, errors.New("rate limited")
		}
		return nil, nil
	}))

	sum := p.RunOnce(context.Background(), plan(), "jobs")

	require.True(t, sum.OK(), "status=%s err=%v", sum.Status, sum.Err)
	_, err := uuid.Parse(sum.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 3, sum.Consolidate.Total)
	assert.Equal(t, 1, sum.Consolidate.Duplicates)
	assert.Equal(t, 1, sum.Clean.DroppedNoDescription)
	assert.Equal(t, 1, sum.Export.Records)
	assert.Len(t, files(t, dir), 2)
}

func TestExhaustedRunWritesNothing(t *testing.T) {
	p, dir := build(t, providerFunc(func(types.Query) ([]domain.RawRecord, error) {
		return nil, errors.New("down")
	}))

	sum := p.RunOnce(context.Background(), plan(), "jobs")

	assert.Equal(t, StatusNoResults, sum.Status)
	assert.False(t, sum.OK())
	assert.Len(t, sum.Collection.Reports, 4)
	assert.Empty(t, files(t, dir))
}

func TestNoDataAfterCleaning(t *testing.T) {
	p, dir := build(t, providerFunc(func(types.Query) ([]domain.RawRecord, error) {
		return []domain.RawRecord{{"id": domain.String("g1"), "description": domain.String("NaN")}}, nil
	}))

	sum := p.RunOnce(context.Background(), plan(), "jobs")

	assert.Equal(t, StatusNoData, sum.Status)
	assert.Equal(t, 1, sum.Clean.Input)
	assert.Empty(t, files(t, dir))
}

func TestUnsupportedValueIsExportFailure(t *testing.T) {
	p, _ := build(t, providerFunc(func(types.Query) ([]domain.RawRecord, error) {
		return []domain.RawRecord{{
			"id":          domain.String("x"),
			"description": domain.String("d"),
			"skills":      domain.Opaque(map[string]int{"go": 1}),
		}}, nil
	}))

	sum := p.RunOnce(context.Background(), plan(), "jobs")

	assert.Equal(t, StatusExportFailed, sum.Status)
	var ue *domain.UnsupportedValueError
	require.True(t, errors.As(sum.Err, &ue))
	assert.Equal(t, "skills", ue.Field)
}
