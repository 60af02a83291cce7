// Package pipeline chains one collection run: collect, consolidate, clean, export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobcollect-engine/internal/clean"
	"jobcollect-engine/internal/collect"
	"jobcollect-engine/internal/consolidate"
	"jobcollect-engine/internal/domain"
	"jobcollect-engine/internal/export"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Status string

const (
	StatusExported     Status = "exported"
	StatusNoResults    Status = "no_results"
	StatusNoData       Status = "no_data"
	StatusExportFailed Status = "export_failed"
)

// Summary is the outcome of a run. Stage reports are filled up to the stage
// the run reached.
type Summary struct {
	RunID       string
	Status      Status
	Started     time.Time
	Elapsed     time.Duration
	Collection  collect.Collection
	Consolidate consolidate.Stats
	Clean       clean.Report
	Export      export.Report
	Err         error
}

func (s Summary) OK() bool { return s.Status == StatusExported }

type Pipeline struct {
	orch     *collect.Orchestrator
	cleaner  *clean.Cleaner
	exporter *export.Exporter
	log      *zap.SugaredLogger
}

func New(orch *collect.Orchestrator, cleaner *clean.Cleaner, exporter *export.Exporter, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{orch: orch, cleaner: cleaner, exporter: exporter, log: log}
}

// RunOnce runs the plan end to end. Files are written only when the run
// reaches export with data.
func (p *Pipeline) RunOnce(ctx context.Context, plan collect.Plan, base string) (sum Summary) {
	sum = Summary{RunID: uuid.NewString(), Started: time.Now()}
	log := p.log.With("run", sum.RunID)
	defer func() {
		sum.Elapsed = time.Since(sum.Started)
	}()

	log.Infof("[pipeline] start terms=%d locations=%d platforms=%v",
		len(plan.Terms), len(plan.Locations), plan.Platforms)

	sum.Collection = p.orch.Collect(ctx, plan)
	if sum.Collection.Empty() {
		sum.Status = StatusNoResults
		log.Warnf("[pipeline] no jobs found in any search (tasks=%d failed=%d)",
			len(sum.Collection.Reports), sum.Collection.Count(collect.TaskFailed))
		log.Warn("[pipeline] try broader terms, other locations or platforms, or a longer delay")
		return sum
	}

	res := consolidate.Consolidate(sum.Collection.Batches)
	sum.Consolidate = res.Stats
	log.Infof("[pipeline] consolidated total=%d duplicates=%d unique=%d",
		res.Stats.Total, res.Stats.Duplicates, res.Stats.Unique)

	ds, rep, ok := p.cleaner.Clean(res)
	sum.Clean = rep
	if !ok {
		sum.Status = StatusNoData
		log.Warn("[pipeline] no data after cleaning, nothing exported")
		return sum
	}

	erep, err := p.exporter.Export(ds, base)
	sum.Export = erep
	if err != nil {
		sum.Status = StatusExportFailed
		sum.Err = fmt.Errorf("export: %w", err)
		var ue *domain.UnsupportedValueError
		if errors.As(err, &ue) {
			log.Errorf("[pipeline] DEFECT field=%s kind=%s: %v", ue.Field, ue.Kind, ue)
		} else {
			log.Errorf("[pipeline] export failed: %v", err)
		}
		return sum
	}

	sum.Status = StatusExported
	log.Infof("[pipeline] exported records=%d csv=%s json=%s", erep.Records, erep.CSVPath, erep.JSONPath)
	return sum
}
