package collect

import (
	"context"
	"fmt"
	"time"

	"jobcollect-engine/internal/domain"
	"jobcollect-engine/internal/scrape/types"

	"go.uber.org/zap"
)

// Provider executes one search. Router is the production implementation.
type Provider interface {
	Search(ctx context.Context, q types.Query) ([]domain.RawRecord, error)
}

type TaskStatus string

const (
	TaskOK     TaskStatus = "ok"
	TaskEmpty  TaskStatus = "empty"
	TaskFailed TaskStatus = "failed"
)

// TaskReport is the outcome of one search task.
type TaskReport struct {
	Task    domain.SearchTask
	Status  TaskStatus
	Records int
	Err     error
	Elapsed time.Duration
	Stats   Stats
}

// Collection is what a run gathered: the non-empty batches in task order and
// a report for every task.
type Collection struct {
	Batches []domain.Batch
	Reports []TaskReport
}

// Empty reports run exhaustion: no task produced a record.
func (c Collection) Empty() bool {
	for _, b := range c.Batches {
		if len(b.Records) > 0 {
			return false
		}
	}
	return true
}

func (c Collection) Count(status TaskStatus) int {
	n := 0
	for _, r := range c.Reports {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Orchestrator runs the search tasks one at a time with a flat pause between them.
type Orchestrator struct {
	provider Provider
	delay    time.Duration
	timeout  time.Duration
	pause    func(time.Duration)
	log      *zap.SugaredLogger
}

// New returns an orchestrator. timeout bounds each provider call; zero means no bound.
func New(p Provider, delay, timeout time.Duration, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		provider: p,
		delay:    delay,
		timeout:  timeout,
		pause:    time.Sleep,
		log:      log,
	}
}

// WithPause replaces the sleep between tasks.
func (o *Orchestrator) WithPause(pause func(time.Duration)) *Orchestrator {
	o.pause = pause
	return o
}

// Collect runs every task of the plan. Failed and empty tasks are logged and
// skipped; they never stop the run.
func (o *Orchestrator) Collect(ctx context.Context, plan Plan) Collection {
	tasks := plan.Tasks()
	var col Collection

	for i, task := range tasks {
		o.log.Infof("[collect] search %d/%d term=%q location=%q country=%q platforms=%v",
			i+1, len(tasks), task.Term, task.Location, task.Country, task.Platforms)

		rep := o.run(ctx, plan, task)
		col.Reports = append(col.Reports, rep.report)

		switch rep.report.Status {
		case TaskFailed:
			o.log.Errorf("[collect] term=%q location=%q failed after %s: %v",
				task.Term, task.Location, rep.report.Elapsed.Round(time.Millisecond), rep.report.Err)
		case TaskEmpty:
			o.log.Warnf("[collect] term=%q location=%q returned no jobs in %s "+
				"(term too specific, location not recognized by the platform, or rate limited)",
				task.Term, task.Location, rep.report.Elapsed.Round(time.Millisecond))
		default:
			col.Batches = append(col.Batches, domain.Batch{Task: task, Records: rep.records})
			o.log.Infof("[collect] term=%q location=%q found=%d in %s",
				task.Term, task.Location, rep.report.Records, rep.report.Elapsed.Round(time.Millisecond))
			st := rep.report.Stats
			for _, site := range st.Sites() {
				o.log.Debugf("[collect]   site=%s jobs=%d", site, st.BySite[site])
			}
			o.log.Debugf("[collect]   companies=%d locations=%d remote=%d (%.1f%%)",
				st.UniqueCompanies, st.UniqueLocations, st.Remote, st.RemotePct)
		}

		if i < len(tasks)-1 && o.delay > 0 {
			o.log.Infof("[collect] waiting %s before next search", o.delay)
			o.pause(o.delay)
		}
	}

	o.log.Infof("[collect] done tasks=%d ok=%d empty=%d failed=%d",
		len(tasks), col.Count(TaskOK), col.Count(TaskEmpty), col.Count(TaskFailed))
	return col
}

type taskResult struct {
	report  TaskReport
	records []domain.RawRecord
}

func (o *Orchestrator) run(ctx context.Context, plan Plan, task domain.SearchTask) taskResult {
	start := time.Now()
	recs, err := o.call(ctx, plan.Query(task))
	rep := TaskReport{Task: task, Elapsed: time.Since(start)}

	switch {
	case err != nil:
		rep.Status = TaskFailed
		rep.Err = err
		return taskResult{report: rep}
	case len(recs) == 0:
		rep.Status = TaskEmpty
		return taskResult{report: rep}
	}

	tagged := make([]domain.RawRecord, len(recs))
	for i, r := range recs {
		t := r.Clone()
		t.Set(domain.FieldSearchTerm.String(), domain.String(task.Term))
		t.Set(domain.FieldSearchLocation.String(), domain.String(task.Location))
		t.Set(domain.FieldSearchCountry.String(), domain.String(task.Country))
		tagged[i] = t
	}
	rep.Status = TaskOK
	rep.Records = len(tagged)
	rep.Stats = batchStats(tagged)
	return taskResult{report: rep, records: tagged}
}

// call isolates one provider invocation, turning a panic into a task failure.
func (o *Orchestrator) call(ctx context.Context, q types.Query) (recs []domain.RawRecord, err error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return o.provider.Search(ctx, q)
}
