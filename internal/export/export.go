// Package export writes a cleaned dataset as a CSV file and a JSON document
// sharing one timestamp suffix.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobcollect-engine/internal/domain"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// StampLayout is the YYYYMMDD_HHMMSS suffix shared by both files of an export.
const StampLayout = "20060102_150405"

var ErrNothingToExport = errors.New("no jobs to export")

type Report struct {
	CSVPath   string
	JSONPath  string
	CSVBytes  int64
	JSONBytes int64
	Columns   []string
	Records   int
}

type Exporter struct {
	dir string
	now func() time.Time
	log *zap.SugaredLogger
}

// New returns an exporter writing into dir, creating it if needed.
func New(dir string, log *zap.SugaredLogger) (*Exporter, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("export: output directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", dir, err)
	}
	return &Exporter{dir: dir, now: time.Now, log: log}, nil
}

func (e *Exporter) Dir() string { return e.dir }

// Paths returns the file pair an export at t would write.
func (e *Exporter) Paths(base string, t time.Time) (csvPath, jsonPath string) {
	stem := filepath.Join(e.dir, base+"_"+t.Format(StampLayout))
	return stem + ".csv", stem + ".json"
}

// Export writes both files. Each write is attempted even if the other fails;
// the error combines whatever went wrong. An empty dataset writes nothing and
// returns ErrNothingToExport.
func (e *Exporter) Export(ds domain.Dataset, base string) (Report, error) {
	if ds.Empty() {
		e.log.Warn("[export] no jobs to export")
		return Report{}, ErrNothingToExport
	}

	// both files get the same final sweep so they agree value for value
	ds = sweptCopy(ds)

	csvPath, jsonPath := e.Paths(base, e.now())
	rep := Report{
		CSVPath:  csvPath,
		JSONPath: jsonPath,
		Columns:  ds.ColumnNames(),
		Records:  ds.Len(),
	}
	e.log.Infof("[export] dataset columns=%d records=%d", len(rep.Columns), rep.Records)

	var err error
	if werr := writeFile(csvPath, func(f *os.File) error { return WriteCSV(f, ds) }); werr != nil {
		e.log.Errorf("[export] csv path=%s err=%v", csvPath, werr)
		err = multierr.Append(err, fmt.Errorf("csv: %w", werr))
	} else {
		rep.CSVBytes = size(csvPath)
		e.log.Infof("[export] csv exported path=%s", csvPath)
	}

	if werr := writeFile(jsonPath, func(f *os.File) error { return WriteJSON(f, ds) }); werr != nil {
		var ue *domain.UnsupportedValueError
		if errors.As(werr, &ue) {
			e.log.Errorf("[export] DEFECT: cleaning let an unsupported value through: %v", ue)
		} else {
			e.log.Errorf("[export] json path=%s err=%v", jsonPath, werr)
		}
		err = multierr.Append(err, fmt.Errorf("json: %w", werr))
	} else {
		rep.JSONBytes = size(jsonPath)
		e.log.Infof("[export] json exported path=%s", jsonPath)
	}

	if err != nil {
		return rep, err
	}
	e.log.Infof("[export] sizes csv=%s json=%s",
		humanize.Bytes(uint64(rep.CSVBytes)), humanize.Bytes(uint64(rep.JSONBytes)))
	e.log.Infof("[export] columns (%d): %s", len(rep.Columns), strings.Join(rep.Columns, ", "))
	return rep, nil
}

// writeFile writes through a tmp file and renames it into place, so a failed
// write leaves path untouched and the .tmp behind for inspection.
func writeFile(path string, write func(*os.File) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func size(path string) int64 {
	st, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return st.Size()
}
