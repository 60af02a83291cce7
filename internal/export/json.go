package export

import (
	"encoding/json"
	"io"

	"jobcollect-engine/internal/clean"
	"jobcollect-engine/internal/domain"
)

// WriteJSON writes an indented array of objects, keys in column order. It
// sweeps NaN-like values to null first; any value the document cannot hold
// after that fails with *domain.UnsupportedValueError.
func WriteJSON(w io.Writer, ds domain.Dataset) error {
	swept := sweptCopy(ds)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(swept.Entries())
}

// sweptCopy returns ds with every NaN-like value nulled, leaving ds untouched.
func sweptCopy(ds domain.Dataset) domain.Dataset {
	out := domain.Dataset{
		Columns: ds.Columns,
		Records: append([]domain.JobRecord(nil), ds.Records...),
	}
	clean.Sweep(&out)
	return out
}
