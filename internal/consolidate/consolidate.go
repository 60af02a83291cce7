// Package consolidate merges search batches into one deduplicated record set.
package consolidate

import (
	"sort"
	"strings"

	"jobcollect-engine/internal/domain"
)

type Stats struct {
	Total      int
	Duplicates int
	Unique     int
}

type Result struct {
	Records []domain.RawRecord
	// Schema is every field name seen, in first-seen order.
	Schema []string
	Stats  Stats
}

func (r Result) HasField(name string) bool {
	for _, s := range r.Schema {
		if s == name {
			return true
		}
	}
	return false
}

// Consolidate concatenates the batches in order and drops duplicates, keeping
// the first occurrence. Records with an id are keyed by it; records without
// one are keyed by their whole content.
func Consolidate(batches []domain.Batch) Result {
	var all []domain.RawRecord
	for _, b := range batches {
		all = append(all, b.Records...)
	}
	return Records(all)
}

// Records deduplicates an already concatenated record set.
func Records(all []domain.RawRecord) Result {
	res := Result{Records: make([]domain.RawRecord, 0, len(all))}
	seenField := map[string]bool{}
	seenKey := map[string]bool{}

	for _, r := range all {
		for _, name := range orderedFields(r) {
			if !seenField[name] {
				seenField[name] = true
				res.Schema = append(res.Schema, name)
			}
		}

		k := key(r)
		if seenKey[k] {
			res.Stats.Duplicates++
			continue
		}
		seenKey[k] = true
		res.Records = append(res.Records, r)
	}

	res.Stats.Total = len(all)
	res.Stats.Unique = len(res.Records)
	return res
}

func key(r domain.RawRecord) string {
	if id := r.Get(domain.FieldID.String()); id.Present() && !id.IsNull() && !id.IsNaNLike() {
		return "id\x00" + id.Kind().String() + "\x01" + id.Text()
	}
	var b strings.Builder
	b.WriteString("rec")
	for _, name := range orderedFields(r) {
		v := r[name]
		b.WriteByte(0)
		b.WriteString(name)
		b.WriteByte(1)
		b.WriteString(v.Kind().String())
		b.WriteByte(1)
		b.WriteString(v.Text())
	}
	return b.String()
}

// orderedFields lists a record's present fields: allow-listed ones in column
// order, then the rest sorted by name.
func orderedFields(r domain.RawRecord) []string {
	out := make([]string, 0, len(r))
	for _, f := range domain.AllowList() {
		if r.Has(f.String()) {
			out = append(out, f.String())
		}
	}
	var extra []string
	for name := range r {
		if _, known := domain.ParseField(name); !known && r.Has(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
