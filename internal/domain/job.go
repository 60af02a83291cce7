package domain

import (
	"bytes"
	"encoding/json"
)

// Field is one column of the job record allow-list.
type Field uint8

const (
	FieldID Field = iota
	FieldSite
	FieldJobURL
	FieldJobURLDirect
	FieldTitle
	FieldCompany
	FieldLocation
	FieldDatePosted
	FieldJobType
	FieldSalarySource
	FieldInterval
	FieldMinAmount
	FieldMaxAmount
	FieldCurrency
	FieldIsRemote
	FieldJobLevel
	FieldJobFunction
	FieldDescription
	FieldSkills
	// search metadata, always set by the collector
	FieldSearchTerm
	FieldSearchLocation
	FieldSearchCountry

	numFields
)

var fieldNames = [numFields]string{
	"id",
	"site",
	"job_url",
	"job_url_direct",
	"title",
	"company",
	"location",
	"date_posted",
	"job_type",
	"salary_source",
	"interval",
	"min_amount",
	"max_amount",
	"currency",
	"is_remote",
	"job_level",
	"job_function",
	"description",
	"skills",
	"search_term",
	"search_location",
	"search_country",
}

var fieldByName = func() map[string]Field {
	m := make(map[string]Field, numFields)
	for i, n := range fieldNames {
		m[n] = Field(i)
	}
	return m
}()

func (f Field) String() string {
	if f < numFields {
		return fieldNames[f]
	}
	return "field?"
}

func ParseField(name string) (Field, bool) {
	f, ok := fieldByName[name]
	return f, ok
}

// AllowList returns every retained field in canonical column order.
func AllowList() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// JobRecord is a cleaned record restricted to the allow-list.
type JobRecord struct {
	values [numFields]Value
}

func (r *JobRecord) Get(f Field) Value {
	if f >= numFields {
		return Value{}
	}
	return r.values[f]
}

func (r *JobRecord) Set(f Field, v Value) {
	if f < numFields {
		r.values[f] = v
	}
}

func (r *JobRecord) ID() Value          { return r.values[FieldID] }
func (r *JobRecord) Site() Value        { return r.values[FieldSite] }
func (r *JobRecord) Description() Value { return r.values[FieldDescription] }

// Dataset is the cleaned record set together with the columns the run populated.
type Dataset struct {
	Columns []Field
	Records []JobRecord
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

func (d *Dataset) Empty() bool { return d.Len() == 0 }

func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.String()
	}
	return out
}

// Entry is one record laid out as an ordered field -> value document.
type Entry struct {
	Columns []Field
	Values  []Value
}

func (d *Dataset) Entries() []Entry {
	out := make([]Entry, len(d.Records))
	for i := range d.Records {
		vals := make([]Value, len(d.Columns))
		for j, c := range d.Columns {
			vals[j] = d.Records[i].Get(c)
		}
		out[i] = Entry{Columns: d.Columns, Values: vals}
	}
	return out
}

// MarshalJSON writes the entry as an object with keys in column order.
func (e Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range e.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(c.String())
		buf.Write(k)
		buf.WriteByte(':')
		b, err := e.Values[i].MarshalJSON()
		if err != nil {
			if ue, ok := err.(*UnsupportedValueError); ok {
				ue.Field = c.String()
			}
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
