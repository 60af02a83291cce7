package consolidate

import (
	"testing"

	"jobcollect-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(kv ...any) domain.RawRecord {
	r := domain.RawRecord{}
	for i := 0; i < len(kv); i += 2 {
		r[kv[i].(string)] = domain.FromAny(kv[i+1])
	}
	return r
}

func TestIDDedupKeepsFirst(t *testing.T) {
	batches := []domain.Batch{
		{Records: []domain.RawRecord{
			rec("id", "in-1", "title", "QA Engineer", "description", "full text"),
			rec("id", "in-2", "title", "SDET"),
		}},
		{Records: []domain.RawRecord{
			rec("id", "in-1", "title", "QA Engineer", "description", "full te..."),
		}},
	}
	res := Consolidate(batches)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "full text", res.Records[0].Get("description").Str())
	assert.Equal(t, Stats{Total: 3, Duplicates: 1, Unique: 2}, res.Stats)
}

func TestIDKeyDistinguishesKinds(t *testing.T) {
	batches := []domain.Batch{{Records: []domain.RawRecord{
		rec("id", 1.0, "title", "numeric id"),
		rec("id", "1", "title", "text id"),
		rec("id", 1.0, "title", "numeric again"),
	}}}
	res := Consolidate(batches)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "numeric id", res.Records[0].Get("title").Str())
	assert.Equal(t, "text id", res.Records[1].Get("title").Str())
	assert.Equal(t, Stats{Total: 3, Duplicates: 1, Unique: 2}, res.Stats)
}

func TestStructuralFallbackWithoutID(t *testing.T) {
	batches := []domain.Batch{{Records: []domain.RawRecord{
		rec("title", "QA", "company", "Acme", "min_amount", 10.0),
		rec("title", "QA", "company", "Acme", "min_amount", 10.0),
		rec("title", "QA", "company", "Acme", "min_amount", 11.0),
	}}}
	res := Consolidate(batches)

	assert.Equal(t, 2, res.Stats.Unique)
	assert.Equal(t, 1, res.Stats.Duplicates)
	assert.False(t, res.HasField("id"))
}

func TestMixedIDPresence(t *testing.T) {
	res := Records([]domain.RawRecord{
		rec("id", "a", "title", "one"),
		rec("id", nil, "title", "two"),
		rec("id", "a", "title", "changed"),
		rec("id", nil, "title", "two"),
		rec("title", "three"),
	})
	require.Len(t, res.Records, 3)
	assert.Equal(t, "one", res.Records[0].Get("title").Str())
	assert.Equal(t, "two", res.Records[1].Get("title").Str())
	assert.Equal(t, "three", res.Records[2].Get("title").Str())
}

func TestDedupIsIdempotent(t *testing.T) {
	first := Consolidate([]domain.Batch{{Records: []domain.RawRecord{
		rec("id", "1"), rec("id", "2"), rec("id", "1"), rec("id", "3"),
	}}})
	second := Records(first.Records)

	assert.Equal(t, first.Stats.Unique, second.Stats.Unique)
	assert.Equal(t, 0, second.Stats.Duplicates)
}

func TestSchemaIsFirstSeenUnion(t *testing.T) {
	res := Records([]domain.RawRecord{
		rec("title", "a", "id", "1", "zz_extra", "x"),
		rec("id", "2", "company", "Acme", "aa_extra", "y"),
	})
	assert.Equal(t, []string{"id", "title", "zz_extra", "company", "aa_extra"}, res.Schema)
}
