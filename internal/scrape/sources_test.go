package scrape

import (
	"testing"

	"jobcollect-engine/internal/config"
	"jobcollect-engine/internal/logging"

	"github.com/stretchr/testify/assert"
)

func TestBuildSourcesHonoursEnabledFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Sources.Greenhouse.Enabled = true
	cfg.Sources.Greenhouse.Companies = []config.Company{{Slug: " acme "}, {Slug: ""}}
	cfg.Sources.Lever.Enabled = true // no companies: skipped

	srcs := BuildSources(cfg, "", logging.Nop())

	var names []string
	for _, s := range srcs {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"jobspy", "greenhouse"}, names)

	r := NewRouter(logging.Nop(), srcs...)
	assert.True(t, r.Serves("indeed"))
	assert.True(t, r.Serves("greenhouse"))
	assert.False(t, r.Serves("lever"))
}

func TestMapCompaniesDefaultsName(t *testing.T) {
	got := mapCompanies([]config.Company{{Slug: "acme"}, {Slug: " ", Name: "x"}, {Slug: "globex", Name: "Globex Inc"}})
	assert.Equal(t, []config.Company{{Slug: "acme", Name: "acme"}, {Slug: "globex", Name: "Globex Inc"}}, got)
}
