// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ConfigPathEnv     = "JOBCOLLECT_CONFIG"
	DefaultConfigPath = "config.yml"
)

type Location struct {
	Location string `yaml:"location"`
	Country  string `yaml:"country"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s (%s)", l.Location, l.Country)
}

type Company struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

type Config struct {
	Search struct {
		Terms     []string   `yaml:"terms"`
		Locations []Location `yaml:"locations"`
		Platforms []string   `yaml:"platforms"`

		ResultsPerTerm int `yaml:"results_per_term"`
		DaysOld        int `yaml:"days_old"`
	} `yaml:"search"`

	Output struct {
		Directory string `yaml:"directory"`
		Filename  string `yaml:"filename"`
	} `yaml:"output"`

	Scraping struct {
		DelayBetweenSearches int      `yaml:"delay_between_searches"` // seconds
		Verbose              int      `yaml:"verbose"`                // 0 silent, 1 basic, 2 detailed
		Proxies              []string `yaml:"proxies"`
		TimeoutSeconds       int      `yaml:"timeout_seconds"`     // per search task
		RequestsPerSecond    float64  `yaml:"requests_per_second"` // per platform host
	} `yaml:"scraping"`

	Filters struct {
		JobType  *string `yaml:"job_type"`
		IsRemote *bool   `yaml:"is_remote"`
	} `yaml:"filters"`

	Sources struct {
		JobSpy struct {
			Enabled        bool   `yaml:"enabled"`
			BaseURL        string `yaml:"base_url"`
			KeyringAccount string `yaml:"keyring_account"`
			APIKeyEnv      string `yaml:"api_key_env"`
		} `yaml:"jobspy"`

		Greenhouse struct {
			Enabled   bool      `yaml:"enabled"`
			Companies []Company `yaml:"companies"`
		} `yaml:"greenhouse"`

		Lever struct {
			Enabled   bool      `yaml:"enabled"`
			Companies []Company `yaml:"companies"`
		} `yaml:"lever"`

		SmartRecruiters struct {
			Enabled   bool      `yaml:"enabled"`
			Companies []Company `yaml:"companies"`
		} `yaml:"smartrecruiters"`

		CompaniesFile string `yaml:"companies_file"`
	} `yaml:"sources"`
}

// Default is the configuration used for anything the file leaves out.
func Default() Config {
	var cfg Config
	cfg.Search.Terms = []string{"QA Engineer"}
	cfg.Search.Locations = []Location{{Location: "Brazil", Country: "Brazil"}}
	cfg.Search.Platforms = []string{"indeed"}
	cfg.Search.ResultsPerTerm = 10
	cfg.Search.DaysOld = 7

	cfg.Output.Directory = "results"
	cfg.Output.Filename = "jobs_dataset"

	cfg.Scraping.DelayBetweenSearches = 10
	cfg.Scraping.Verbose = 1
	cfg.Scraping.TimeoutSeconds = 120
	cfg.Scraping.RequestsPerSecond = 1

	cfg.Sources.JobSpy.Enabled = true
	cfg.Sources.JobSpy.BaseURL = "http://127.0.0.1:8000"
	cfg.Sources.JobSpy.KeyringAccount = "jobcollect:jobspy"
	cfg.Sources.JobSpy.APIKeyEnv = "JOBSPY_API_KEY"
	return cfg
}

// legacyShape catches the old single-location form:
//
//	search: {location: "Recife", country: "Brazil"}
type legacyShape struct {
	Search struct {
		Locations []Location `yaml:"locations"`
		Location  *string    `yaml:"location"`
		Country   *string    `yaml:"country"`
	} `yaml:"search"`
}

// Load decodes path over Default(), so any key the file sets overrides the default.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	var legacy legacyShape
	if err := yaml.Unmarshal(b, &legacy); err == nil {
		if legacy.Search.Location != nil && legacy.Search.Locations == nil {
			loc := strings.TrimSpace(*legacy.Search.Location)
			country := loc
			if legacy.Search.Country != nil {
				country = strings.TrimSpace(*legacy.Search.Country)
			}
			cfg.Search.Locations = []Location{{Location: loc, Country: country}}
		}
	}

	if cfg.Sources.CompaniesFile != "" {
		if err := OverlayCompanies(&cfg, cfg.Sources.CompaniesFile); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults with found=false.
func LoadOrDefault(path string) (cfg Config, found bool, err error) {
	cfg, err = Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	return cfg, err == nil, err
}

// ResolvePath picks the flag value, then $JOBCOLLECT_CONFIG, then config.yml.
func ResolvePath(flagPath string) string {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnv)); p != "" {
		return p
	}
	return DefaultConfigPath
}

func (c Config) JobType() string {
	if c.Filters.JobType == nil {
		return ""
	}
	return strings.TrimSpace(*c.Filters.JobType)
}
