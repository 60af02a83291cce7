package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// CompaniesFile keeps long board lists out of the main config.
type CompaniesFile struct {
	Sources struct {
		Greenhouse struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"greenhouse"`
		Lever struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"lever"`
		SmartRecruiters struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"smartrecruiters"`
	} `yaml:"sources"`
}

// OverlayCompanies replaces the board lists of cfg with the non-empty ones in
// companiesPath. A missing file is not an error.
func OverlayCompanies(cfg *Config, companiesPath string) error {
	b, err := os.ReadFile(companiesPath)
	if err != nil {
		return nil
	}

	var cf CompaniesFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return err
	}

	if len(cf.Sources.Greenhouse.Companies) > 0 {
		cfg.Sources.Greenhouse.Companies = cf.Sources.Greenhouse.Companies
	}
	if len(cf.Sources.Lever.Companies) > 0 {
		cfg.Sources.Lever.Companies = cf.Sources.Lever.Companies
	}
	if len(cf.Sources.SmartRecruiters.Companies) > 0 {
		cfg.Sources.SmartRecruiters.Companies = cf.Sources.SmartRecruiters.Companies
	}
	return nil
}
