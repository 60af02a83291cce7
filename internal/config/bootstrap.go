package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

const exampleHeader = `Job collection configuration.
Platforms: indeed, linkedin, glassdoor, zip_recruiter, google, bayt, naukri (via jobspy), greenhouse, lever, smartrecruiters.
Job types: fulltime, parttime, contract, internship. Leave filters null to disable them.
Verbose: 0=silent, 1=basic, 2=detailed.`

// Example is the configuration written by WriteExample.
func Example() Config {
	cfg := Default()
	cfg.Search.Terms = []string{
		"QA Engineer",
		"Test Engineer",
		"Software Tester",
		"Quality Assurance Engineer",
		"Test Automation Engineer",
	}
	cfg.Search.Locations = []Location{
		{Location: "São Paulo", Country: "Brazil"},
		{Location: "Recife, Pernambuco", Country: "Brazil"},
	}
	cfg.Search.Platforms = []string{"indeed", "glassdoor"}
	cfg.Search.ResultsPerTerm = 50
	cfg.Output.Filename = "jobs_consolidated"
	return cfg
}

// WriteExample writes a commented example config to path. An existing file is
// left alone.
func WriteExample(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return os.ErrExist
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg := Example()
	var doc yaml.Node
	if err := doc.Encode(&cfg); err != nil {
		return err
	}
	doc.HeadComment = exampleHeader

	b, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	return writeAtomic(path, b)
}
