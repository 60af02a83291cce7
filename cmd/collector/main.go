package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"jobcollect-engine/internal/clean"
	"jobcollect-engine/internal/collect"
	"jobcollect-engine/internal/config"
	"jobcollect-engine/internal/export"
	"jobcollect-engine/internal/logging"
	"jobcollect-engine/internal/pipeline"
	"jobcollect-engine/internal/scrape"
	"jobcollect-engine/internal/secrets"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("collector", pflag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file (default $"+config.ConfigPathEnv+" or "+config.DefaultConfigPath+")")
	examplePath := fs.String("write-example", "", "write a commented example config to this path and exit")
	verbose := fs.Int("verbose", -1, "0 warnings only, 1 info, 2 debug (overrides config)")
	saveKey := fs.Bool("save-api-key", false, "store the JobSpy API key from the environment in the OS keychain and exit")
	deleteKey := fs.Bool("delete-api-key", false, "remove the JobSpy API key from the OS keychain and exit")
	normalize := fs.Bool("normalize-config", false, "rewrite the config file trimmed and deduped, keeping a .bak, and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *examplePath != "" {
		if err := config.WriteExample(*examplePath); err != nil {
			fmt.Fprintf(os.Stderr, "write example config: %v\n", err)
			return 1
		}
		fmt.Printf("example config written to %s\n", *examplePath)
		return 0
	}

	path := config.ResolvePath(*cfgPath)
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed (%s): %v\n", path, err)
		return 1
	}
	cfg, res := config.NormalizeAndValidate(cfg)
	normalized := cfg
	if *verbose >= 0 {
		cfg.Scraping.Verbose = *verbose
	}

	log := logging.New(cfg.Scraping.Verbose)
	defer func() { _ = log.Sync() }()

	if !found {
		log.Warnf("[config] %s not found, using defaults (write one with --write-example %s)", path, path)
	}
	for _, w := range res.Warnings {
		log.Warnf("[config] %s", w)
	}
	if err := res.Err(); err != nil {
		log.Error(err.Error())
		return 1
	}

	switch {
	case *normalize:
		if err := config.SaveAtomic(path, normalized); err != nil {
			log.Errorf("[config] save %s: %v", path, err)
			return 1
		}
		log.Warnf("[config] normalized config written to %s (previous kept as %s.bak)", path, path)
		return 0
	case *saveKey:
		return storeAPIKey(cfg, log)
	case *deleteKey:
		return removeAPIKey(cfg, log)
	}

	apiKey, err := secrets.ProviderAPIKey(cfg.Sources.JobSpy.KeyringAccount, cfg.Sources.JobSpy.APIKeyEnv)
	if err != nil {
		log.Debugf("[secrets] %v; calling jobspy without a key", err)
	}

	router := scrape.NewRouter(log.Named("router"), scrape.BuildSources(cfg, apiKey, log)...)
	var served []string
	for _, p := range cfg.Search.Platforms {
		if router.Serves(p) {
			served = append(served, p)
		} else {
			log.Warnf("[config] platform=%q has no enabled source", p)
		}
	}
	if len(served) == 0 {
		log.Errorf("%v: %s", scrape.ErrNoEnabledSources, strings.Join(cfg.Search.Platforms, ", "))
		return 1
	}
	cfg.Search.Platforms = served

	exporter, err := export.New(cfg.Output.Directory, log.Named("export"))
	if err != nil {
		log.Error(err.Error())
		return 1
	}
	unlock, err := exporter.Lock()
	if err != nil {
		log.Error(err.Error())
		return 1
	}
	defer unlock()

	logConfig(log, cfg)

	orch := collect.New(router,
		time.Duration(cfg.Scraping.DelayBetweenSearches)*time.Second,
		time.Duration(cfg.Scraping.TimeoutSeconds)*time.Second,
		log.Named("collect"))
	p := pipeline.New(orch, clean.New(log.Named("clean")), exporter, log.Named("pipeline"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum := p.RunOnce(ctx, collect.PlanFromConfig(cfg), cfg.Output.Filename)
	if !sum.OK() {
		log.Errorf("[collector] run=%s status=%s elapsed=%s err=%v",
			sum.RunID, sum.Status, sum.Elapsed.Round(time.Second), sum.Err)
		return 1
	}
	log.Infof("[collector] run=%s exported %d jobs in %s", sum.RunID, sum.Export.Records, sum.Elapsed.Round(time.Second))
	return 0
}

func storeAPIKey(cfg config.Config, log *zap.SugaredLogger) int {
	env := cfg.Sources.JobSpy.APIKeyEnv
	key := os.Getenv(env)
	if err := secrets.SetProviderAPIKey(cfg.Sources.JobSpy.KeyringAccount, key); err != nil {
		log.Errorf("[secrets] save api key from $%s: %v", env, err)
		return 1
	}
	log.Warnf("[secrets] api key stored in keychain service=%s account=%s",
		secrets.KeyringService, cfg.Sources.JobSpy.KeyringAccount)
	return 0
}

func removeAPIKey(cfg config.Config, log *zap.SugaredLogger) int {
	account := cfg.Sources.JobSpy.KeyringAccount
	if err := secrets.DeleteProviderAPIKey(account); err != nil {
		log.Errorf("[secrets] delete api key account=%s: %v", account, err)
		return 1
	}
	log.Warnf("[secrets] api key removed from keychain service=%s account=%s", secrets.KeyringService, account)
	return 0
}

func logConfig(log *zap.SugaredLogger, cfg config.Config) {
	log.Infof("[config] terms=%s", strings.Join(cfg.Search.Terms, ", "))
	for _, l := range cfg.Search.Locations {
		log.Infof("[config] location=%s", l)
	}
	log.Infof("[config] platforms=%s results_per_term=%d days_old=%d",
		strings.Join(cfg.Search.Platforms, ", "), cfg.Search.ResultsPerTerm, cfg.Search.DaysOld)
	if jt := cfg.JobType(); jt != "" {
		log.Infof("[config] job_type=%s", jt)
	}
	if cfg.Filters.IsRemote != nil {
		log.Infof("[config] is_remote=%t", *cfg.Filters.IsRemote)
	}
	log.Infof("[config] delay=%ds output=%s/%s", cfg.Scraping.DelayBetweenSearches,
		cfg.Output.Directory, cfg.Output.Filename)
	if n := len(cfg.Scraping.Proxies); n > 0 {
		log.Debugf("[config] proxies=%d", n)
	}
}
