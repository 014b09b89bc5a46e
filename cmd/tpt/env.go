package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	isatty "github.com/mattn/go-isatty"

	"github.com/tpt-project/tpt/internal/config"
	"github.com/tpt-project/tpt/internal/db"
	"github.com/tpt-project/tpt/internal/downloader"
	"github.com/tpt-project/tpt/internal/manifest"
	"github.com/tpt-project/tpt/internal/orchestrator"
	"github.com/tpt-project/tpt/internal/resolver"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tptlog"
)

const userAgent = "tpt/1.0 (+https://github.com/tpt-project/tpt)"

var debug = flag.Bool("debug", false, "format error messages with additional detail")

// newPackageManager wires every collaborator the orchestrator needs, in the
// same spirit as the teacher's cmd/distri env.Repos()/env bootstrap: one
// place that resolves paths, builds the HTTP client, and opens the
// installed-DB, so every subcommand starts from a single consistent Env.
func newPackageManager() (*orchestrator.PackageManager, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	if err := cfg.AsegurarDirectorios(); err != nil {
		return nil, err
	}

	settings, settingsErr := cfg.LoadSettings()

	useRich := settings.UseRich && isatty.IsTerminal(os.Stderr.Fd())
	logger := tptlog.New(os.Stderr, useRich)
	if *debug {
		logger.SetLevel(tptlog.Debug)
	}
	if settingsErr != nil {
		logger.Warning("reading %s: %v; using default settings", cfg.SettingsFile, settingsErr)
	}

	runner := &sysexec.Runner{Logger: logger, IsRoot: cfg.IsRoot}

	dl := downloader.New(downloader.Options{
		Timeout:   60 * time.Second,
		SSLVerify: settings.SSLVerify,
		UserAgent: userAgent,
	})

	fetcher := &manifest.Fetcher{Downloader: dl, CacheDir: cfg.DirCacheRepos, UserAgent: userAgent}

	res := resolver.New(runner, cfg, fetcher, dl, logger)

	database, err := db.Open(cfg.BDPaquetesInstalados, logger)
	if err != nil {
		return nil, err
	}

	return &orchestrator.PackageManager{
		Exec:       runner,
		Config:     cfg,
		Logger:     logger,
		DB:         database,
		Resolver:   res,
		Downloader: dl,
		Fetcher:    fetcher,
		UserAgent:  userAgent,
	}, nil
}

func usage(fset *flag.FlagSet, help string) func() {
	return func() {
		fmt.Fprintln(os.Stderr, help)
		fset.PrintDefaults()
	}
}
