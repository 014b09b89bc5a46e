// Command tpt-apply-updates applies whatever tpt upgrade -no-apply staged,
// per spec.md §4.9. It is invoked as the ExecStop of the tpt-aadpo.service
// systemd unit (see "tpt system-integrate install"), so it runs once on
// every shutdown/reboot and is a no-op when nothing is staged.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tpt-project/tpt/internal/config"
	"github.com/tpt-project/tpt/internal/db"
	"github.com/tpt-project/tpt/internal/downloader"
	"github.com/tpt-project/tpt/internal/manifest"
	"github.com/tpt-project/tpt/internal/orchestrator"
	"github.com/tpt-project/tpt/internal/resolver"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tptlog"

	"github.com/tpt-project/tpt/internal/aadpo"
)

const userAgent = "tpt-apply-updates/1.0"

func run() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	if err := cfg.AsegurarDirectorios(); err != nil {
		return err
	}

	logger := tptlog.New(os.Stdout, false)
	settings, settingsErr := cfg.LoadSettings()
	if settingsErr != nil {
		logger.Warning("reading %s: %v; using default settings", cfg.SettingsFile, settingsErr)
	}
	runner := &sysexec.Runner{Logger: logger, IsRoot: cfg.IsRoot}
	dl := downloader.New(downloader.Options{Timeout: 60 * time.Second, SSLVerify: settings.SSLVerify, UserAgent: userAgent})
	fetcher := &manifest.Fetcher{Downloader: dl, CacheDir: cfg.DirCacheRepos, UserAgent: userAgent}
	res := resolver.New(runner, cfg, fetcher, dl, logger)
	database, err := db.Open(cfg.BDPaquetesInstalados, logger)
	if err != nil {
		return err
	}

	pm := &orchestrator.PackageManager{
		Exec:       runner,
		Config:     cfg,
		Logger:     logger,
		DB:         database,
		Resolver:   res,
		Downloader: dl,
		Fetcher:    fetcher,
		UserAgent:  userAgent,
	}

	applier := &aadpo.Applier{
		Installer:       pm,
		Updater:         pm,
		Logger:          logger,
		ManifestPath:    filepath.Join(cfg.DirStaging, "aadpo_manifest.json"),
		StagingFilesDir: filepath.Join(cfg.DirStaging, "files"),
	}

	ctx, canc := context.WithTimeout(context.Background(), 15*time.Minute)
	defer canc()
	return applier.Apply(ctx)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
