package updater

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/Killavus/teamspeak-updater/internal/archive"
	"github.com/Killavus/teamspeak-updater/internal/config"
	"github.com/Killavus/teamspeak-updater/internal/logger"
	"github.com/Killavus/teamspeak-updater/internal/mirror"
	"github.com/Killavus/teamspeak-updater/internal/release"
	"github.com/Killavus/teamspeak-updater/internal/target"
)

// errConfigNotSet is returned when Run is invoked without a resolved configuration.
var errConfigNotSet = errors.New("configuration is not set")

// Options are inputs accepted by the updater entry point.
type Options struct {
	// Config is the fully resolved deployment configuration.
	Config *config.Config
}

// Result describes the outcome of one update run.
type Result struct {
	// Installed is the locally active version before the run.
	Installed *semver.Version
	// Published is the newest version found on the mirror.
	Published *semver.Version
	// Updated reports whether a new release was deployed. False means the
	// installation was already current (a successful no-op).
	Updated bool
	// BackupPath is where the previous active pointer was preserved.
	// Only set when Updated is true.
	BackupPath string
}

// runner holds the state for a single update execution.
// It is intentionally unexported; call Run(ctx, Options) from callers.
type runner struct {
	cfg     *config.Config
	profile target.Profile
	mirror  *mirror.Client

	// scratchDir and archiveStore are per-run disposables removed by cleanup.
	scratchDir   string
	archiveStore *os.File
}

// Run executes the update pipeline and is the public entry point for the CLI.
// On staleness it drives download, extraction, materialization and activation
// in order; any stage failure aborts the run with that stage's error.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "teamspeak-updater")

	if opts == nil || opts.Config == nil {
		return nil, errConfigNotSet
	}

	profile, err := resolveProfile(opts.Config)
	if err != nil {
		return nil, err
	}

	r := &runner{
		cfg:     opts.Config,
		profile: profile,
		mirror:  mirror.NewClient(opts.Config),
	}

	defer r.cleanup(ctx)

	result, err := r.run(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Updater run failed", "error", err)
		return nil, err
	}

	return result, nil
}

// resolveProfile picks the target profile from the configuration, falling
// back to platform detection when no tuple was provided. An unrecognized or
// undetectable platform is a fatal configuration error.
func resolveProfile(cfg *config.Config) (target.Profile, error) {
	if cfg.TargetTuple != "" {
		return target.Resolve(cfg.TargetTuple)
	}

	return target.Detect()
}

func (r *runner) run(ctx context.Context) (*Result, error) {
	installed, published, err := r.checkVersions(ctx)
	if err != nil {
		return nil, failAt(StageCheckingVersions, err)
	}

	result := &Result{Installed: installed, Published: published}

	// Equal or newer local version is a successful no-op.
	if !installed.LessThan(published) {
		logger.InfoKV(ctx, "Installation is up to date",
			"installed", installed.String(), "published", published.String())

		return result, nil
	}

	logger.InfoKV(ctx, "Update available",
		"installed", installed.String(), "published", published.String())

	warnIfServerRunning(ctx)

	if err := r.download(ctx, published); err != nil {
		return nil, failAt(StageDownloading, err)
	}

	if err := r.extract(ctx); err != nil {
		return nil, failAt(StageExtracting, err)
	}

	if err := release.Materialize(ctx, r.cfg, r.scratchDir, published); err != nil {
		return nil, failAt(StageMaterializing, err)
	}

	backupPath, err := release.Activate(ctx, r.cfg, published)
	if err != nil {
		return nil, failAt(StageActivating, err)
	}

	result.Updated = true
	result.BackupPath = backupPath

	logger.InfoKV(ctx, "Update deployed",
		"version", published.String(), "backup", backupPath)

	return result, nil
}

// checkVersions resolves the installed and published versions concurrently.
// Both must succeed; the first failure aborts the lookup.
func (r *runner) checkVersions(ctx context.Context) (installed, published *semver.Version, err error) {
	logger.Info(ctx, "Checking for updates")

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var localErr error

		installed, localErr = release.InstalledVersion(groupCtx, r.cfg)
		if localErr != nil {
			return fmt.Errorf("installed version: %w", localErr)
		}

		return nil
	})

	group.Go(func() error {
		var remoteErr error

		published, remoteErr = r.mirror.LatestVersion(groupCtx, r.cfg)
		if remoteErr != nil {
			return fmt.Errorf("published version: %w", remoteErr)
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	return installed, published, nil
}

// download streams the release archive into a seekable temporary store.
func (r *runner) download(ctx context.Context, version *semver.Version) error {
	store, err := r.mirror.DownloadRelease(ctx, r.cfg, r.profile, version)
	if err != nil {
		return err
	}

	r.archiveStore = store

	return nil
}

// extract unpacks the downloaded store into a fresh scratch directory.
func (r *runner) extract(ctx context.Context) error {
	scratchDir, err := os.MkdirTemp("", "teamspeak-updater-*")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}

	r.scratchDir = scratchDir

	logger.InfoKV(ctx, "Extracting release archive",
		"format", r.profile.ArchiveFormat().String(), "scratch", scratchDir)

	return archive.Extract(r.profile.ArchiveFormat(), r.archiveStore, scratchDir)
}

// cleanup removes the per-run disposables regardless of outcome. Release
// trees and the active pointer are never touched here.
func (r *runner) cleanup(ctx context.Context) {
	if r.archiveStore != nil {
		name := r.archiveStore.Name()

		if err := r.archiveStore.Close(); err != nil {
			logger.WarnKV(ctx, "Could not close archive store", "error", err)
		}

		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.WarnKV(ctx, "Could not remove archive store", "path", name, "error", err)
		}
	}

	if r.scratchDir != "" {
		if err := os.RemoveAll(r.scratchDir); err != nil {
			logger.WarnKV(ctx, "Could not remove scratch directory",
				"path", r.scratchDir, "error", err)
		}
	}
}
