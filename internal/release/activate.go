package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/Killavus/teamspeak-updater/internal/config"
	"github.com/Killavus/teamspeak-updater/internal/logger"
)

// Activate repoints the active symlink at releases-root/<version>/ and
// returns the path the previous pointer was preserved under.
//
// The swap is a strictly ordered two-step protocol: the live symlink is
// first renamed to <name>.<unix-seconds> (an atomic rename, so either name
// resolves to a valid installation at every instant), then a fresh symlink
// is created at the original path. The gap between the two steps is the only
// window where the canonical path does not exist; atomic symlink replacement
// is not available on every filesystem, so the window is accepted rather
// than worked around. The old release directory is never touched, which
// keeps manual rollback possible.
func Activate(ctx context.Context, cfg *config.Config, version *semver.Version) (string, error) {
	return activateAt(ctx, cfg, version, time.Now())
}

func activateAt(ctx context.Context, cfg *config.Config, version *semver.Version, now time.Time) (string, error) {
	releasesRoot, err := filepath.EvalSymlinks(cfg.ReleasesPath)
	if err != nil {
		return "", fmt.Errorf("resolve releases directory: %w", err)
	}

	releaseDir := filepath.Join(releasesRoot, version.String())

	info, err := os.Stat(releaseDir)
	if err != nil {
		return "", fmt.Errorf("inspect release directory: %w", err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("release path is not a directory: %s", releaseDir)
	}

	backupPath := fmt.Sprintf("%s.%d", cfg.SymlinkPath, now.Unix())

	logger.InfoKV(ctx, "Swapping active pointer",
		"release", releaseDir, "backup", backupPath)

	if err := os.Rename(cfg.SymlinkPath, backupPath); err != nil {
		return "", fmt.Errorf("rename active pointer: %w", err)
	}

	if err := os.Symlink(releaseDir, cfg.SymlinkPath); err != nil {
		return backupPath, fmt.Errorf("create active pointer: %w", err)
	}

	return backupPath, nil
}
