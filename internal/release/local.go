package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/Killavus/teamspeak-updater/internal/config"
	"github.com/Killavus/teamspeak-updater/internal/logger"
)

var (
	// ErrPointerNotDirectory is returned when the active symlink does not
	// resolve to a directory.
	ErrPointerNotDirectory = errors.New("active pointer does not resolve to a directory")
	// ErrBadVersionName is returned when the resolved release directory name
	// does not parse as a semantic version.
	ErrBadVersionName = errors.New("release directory name is not a valid version")
)

// InstalledVersion determines the currently active release version.
//
// The version is derived from the name of the directory the active symlink
// resolves to; the directory name under the releases root is the version
// record, there is no separate metadata file.
func InstalledVersion(ctx context.Context, cfg *config.Config) (*semver.Version, error) {
	realPath, err := filepath.EvalSymlinks(cfg.SymlinkPath)
	if err != nil {
		return nil, fmt.Errorf("resolve active pointer: %w", err)
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return nil, fmt.Errorf("inspect active pointer target: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrPointerNotDirectory, realPath)
	}

	name := filepath.Base(realPath)

	version, err := semver.StrictNewVersion(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadVersionName, name, err)
	}

	logger.InfoKV(ctx, "Determined locally installed version", "version", version.String())

	return version, nil
}
