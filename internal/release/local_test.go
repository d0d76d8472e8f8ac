package release

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Killavus/teamspeak-updater/internal/config"
)

// installLayout builds a releases root with one version directory and an
// active symlink pointing at it, mimicking a real installation.
func installLayout(t *testing.T, versionDir string) *config.Config {
	t.Helper()

	root := t.TempDir()
	releases := filepath.Join(root, "teamspeak-releases")
	require.NoError(t, os.MkdirAll(filepath.Join(releases, versionDir), 0o755))

	pointer := filepath.Join(root, "teamspeak")
	require.NoError(t, os.Symlink(filepath.Join(releases, versionDir), pointer))

	return &config.Config{
		SymlinkPath:  pointer,
		ReleasesPath: releases,
		MirrorURL:    config.DefaultMirrorURL,
	}
}

// TestInstalledVersion derives the version from the pointed-to directory name.
func TestInstalledVersion(t *testing.T) {
	t.Parallel()

	cfg := installLayout(t, "3.13.7")

	version, err := InstalledVersion(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, "3.13.7", version.String())
}

// TestInstalledVersionBadName rejects a release directory whose name is not
// a semantic version.
func TestInstalledVersionBadName(t *testing.T) {
	t.Parallel()

	cfg := installLayout(t, "latest")

	_, err := InstalledVersion(context.Background(), cfg)
	require.ErrorIs(t, err, ErrBadVersionName)
}

// TestInstalledVersionNotDirectory rejects a pointer resolving to a file.
func TestInstalledVersionNotDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "3.13.7")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	pointer := filepath.Join(root, "teamspeak")
	require.NoError(t, os.Symlink(file, pointer))

	cfg := &config.Config{SymlinkPath: pointer, ReleasesPath: root}

	_, err := InstalledVersion(context.Background(), cfg)
	require.ErrorIs(t, err, ErrPointerNotDirectory)
}

// TestInstalledVersionMissingPointer surfaces a dangling or absent symlink.
func TestInstalledVersionMissingPointer(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		SymlinkPath:  filepath.Join(t.TempDir(), "teamspeak"),
		ReleasesPath: t.TempDir(),
	}

	_, err := InstalledVersion(context.Background(), cfg)
	require.Error(t, err)
}
