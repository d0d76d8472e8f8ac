package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and default filling.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing symlink path.
	err := Validate(&Config{})
	require.Error(t, err)

	// Missing releases path.
	err = Validate(&Config{SymlinkPath: "/opt/teamspeak"})
	require.Error(t, err)

	// Bad mirror URL.
	cfg := &Config{
		SymlinkPath:  "/opt/teamspeak",
		ReleasesPath: "/opt/teamspeak-releases",
		MirrorURL:    "not a url",
	}
	err = Validate(cfg)
	require.Error(t, err)

	// Non-HTTP scheme.
	cfg.MirrorURL = "ftp://mirror.local/releases/"
	err = Validate(cfg)
	require.Error(t, err)

	// Defaults applied.
	cfg = &Config{
		SymlinkPath:  "/opt/teamspeak",
		ReleasesPath: "/opt/teamspeak-releases",
	}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultMirrorURL, cfg.MirrorURL)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		SymlinkPath:  "/srv/teamspeak",
		ReleasesPath: "/srv/teamspeak-releases",
		TargetTuple:  "linux_amd64",
		MirrorURL:    "https://mirror.local/releases/server/",
		Timeout:      30 * time.Second,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.SymlinkPath, loaded.SymlinkPath)
	require.Equal(t, cfg.ReleasesPath, loaded.ReleasesPath)
	require.Equal(t, cfg.TargetTuple, loaded.TargetTuple)
	require.Equal(t, cfg.MirrorURL, loaded.MirrorURL)
	require.Equal(t, cfg.Timeout, loaded.Timeout)
}

// TestLoadMissingFile ensures a missing settings file surfaces the read error.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
