package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"
)

// TestActivate swaps the pointer to the new release and preserves the old
// target under a timestamped backup name.
func TestActivate(t *testing.T) {
	t.Parallel()

	cfg := installLayout(t, "3.13.6")
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.ReleasesPath, "3.13.7"), 0o755))

	oldTarget, err := filepath.EvalSymlinks(cfg.SymlinkPath)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)

	backupPath, err := activateAt(context.Background(), cfg, semver.MustParse("3.13.7"), now)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("%s.%d", cfg.SymlinkPath, now.Unix()), backupPath)

	// The pointer now resolves to the new release.
	newTarget, err := filepath.EvalSymlinks(cfg.SymlinkPath)
	require.NoError(t, err)
	require.Equal(t, "3.13.7", filepath.Base(newTarget))

	// The backup still resolves to the previous release.
	backupTarget, err := filepath.EvalSymlinks(backupPath)
	require.NoError(t, err)
	require.Equal(t, oldTarget, backupTarget)

	// The old release directory itself is untouched.
	info, err := os.Stat(filepath.Join(cfg.ReleasesPath, "3.13.6"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

// TestActivateMissingRelease refuses to swap when the release tree does not
// exist; the live pointer must stay intact.
func TestActivateMissingRelease(t *testing.T) {
	t.Parallel()

	cfg := installLayout(t, "3.13.6")

	_, err := Activate(context.Background(), cfg, semver.MustParse("9.9.9"))
	require.Error(t, err)

	target, err := filepath.EvalSymlinks(cfg.SymlinkPath)
	require.NoError(t, err)
	require.Equal(t, "3.13.6", filepath.Base(target))
}
