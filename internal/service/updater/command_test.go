package updater

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Killavus/teamspeak-updater/internal/config"
)

// buildZipArchive produces an in-memory zip with the mirror's usual single
// wrapper directory layout.
func buildZipArchive(t *testing.T, wrapper string, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	writer := zip.NewWriter(&buf)
	for name, contents := range files {
		entry, err := writer.Create(wrapper + "/" + name)
		require.NoError(t, err)

		_, err = entry.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	return buf.Bytes()
}

// testMirror serves a listing with the given versions and one zip archive
// for the newest of them.
func testMirror(t *testing.T, listingVersions []string, archive []byte) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			page := "<html><body><pre>"
			for _, v := range listingVersions {
				page += fmt.Sprintf(`<a href="%s/">%s</a>`, v, v)
			}

			_, _ = fmt.Fprint(w, page+"</pre></body></html>")
			return
		}

		if archive == nil {
			http.NotFound(w, r)
			return
		}

		_, _ = w.Write(archive)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

// installedLayout builds a live installation at the given version.
func installedLayout(t *testing.T, version, mirrorURL string) *config.Config {
	t.Helper()

	root := t.TempDir()
	releases := filepath.Join(root, "releases")
	require.NoError(t, os.MkdirAll(filepath.Join(releases, version), 0o755))

	pointer := filepath.Join(root, "teamspeak")
	require.NoError(t, os.Symlink(filepath.Join(releases, version), pointer))

	return &config.Config{
		SymlinkPath:  pointer,
		ReleasesPath: releases,
		TargetTuple:  "win64", // zip archives can be produced in-process
		MirrorURL:    mirrorURL,
		Timeout:      5 * time.Second,
	}
}

// TestRunDeploysUpdate drives the whole pipeline against a fake mirror:
// stale install, newer published version, download, unwrap, activate.
func TestRunDeploysUpdate(t *testing.T) {
	t.Parallel()

	archive := buildZipArchive(t, "teamspeak3-server_win64", map[string]string{
		"ts3server.exe":  "new server",
		"sql/create.sql": "CREATE TABLE x;",
	})
	server := testMirror(t, []string{"3.13.7", "changelog.txt", "3.13.8"}, archive)

	cfg := installedLayout(t, "3.13.7", server.URL+"/")

	result, err := Run(context.Background(), &Options{Config: cfg})
	require.NoError(t, err)
	require.True(t, result.Updated)
	require.Equal(t, "3.13.7", result.Installed.String())
	require.Equal(t, "3.13.8", result.Published.String())

	// Active pointer resolves to the new, unwrapped release tree.
	targetPath, err := filepath.EvalSymlinks(cfg.SymlinkPath)
	require.NoError(t, err)
	require.Equal(t, "3.13.8", filepath.Base(targetPath))

	contents, err := os.ReadFile(filepath.Join(targetPath, "ts3server.exe"))
	require.NoError(t, err)
	require.Equal(t, "new server", string(contents))

	// The previous pointer was preserved and still resolves.
	backupTarget, err := filepath.EvalSymlinks(result.BackupPath)
	require.NoError(t, err)
	require.Equal(t, "3.13.7", filepath.Base(backupTarget))
}

// TestRunUpToDate reports a successful no-op when nothing newer is published.
func TestRunUpToDate(t *testing.T) {
	t.Parallel()

	server := testMirror(t, []string{"3.13.6", "3.13.7"}, nil)
	cfg := installedLayout(t, "3.13.7", server.URL+"/")

	result, err := Run(context.Background(), &Options{Config: cfg})
	require.NoError(t, err)
	require.False(t, result.Updated)
	require.Empty(t, result.BackupPath)

	// Pointer untouched.
	targetPath, err := filepath.EvalSymlinks(cfg.SymlinkPath)
	require.NoError(t, err)
	require.Equal(t, "3.13.7", filepath.Base(targetPath))
}

// TestRunNewerLocal treats a local version ahead of the mirror as up to date.
func TestRunNewerLocal(t *testing.T) {
	t.Parallel()

	server := testMirror(t, []string{"3.13.6"}, nil)
	cfg := installedLayout(t, "3.13.7", server.URL+"/")

	result, err := Run(context.Background(), &Options{Config: cfg})
	require.NoError(t, err)
	require.False(t, result.Updated)
}

// TestRunVersionCheckFailure annotates lookup failures with the stage name
// and performs no mutation.
func TestRunVersionCheckFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	cfg := installedLayout(t, "3.13.7", server.URL+"/")

	_, err := Run(context.Background(), &Options{Config: cfg})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, StageCheckingVersions, stageErr.Stage)

	// Pointer untouched.
	targetPath, err := filepath.EvalSymlinks(cfg.SymlinkPath)
	require.NoError(t, err)
	require.Equal(t, "3.13.7", filepath.Base(targetPath))
}

// TestRunDownloadFailure surfaces a missing archive as a downloading stage error.
func TestRunDownloadFailure(t *testing.T) {
	t.Parallel()

	server := testMirror(t, []string{"3.13.8"}, nil)
	cfg := installedLayout(t, "3.13.7", server.URL+"/")

	_, err := Run(context.Background(), &Options{Config: cfg})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, StageDownloading, stageErr.Stage)
}

// TestRunUnknownTuple fails fast on an unrecognized target tuple.
func TestRunUnknownTuple(t *testing.T) {
	t.Parallel()

	cfg := installedLayout(t, "3.13.7", "https://mirror.invalid/")
	cfg.TargetTuple = "amiga_m68k"

	_, err := Run(context.Background(), &Options{Config: cfg})
	require.Error(t, err)
}

// TestRunNilOptions rejects a missing configuration.
func TestRunNilOptions(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), nil)
	require.ErrorIs(t, err, errConfigNotSet)
}
