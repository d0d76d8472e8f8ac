package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/Killavus/teamspeak-updater/internal/config"
	"github.com/Killavus/teamspeak-updater/internal/logger"
)

// ErrEmptyExtraction is returned when the extraction directory holds nothing
// to materialize.
var ErrEmptyExtraction = errors.New("extracted archive is empty")

// copyConcurrency bounds the number of file copies in flight at once.
const copyConcurrency = 8

// releaseDirMode is used for directories created under the releases root.
const releaseDirMode os.FileMode = 0o755

// Materialize converts the raw extraction output under scratchDir into the
// canonical release tree at releases-root/<version>/.
//
// Every archive on the mirror wraps its payload in a single top-level
// directory; when scratchDir contains exactly one directory entry we descend
// into it once so the wrapper does not leak into the release tree. Directory
// creation is idempotent, so re-running after a partial failure succeeds.
func Materialize(ctx context.Context, cfg *config.Config, scratchDir string, version *semver.Version) error {
	payloadRoot, err := unwrap(scratchDir)
	if err != nil {
		return err
	}

	destRoot := filepath.Join(cfg.ReleasesPath, version.String())
	if err := os.MkdirAll(destRoot, releaseDirMode); err != nil {
		return fmt.Errorf("create release directory: %w", err)
	}

	files, err := mirrorDirectories(payloadRoot, destRoot)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Copying release files", "count", len(files), "destination", destRoot)

	return copyFiles(ctx, payloadRoot, destRoot, files)
}

// unwrap returns the real payload root: scratchDir itself, or its single
// directory child when the archive carries a wrapper directory.
func unwrap(scratchDir string) (string, error) {
	entries, err := os.ReadDir(scratchDir)
	if err != nil {
		return "", fmt.Errorf("read extraction directory: %w", err)
	}

	if len(entries) == 0 {
		return "", ErrEmptyExtraction
	}

	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(scratchDir, entries[0].Name()), nil
	}

	return scratchDir, nil
}

// mirrorDirectories walks the payload tree breadth-first, recreating every
// directory under destRoot, and returns the relative paths of all regular
// files found. Symlinks are recreated in place since release payloads use
// them for convenience wrappers around the server binary.
func mirrorDirectories(payloadRoot, destRoot string) ([]string, error) {
	var files []string

	queue := []string{""}

	for len(queue) > 0 {
		relDir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(filepath.Join(payloadRoot, relDir))
		if err != nil {
			return nil, fmt.Errorf("read payload directory: %w", err)
		}

		for _, entry := range entries {
			relPath := filepath.Join(relDir, entry.Name())

			switch {
			case entry.IsDir():
				if err := os.MkdirAll(filepath.Join(destRoot, relPath), releaseDirMode); err != nil {
					return nil, fmt.Errorf("mirror directory %s: %w", relPath, err)
				}

				queue = append(queue, relPath)
			case entry.Type()&os.ModeSymlink != 0:
				if err := mirrorSymlink(payloadRoot, destRoot, relPath); err != nil {
					return nil, err
				}
			default:
				files = append(files, relPath)
			}
		}
	}

	return files, nil
}

func mirrorSymlink(payloadRoot, destRoot, relPath string) error {
	linkTarget, err := os.Readlink(filepath.Join(payloadRoot, relPath))
	if err != nil {
		return fmt.Errorf("read payload symlink %s: %w", relPath, err)
	}

	destPath := filepath.Join(destRoot, relPath)

	// Idempotency: replace a link left over from an earlier partial run.
	if err := os.Remove(destPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replace symlink %s: %w", relPath, err)
	}

	if err := os.Symlink(linkTarget, destPath); err != nil {
		return fmt.Errorf("mirror symlink %s: %w", relPath, err)
	}

	return nil
}

// copyFiles copies all recorded files into their mirrored destinations
// concurrently. The first failure cancels the batch; a partially populated
// release directory may remain and is safe to re-create.
func copyFiles(ctx context.Context, payloadRoot, destRoot string, files []string) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(copyConcurrency)

	for _, relPath := range files {
		relPath := relPath
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			return copyFile(filepath.Join(payloadRoot, relPath), filepath.Join(destRoot, relPath))
		})
	}

	return group.Wait()
}

// copyFile copies src to dst preserving the source permission bits, so
// server binaries and scripts stay executable.
func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open payload file: %w", err)
	}

	defer func() {
		_ = source.Close()
	}()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stat payload file: %w", err)
	}

	dest, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create release file: %w", err)
	}

	if _, err := io.Copy(dest, source); err != nil {
		_ = dest.Close()

		return fmt.Errorf("copy release file %s: %w", dst, err)
	}

	if err := dest.Close(); err != nil {
		return fmt.Errorf("close release file %s: %w", dst, err)
	}

	return nil
}
