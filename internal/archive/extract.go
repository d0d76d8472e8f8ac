package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Killavus/teamspeak-updater/internal/target"
)

var (
	// errUnsupportedEntry is returned for tar entry types the release
	// archives are not expected to contain (devices, FIFOs, ...).
	errUnsupportedEntry = errors.New("unsupported archive entry")
	// errIllegalPath is returned when an entry would escape the destination
	// directory.
	errIllegalPath = errors.New("archive entry escapes destination directory")
)

// defaultDirMode is used for directories whose archive entry carries no mode.
const defaultDirMode os.FileMode = 0o755

// Extract unpacks the downloaded archive store into destDir, dispatching on
// the archive format of the target profile. The store was last positioned at
// end-of-write, so extraction always rewinds it first. Extraction performs
// blocking I/O and possibly heavy decompression; callers run it off any
// latency-sensitive path.
func Extract(format target.Format, store *os.File, destDir string) error {
	if _, err := store.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind archive store: %w", err)
	}

	switch format {
	case target.Zip:
		return extractZip(store, destDir)
	default:
		return extractTarball(store, destDir)
	}
}

// extractZip opens the store as a zip container and extracts every entry,
// preserving relative paths.
func extractZip(store *os.File, destDir string) error {
	info, err := store.Stat()
	if err != nil {
		return fmt.Errorf("stat archive store: %w", err)
	}

	reader, err := zip.NewReader(store, info.Size())
	if err != nil {
		return fmt.Errorf("open zip archive: %w", err)
	}

	for _, entry := range reader.File {
		if err := extractZipEntry(entry, destDir); err != nil {
			return err
		}
	}

	return nil
}

func extractZipEntry(entry *zip.File, destDir string) error {
	path, err := entryPath(destDir, entry.Name)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		// Ensure the owner can descend into the directory while extracting.
		if err := os.MkdirAll(path, entry.Mode().Perm()|0o700); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		return fmt.Errorf("create parent directory for %s: %w", path, err)
	}

	contents, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", entry.Name, err)
	}

	defer func() {
		_ = contents.Close()
	}()

	if err := writeFile(path, contents, entry.Mode().Perm()); err != nil {
		return err
	}

	return nil
}

// extractTarball decompresses the whole bzip2 store into memory and unpacks
// the resulting tar stream. The archives are small enough (tens of MB) that
// buffering beats a second temporary file.
func extractTarball(store *os.File, destDir string) error {
	var decompressed bytes.Buffer

	if _, err := io.Copy(&decompressed, bzip2.NewReader(store)); err != nil {
		return fmt.Errorf("decompress bzip2 archive: %w", err)
	}

	tarReader := tar.NewReader(&decompressed)

	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read tar archive: %w", err)
		}

		if err := extractTarEntry(tarReader, header, destDir); err != nil {
			return err
		}
	}
}

func extractTarEntry(tarReader *tar.Reader, header *tar.Header, destDir string) error {
	path, err := entryPath(destDir, header.Name)
	if err != nil {
		return err
	}

	switch header.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(path, os.FileMode(header.Mode).Perm()|0o700); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
			return fmt.Errorf("create parent directory for %s: %w", path, err)
		}

		if err := writeFile(path, tarReader, os.FileMode(header.Mode).Perm()); err != nil {
			return err
		}
	case tar.TypeSymlink:
		if err := os.Symlink(header.Linkname, path); err != nil {
			return fmt.Errorf("create symlink %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s (type %d)", errUnsupportedEntry, header.Name, header.Typeflag)
	}

	return nil
}

// entryPath resolves an archive entry name under destDir and rejects names
// that would escape it (absolute paths, ".." traversal).
func entryPath(destDir, name string) (string, error) {
	path := filepath.Join(destDir, filepath.FromSlash(name))

	cleanRoot := filepath.Clean(destDir)
	if path != cleanRoot && !strings.HasPrefix(path, cleanRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", errIllegalPath, name)
	}

	return path, nil
}

func writeFile(path string, contents io.Reader, mode os.FileMode) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}

	if _, err := io.Copy(file, contents); err != nil {
		_ = file.Close()

		return fmt.Errorf("write file %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", path, err)
	}

	return nil
}
