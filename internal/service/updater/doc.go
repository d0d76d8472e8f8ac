// Package updater orchestrates one update run: it resolves the installed
// and published versions concurrently, and when the mirror is ahead it
// downloads, extracts, materializes and activates the new release as a
// strict stage pipeline. Any stage failure aborts the run; per-run scratch
// space is always cleaned up, release trees never are.
package updater
