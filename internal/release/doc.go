// Package release manages the on-disk release trees and the active
// pointer. It reads the installed version off the live symlink,
// materializes extracted archives into canonical version-named
// directories under the releases root, and atomically swaps the
// pointer to a freshly materialized release while preserving the
// previous one for manual rollback.
package release
