// Package mirror implements the remote version source: it scrapes the
// release listing for published versions and downloads release archives
// into seekable temporary files. This is the only place untrusted text
// enters version parsing, so individual parse failures are skipped and
// only a listing with zero survivors fails the lookup.
package mirror
