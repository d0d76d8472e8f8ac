package target

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Profile identifies one supported platform/architecture combination.
// The set is closed: every profile maps to exactly one archive format
// and one mirror filename pattern.
type Profile int

// Supported platform tuples, matching the tokens used by the mirror.
const (
	LinuxX8664 Profile = iota
	LinuxX86
	LinuxAlpine
	FreeBSDX8664
	Mac
	WindowsX8664
	WindowsX86
)

// Format is the archive container the mirror publishes for a profile.
type Format int

const (
	// Bzip2Tarball is a bzip2-compressed tar archive (.tar.bz2).
	Bzip2Tarball Format = iota
	// Zip is a standard zip container (.zip).
	Zip
)

var (
	// ErrNotRecognized is returned when a target tuple string has no known mapping.
	ErrNotRecognized = errors.New("target tuple not recognized")
	// ErrUnsupportedPlatform is returned when the running platform cannot be
	// mapped to a profile automatically.
	ErrUnsupportedPlatform = errors.New("no target tuple mapping for this platform")
)

// product is the filename stem used by the mirror for every server archive.
const product = "teamspeak3-server"

// profileTokens maps each profile to its stable string identifier.
// Keep in sync with Resolve.
var profileTokens = map[Profile]string{
	LinuxX8664:   "linux_amd64",
	LinuxX86:     "linux_x86",
	LinuxAlpine:  "linux_alpine",
	FreeBSDX8664: "freebsd_amd64",
	Mac:          "mac",
	WindowsX8664: "win64",
	WindowsX86:   "win32",
}

// Resolve maps a tuple identifier (case-insensitive) to its Profile.
func Resolve(identifier string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(identifier)) {
	case "linux_amd64":
		return LinuxX8664, nil
	case "linux_x86":
		return LinuxX86, nil
	case "linux_alpine":
		return LinuxAlpine, nil
	case "freebsd_amd64":
		return FreeBSDX8664, nil
	case "mac":
		return Mac, nil
	case "win64":
		return WindowsX8664, nil
	case "win32":
		return WindowsX86, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrNotRecognized, identifier)
	}
}

// Detect derives the profile from the running platform.
// It fails when the OS/architecture combination has no mirror package.
func Detect() (Profile, error) {
	switch runtime.GOOS {
	case "linux":
		switch runtime.GOARCH {
		case "amd64":
			return LinuxX8664, nil
		case "386":
			return LinuxX86, nil
		}
	case "windows":
		switch runtime.GOARCH {
		case "amd64":
			return WindowsX8664, nil
		case "386":
			return WindowsX86, nil
		}
	case "darwin":
		return Mac, nil
	case "freebsd":
		if runtime.GOARCH == "amd64" {
			return FreeBSDX8664, nil
		}
	}

	return 0, fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, runtime.GOOS, runtime.GOARCH)
}

// String returns the stable tuple identifier for the profile.
func (p Profile) String() string {
	if token, ok := profileTokens[p]; ok {
		return token
	}

	return fmt.Sprintf("unknown(%d)", int(p))
}

// ArchiveFormat returns which archive container the mirror uses for the profile.
func (p Profile) ArchiveFormat() Format {
	switch p {
	case Mac, WindowsX86, WindowsX8664:
		return Zip
	default:
		return Bzip2Tarball
	}
}

// ArchiveFilename reproduces the exact filename published by the mirror
// for the given version, e.g. teamspeak3-server_linux_amd64-3.13.7.tar.bz2.
func (p Profile) ArchiveFilename(v *semver.Version) string {
	return fmt.Sprintf("%s_%s-%s.%s", product, p, v, p.ArchiveFormat().Extension())
}

// Extension returns the filename suffix for the format (without leading dot).
func (f Format) Extension() string {
	switch f {
	case Zip:
		return "zip"
	default:
		return "tar.bz2"
	}
}

// String returns the extension, which doubles as the format's display name.
func (f Format) String() string {
	return f.Extension()
}
