package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the fully resolved deployment parameters for one updater run.
// The update pipeline treats it as read-only.
type Config struct {
	// SymlinkPath is the active pointer designating the live TeamSpeak release.
	SymlinkPath string `yaml:"symlink_path"`
	// ReleasesPath is the directory holding one subdirectory per installed version.
	ReleasesPath string `yaml:"releases_path"`
	// TargetTuple is the platform identifier (e.g. linux_amd64) used to pick
	// the archive to download. Empty means auto-detect.
	TargetTuple string `yaml:"target_tuple"`
	// MirrorURL is the file listing from which published versions are scraped.
	MirrorURL string `yaml:"mirror_url"`
	// Timeout is the per-request duration for network operations.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for updater settings.
	DefaultConfigFilename = "teamspeak-updater.yaml"

	// DefaultSymlinkPath is where the live installation symlink lives.
	DefaultSymlinkPath = "/opt/teamspeak"

	// DefaultReleasesPath is where versioned release trees are stored.
	DefaultReleasesPath = "/opt/teamspeak-releases"

	// DefaultMirrorURL is the official TeamSpeak server release listing.
	DefaultMirrorURL = "https://files.teamspeak-services.com/releases/server/"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 60 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errSymlinkPathRequired is returned when the active pointer path is missing.
	errSymlinkPathRequired = errors.New("symlink path must be provided")
	// errReleasesPathRequired is returned when the releases directory is missing.
	errReleasesPathRequired = errors.New("releases path must be provided")
)

// Default returns a configuration populated with the stock TeamSpeak paths
// and the official mirror.
func Default() *Config {
	return &Config{
		SymlinkPath:  DefaultSymlinkPath,
		ReleasesPath: DefaultReleasesPath,
		MirrorURL:    DefaultMirrorURL,
		Timeout:      DefaultTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided configuration for required fields and formatting,
// filling in defaults where a zero value is acceptable.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.SymlinkPath == "" {
		return errSymlinkPathRequired
	}

	if cfg.ReleasesPath == "" {
		return errReleasesPathRequired
	}

	if cfg.MirrorURL == "" {
		cfg.MirrorURL = DefaultMirrorURL
	}

	parsed, err := url.ParseRequestURI(cfg.MirrorURL)
	if err != nil {
		return fmt.Errorf("invalid mirror URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid mirror URL: unsupported scheme %q", parsed.Scheme)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return nil
}
