package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Killavus/teamspeak-updater/internal/config"
	"github.com/Killavus/teamspeak-updater/internal/logger"
	"github.com/Killavus/teamspeak-updater/internal/output"
	"github.com/Killavus/teamspeak-updater/internal/service/updater"
	"github.com/Killavus/teamspeak-updater/internal/target"
	"github.com/Killavus/teamspeak-updater/internal/version"
)

var (
	configPath   string
	symlinkPath  string
	releasesPath string
	targetTuple  string
	mirrorURL    string
	timeout      time.Duration
	logLevel     string
	noColor      bool

	// rootCmd checks the mirror for a newer TeamSpeak server release and
	// deploys it when the local installation is stale.
	rootCmd = &cobra.Command{
		Use:   "teamspeak-updater",
		Short: "Check for and install new TeamSpeak server versions automatically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if noColor {
				output.NoColor()
			}

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			output.PrintHeader()
			output.PrintConfigSummary(cfg, cfg.TargetTuple)

			result, err := updater.Run(ctx, &updater.Options{Config: cfg})
			if err != nil {
				output.PrintError("Update failed: %v", err)
				return err
			}

			if result.Updated {
				output.PrintSuccess("Updated %s -> %s (previous pointer saved to %s)",
					result.Installed, result.Published, result.BackupPath)
			} else {
				output.PrintSuccess("Already up to date (installed %s, published %s)",
					result.Installed, result.Published)
			}

			return nil
		},
	}
)

// resolveConfig layers the configuration sources: defaults, then the YAML
// file when one is given, then explicit command line flags. The target tuple
// is resolved here so the summary shows the detected platform.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if cmd.Flags().Changed("config") {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	flagOverrides := map[string]func(){
		"symlink-path":  func() { cfg.SymlinkPath = symlinkPath },
		"releases-path": func() { cfg.ReleasesPath = releasesPath },
		"target":        func() { cfg.TargetTuple = targetTuple },
		"mirror-url":    func() { cfg.MirrorURL = mirrorURL },
		"timeout":       func() { cfg.Timeout = timeout },
	}
	for name, apply := range flagOverrides {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	profile, err := resolveProfile(cfg.TargetTuple)
	if err != nil {
		return nil, err
	}

	cfg.TargetTuple = profile.String()

	return cfg, nil
}

func resolveProfile(tuple string) (target.Profile, error) {
	if tuple != "" {
		return target.Resolve(tuple)
	}

	profile, err := target.Detect()
	if err != nil {
		return 0, fmt.Errorf("%w (pass --target to pick one explicitly)", err)
	}

	return profile, nil
}

// Execute runs the teamspeak-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.SilenceUsage = true

	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to YAML configuration file")
	flags.StringVar(&symlinkPath, "symlink-path", config.DefaultSymlinkPath,
		"path to the TeamSpeak symlink pinning the live version")
	flags.StringVar(&releasesPath, "releases-path", config.DefaultReleasesPath,
		"directory where downloaded TeamSpeak releases are stored")
	flags.StringVar(&targetTuple, "target", "",
		"platform tuple of the archive to install (default: auto-detect)")
	flags.StringVar(&mirrorURL, "mirror-url", config.DefaultMirrorURL,
		"mirror listing used to discover published versions")
	flags.DurationVar(&timeout, "timeout", config.DefaultTimeout, "per-request network timeout")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error, fatal)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored console output")
}
