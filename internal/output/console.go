package output

import (
	"os"

	"github.com/fatih/color"

	"github.com/Killavus/teamspeak-updater/internal/config"
	"github.com/Killavus/teamspeak-updater/internal/version"
)

var (
	header  = color.New(color.FgWhite, color.Bold)
	label   = color.New(color.FgCyan)
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
	failure = color.New(color.FgRed)
)

// NoColor disables color output (for non-TTY use or --no-color).
func NoColor() {
	color.NoColor = true
}

// PrintHeader prints the startup banner with the tool version.
func PrintHeader() {
	header.Printf("TeamSpeak Auto-Updater v%s\n\n", version.Short())
}

// PrintConfigSummary prints the resolved deployment parameters before a run.
func PrintConfigSummary(cfg *config.Config, targetTuple string) {
	header.Println("Configuration Summary")
	label.Printf("  Active symlink:     ")
	_, _ = os.Stdout.WriteString(cfg.SymlinkPath + "\n")
	label.Printf("  Releases directory: ")
	_, _ = os.Stdout.WriteString(cfg.ReleasesPath + "\n")
	label.Printf("  Mirror URL:         ")
	_, _ = os.Stdout.WriteString(cfg.MirrorURL + "\n")
	label.Printf("  Target tuple:       ")
	_, _ = os.Stdout.WriteString(targetTuple + "\n\n")
}

// PrintSuccess prints a green completion message.
func PrintSuccess(format string, args ...any) {
	success.Printf("✓ "+format+"\n", args...)
}

// PrintWarning prints a yellow advisory message.
func PrintWarning(format string, args ...any) {
	warning.Printf("⚠ "+format+"\n", args...)
}

// PrintError prints a red failure message to stderr.
func PrintError(format string, args ...any) {
	failure.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}
