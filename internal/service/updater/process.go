package updater

import (
	"context"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/Killavus/teamspeak-updater/internal/logger"
)

// serverExecutablePrefix matches the TeamSpeak server binaries across
// platforms (ts3server, ts3server.exe, ts3server_linux_amd64, ...).
const serverExecutablePrefix = "ts3server"

// warnIfServerRunning scans the process table for a running TeamSpeak server
// and warns the operator. The updater never stops the server itself: the old
// release stays on disk and keeps working until the process is restarted, but
// the operator should know a restart is needed to pick up the new release.
// The check is best-effort; a failed process listing is only logged.
func warnIfServerRunning(ctx context.Context) {
	processes, err := ps.Processes()
	if err != nil {
		logger.DebugKV(ctx, "Could not list processes", "error", err)
		return
	}

	for _, process := range processes {
		if strings.HasPrefix(process.Executable(), serverExecutablePrefix) {
			logger.WarnKV(ctx, "A TeamSpeak server appears to be running; "+
				"restart it after the update to use the new release",
				"pid", process.Pid(), "executable", process.Executable())

			return
		}
	}
}
