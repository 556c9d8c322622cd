// Package buildinfo exposes the version stamp of the running daemon.
package buildinfo

import "time"

// Injected with -ldflags when the terminal binary is built.
var (
	BuildTime  string // compilation timestamp
	CommitTime string // timestamp of the commit the binary was built from
	CommitHash string // short hash identifying the build
)

// StartTime is the moment this process came up, for uptime reporting.
var StartTime = time.Now().UTC().Format(time.RFC3339)
