// Package lifecycle holds the process-wide draining flag.
package lifecycle

import "sync/atomic"

var shuttingDown atomic.Bool

// SetShuttingDown sets the draining flag. main sets it on SIGTERM/SIGINT; while true,
// /health and /api/test answer 503 so the dashboard probe reports the API unavailable.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

func IsShuttingDown() bool {
	return shuttingDown.Load()
}
