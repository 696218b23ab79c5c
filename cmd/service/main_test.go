package main

import "testing"

// TestCoverageGaps_IntentionallyUntested documents why cmd/service has no unit tests.
func TestCoverageGaps_IntentionallyUntested(t *testing.T) {
	t.Skip("main.go is wiring-only; the router, probe and views it assembles are tested in internal packages")
}
