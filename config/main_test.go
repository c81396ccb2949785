package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain guards the whole config package: these tests touch the global DB
// handle and connection fallbacks, so they must never run against a real
// environment. Same check as tests/testutil.RequireTestEnvironment, inlined
// here because importing testutil from config would be an import cycle.
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "test" {
		fmt.Fprintf(os.Stderr, "config tests require GO_ENV=test (got %q); run: GO_ENV=test go test ./...\n", env)
		os.Exit(1)
	}
	os.Exit(m.Run())
}
