package testutil

import (
	"os"
	"testing"
)

// RequireTestEnvironment fails the test immediately unless GO_ENV is "test".
// This prevents accidental runs against a development or production database.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q.", env)
	}
}

// MustSetTestEnvironment forces GO_ENV=test. Use in TestMain before any
// configuration is loaded.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
}
