package testutil

import (
	"os"
	"testing"
)

const testEnv = "test"

// RequireTestEnvironment fails the test unless GO_ENV=test
func RequireTestEnvironment(t *testing.T) {
	t.Helper()
	if env := os.Getenv("GO_ENV"); env != testEnv {
		t.Fatalf("SAFETY CHECK FAILED: tests must run with GO_ENV=test (current: %q)", env)
	}
}

// RequireTestEnvironmentOrSkip skips the test unless GO_ENV=test
func RequireTestEnvironmentOrSkip(t *testing.T) {
	t.Helper()
	if env := os.Getenv("GO_ENV"); env != testEnv {
		t.Skipf("Skipping test: GO_ENV must be %q (current: %q)", testEnv, env)
	}
}

// MustSetTestEnvironment sets GO_ENV=test for the rest of the test binary
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()
	if err := os.Setenv("GO_ENV", testEnv); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
	RequireTestEnvironment(t)
}
