// Package storetest opens throwaway stores for tests.
package storetest

import (
	"testing"

	"school-cafe-api/config"
	"school-cafe-api/logger"
	"school-cafe-api/store"
)

// New returns a migrated in-memory SQLite store private to the calling test.
// It is closed when the test ends.
func New(t testing.TB) *store.Store {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		DSN:      ":memory:",
		LogLevel: "silent",
	}
	st, err := store.Open(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
