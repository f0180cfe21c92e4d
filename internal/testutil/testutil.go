// Package testutil provides shared fixtures for service and handler tests.
package testutil

import (
	"testing"

	"github.com/abrezinsky/polydemo/internal/repository"
)

// NewTestRepository opens a private in-memory SQLite store with the poll and
// settings tables created. It holds no polls until a test seeds them, and it
// is closed when the test ends.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("open in-memory poll store: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}
