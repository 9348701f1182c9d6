package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/trackshelf/trackshelf-backend/pkg/database"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
)

var (
	// Shared across all integration tests of a package run
	globalContainer *PostgresContainer
	containerOnce   sync.Once
	containerErr    error
)

// IntegrationSuite provides a migrated PostgreSQL database for integration tests
type IntegrationSuite struct {
	Container *PostgresContainer
	DB        *database.DB
}

// NewIntegrationSuite starts (or reuses) the shared container, connects, and
// applies the given migrations.
//
// Usage:
//
//	func TestItems(t *testing.T) {
//	    testutil.SkipIfShort(t)
//	    s := testutil.NewIntegrationSuite(t, repository.Migrations)
//	    s.Truncate(t, "shelf_items")
//	    ...
//	}
func NewIntegrationSuite(t *testing.T, migrations []database.Migration) *IntegrationSuite {
	t.Helper()
	ctx := context.Background()

	container, err := getOrCreateContainer(ctx)
	if err != nil {
		t.Fatalf("failed to start postgres: %v", err)
	}

	raw, err := container.Connect(ctx)
	if err != nil {
		t.Fatalf("%v", err)
	}
	db := database.Wrap(raw, logger.Nop())
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Migrate(ctx, migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return &IntegrationSuite{Container: container, DB: db}
}

func getOrCreateContainer(ctx context.Context) (*PostgresContainer, error) {
	containerOnce.Do(func() {
		globalContainer, containerErr = NewPostgresContainer(ctx, DefaultPostgresConfig())
	})
	return globalContainer, containerErr
}

// Truncate empties the given tables so each test starts clean
func (s *IntegrationSuite) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}
	q := fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tables, ", "))
	if _, err := s.DB.ExecContext(context.Background(), q); err != nil {
		t.Fatalf("failed to truncate: %v", err)
	}
}

// TerminateContainer terminates the shared container.
// Only call this in TestMain after all tests have completed.
func TerminateContainer(ctx context.Context) {
	if globalContainer != nil {
		_ = globalContainer.Terminate(ctx)
	}
}
