// Package storage persists generated datasets to external stores so
// they can be inspected with SQL after the process exits.  Archiving is
// optional; the service is fully functional from the in-memory
// snapshot alone.
package storage

import (
	"context"

	"github.com/acmecorp/campaign-pulse/internal/models"
)

// Archiver writes a full dataset snapshot to a backing store.
type Archiver interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Archive replaces the stored copy of the dataset.
	Archive(ctx context.Context, ds *models.Dataset) error
}
