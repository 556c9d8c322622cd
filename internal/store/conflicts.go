package store

import (
	"context"
	"fmt"

	"github.com/openretail/possync/internal/database"
	"github.com/openretail/possync/internal/models"
	"github.com/openretail/possync/internal/sync"
)

// ConflictApplier is the non-generic face a DocStore exposes for closing
// recorded conflicts of its doctype.
type ConflictApplier interface {
	Doctype() sync.Doctype
	ApplyResolution(ctx context.Context, c *models.SyncConflict, resolution string) error
}

// ConflictStore lists recorded conflicts and routes resolutions to the
// doctype's store.
type ConflictStore struct {
	db       *database.DB
	appliers map[sync.Doctype]ConflictApplier
}

// NewConflictStore builds the store over the per-doctype appliers.
func NewConflictStore(db *database.DB, appliers ...ConflictApplier) *ConflictStore {
	byType := make(map[sync.Doctype]ConflictApplier, len(appliers))
	for _, a := range appliers {
		byType[a.Doctype()] = a
	}
	return &ConflictStore{db: db, appliers: byType}
}

// List returns conflicts, newest first. When openOnly is set, resolved
// conflicts are filtered out.
func (c *ConflictStore) List(ctx context.Context, openOnly bool) ([]models.SyncConflict, error) {
	q := c.db.WithContext(ctx).Order("created_at DESC")
	if openOnly {
		q = q.Where("resolved = ?", false)
	}

	var rows []models.SyncConflict
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load conflicts: %w", err)
	}
	return rows, nil
}

// Resolve closes one conflict with keep_local or take_remote.
func (c *ConflictStore) Resolve(ctx context.Context, id uint, resolution string) error {
	var conflict models.SyncConflict
	if err := c.db.WithContext(ctx).First(&conflict, id).Error; err != nil {
		return fmt.Errorf("load conflict %d: %w", id, err)
	}
	if conflict.Resolved {
		return fmt.Errorf("conflict %d is already resolved", id)
	}

	applier, ok := c.appliers[sync.Doctype(conflict.DocType)]
	if !ok {
		return fmt.Errorf("no store registered for doctype %q", conflict.DocType)
	}
	return applier.ApplyResolution(ctx, &conflict, resolution)
}
