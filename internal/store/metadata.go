package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/openretail/possync/internal/database"
	"github.com/openretail/possync/internal/models"
	"github.com/openretail/possync/internal/sync"
)

// MetadataStore persists per-doctype run outcomes. It implements
// sync.Recorder.
type MetadataStore struct {
	db *database.DB
}

// NewMetadataStore returns a metadata store over db.
func NewMetadataStore(db *database.DB) *MetadataStore {
	return &MetadataStore{db: db}
}

// RecordRun upserts the doctype's row with the latest outcome.
func (m *MetadataStore) RecordRun(ctx context.Context, res sync.Result) error {
	status := "ok"
	if !res.Success {
		status = "error"
	}

	row := models.SyncMetadata{
		DocType:      string(res.Doctype),
		LastSyncTime: time.Now().UTC(),
		Status:       status,
		Pushed:       res.Pushed,
		Pulled:       res.Pulled,
		Failed:       res.Failed,
		Conflicts:    res.Conflicts,
		DurationMs:   res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		msg := res.Err.Error()
		row.LastError = &msg
	}

	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "doc_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_sync_time", "status", "pushed", "pulled", "failed",
			"conflicts", "duration_ms", "last_error", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("record run for %s: %w", res.Doctype, err)
	}
	return nil
}

// All returns the latest outcome per doctype.
func (m *MetadataStore) All(ctx context.Context) ([]models.SyncMetadata, error) {
	var rows []models.SyncMetadata
	if err := m.db.WithContext(ctx).Order("doc_type ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load sync metadata: %w", err)
	}
	return rows, nil
}
