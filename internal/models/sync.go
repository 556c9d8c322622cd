package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncMetadata records the outcome of the last synchronization run for one
// document type. One row per document type, updated in place.
type SyncMetadata struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DocType      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"doc_type"`
	LastSyncTime time.Time `json:"last_sync_time"`
	Status       string    `gorm:"type:varchar(20)" json:"status"`
	Pushed       int       `json:"pushed"`
	Pulled       int       `json:"pulled"`
	Failed       int       `json:"failed"`
	Conflicts    int       `json:"conflicts"`
	DurationMs   int64     `json:"duration_ms"`
	LastError    *string   `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (SyncMetadata) TableName() string { return "sync_metadata" }

// Conflict resolution strategies.
const (
	StrategyServerWins    = "server_wins"
	StrategyClientWins    = "client_wins"
	StrategyLastWriteWins = "last_write_wins"
	StrategyManual        = "manual"
)

// SyncConflict is recorded whenever a pull meets a document with pending
// local edits. Both versions are snapshotted so a manual resolution can
// still be applied after further runs.
type SyncConflict struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	DocType       string         `gorm:"type:varchar(100);not null;index" json:"doc_type"`
	LocalID       string         `gorm:"type:uuid;not null;index" json:"local_id"`
	RemoteID      string         `gorm:"type:varchar(255)" json:"remote_id"`
	LocalVersion  datatypes.JSON `json:"local_version"`
	RemoteVersion datatypes.JSON `json:"remote_version"`
	// RemoteHash is the content hash of the remote snapshot. One conflict
	// row is recorded per distinct remote version of a document.
	RemoteHash string `gorm:"type:varchar(64);index" json:"-"`
	Strategy      string         `gorm:"type:varchar(30);not null" json:"strategy"`
	Resolved      bool           `gorm:"not null;default:false;index" json:"resolved"`
	Resolution    *string        `gorm:"type:varchar(30)" json:"resolution,omitempty"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (SyncConflict) TableName() string { return "sync_conflicts" }
