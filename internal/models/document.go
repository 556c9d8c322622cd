package models

import (
	"time"
)

// Sync states for SyncDocument.SyncStatus.
const (
	SyncStatePending = "pending"
	SyncStateSynced  = "synced"
	SyncStateFailed  = "failed"
)

// SyncDocument carries the synchronization bookkeeping embedded by every
// synchronizable document. LocalID is generated on the device and never
// reused; RemoteID is assigned by the server on first successful push and
// never changes afterwards. A document with SyncStatus "pending" is part of
// the outbox for its type.
type SyncDocument struct {
	LocalID        string     `gorm:"primaryKey;type:uuid" json:"-"`
	InstanceID     string     `gorm:"type:varchar(255);not null;index" json:"-"`
	CompanyID      string     `gorm:"type:varchar(255);not null;index" json:"-"`
	SyncStatus     string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"-"`
	RemoteID       *string    `gorm:"type:varchar(255);index" json:"name,omitempty"`
	RemoteModified *time.Time `json:"write_date,omitempty"`
	ContentHash    string     `gorm:"type:varchar(64)" json:"-"`
	SyncError      *string    `gorm:"type:text" json:"-"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`
}

// SyncableDocument is implemented by every model embedding SyncDocument.
type SyncableDocument interface {
	Sync() *SyncDocument
}

func (d *SyncDocument) Sync() *SyncDocument { return d }

func (d SyncDocument) DocLocalID() string { return d.LocalID }

func (d SyncDocument) DocRemoteID() string {
	if d.RemoteID == nil {
		return ""
	}
	return *d.RemoteID
}

func (d SyncDocument) DocStatus() string { return d.SyncStatus }

func (d SyncDocument) DocCreatedAt() time.Time { return d.CreatedAt }
