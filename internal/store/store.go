// Package store implements the on-device side of synchronization on GORM.
// One generic DocStore serves every doctype; the type parameter pair keeps
// the embedded sync bookkeeping addressable through a pointer.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openretail/possync/internal/database"
	"github.com/openretail/possync/internal/models"
	"github.com/openretail/possync/internal/sync"
)

// docPtr constrains P to be the pointer form of T carrying the sync
// bookkeeping.
type docPtr[T any] interface {
	*T
	models.SyncableDocument
	sync.Doc
}

// DocStore implements sync.LocalPort for one doctype.
type DocStore[T any, P docPtr[T]] struct {
	db       *database.DB
	doctype  sync.Doctype
	checksum *sync.ChecksumCalculator
	resolver *sync.Resolver
	preload  []string
}

// NewDocStore builds a store for the doctype. preload names the child
// associations loaded with outbox documents so pushes carry their lines.
func NewDocStore[T any, P docPtr[T]](db *database.DB, doctype sync.Doctype, resolver *sync.Resolver, preload ...string) *DocStore[T, P] {
	return &DocStore[T, P]{
		db:       db,
		doctype:  doctype,
		checksum: sync.NewChecksumCalculator(),
		resolver: resolver,
		preload:  preload,
	}
}

// Doctype returns the doctype this store serves.
func (s *DocStore[T, P]) Doctype() sync.Doctype { return s.doctype }

// Insert records a document created offline at the terminal, children
// included, as a new pending outbox entry.
func (s *DocStore[T, P]) Insert(ctx context.Context, instanceID, companyID string, rec P) error {
	doc := rec.Sync()
	if doc.LocalID == "" {
		doc.LocalID = uuid.New().String()
	}
	doc.InstanceID = instanceID
	doc.CompanyID = companyID
	doc.SyncStatus = models.SyncStatePending
	doc.RemoteID = nil
	doc.SyncError = nil

	hash, err := s.checksum.Checksum(rec)
	if err != nil {
		return fmt.Errorf("insert %s: %w", s.doctype, err)
	}
	doc.ContentHash = hash

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert %s: %w", s.doctype, err)
	}
	return nil
}

// Get loads one document by local id, children preloaded.
func (s *DocStore[T, P]) Get(ctx context.Context, instanceID, companyID, localID string) (P, error) {
	q := s.db.WithContext(ctx).
		Where("local_id = ? AND instance_id = ? AND company_id = ?", localID, instanceID, companyID)
	for _, assoc := range s.preload {
		q = q.Preload(assoc)
	}

	var rec T
	if err := q.First(&rec).Error; err != nil {
		return nil, fmt.Errorf("load %s %s: %w", s.doctype, localID, err)
	}
	return P(&rec), nil
}

// List returns every document of the doctype for the device scope.
func (s *DocStore[T, P]) List(ctx context.Context, instanceID, companyID string) ([]T, error) {
	q := s.db.WithContext(ctx).
		Where("instance_id = ? AND company_id = ?", instanceID, companyID).
		Order("created_at ASC")
	for _, assoc := range s.preload {
		q = q.Preload(assoc)
	}

	var records []T
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.doctype, err)
	}
	return records, nil
}

// PendingOutbox returns the unsynced documents oldest-first, children
// preloaded.
func (s *DocStore[T, P]) PendingOutbox(ctx context.Context, instanceID, companyID string) ([]P, error) {
	q := s.db.WithContext(ctx).
		Where("instance_id = ? AND company_id = ? AND sync_status = ?",
			instanceID, companyID, models.SyncStatePending).
		Order("created_at ASC")
	for _, assoc := range s.preload {
		q = q.Preload(assoc)
	}

	var records []T
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load %s outbox: %w", s.doctype, err)
	}

	out := make([]P, len(records))
	for i := range records {
		out[i] = P(&records[i])
	}
	return out, nil
}

// MarkSynced records the server acknowledgement. Re-marking with the same
// remote id is a no-op; a different remote id for an already synced row is
// an error, the pairing is permanent.
func (s *DocStore[T, P]) MarkSynced(ctx context.Context, instanceID, companyID, localID string, ack sync.Ack) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec T
		p := P(&rec)
		err := tx.Where("local_id = ? AND instance_id = ? AND company_id = ?",
			localID, instanceID, companyID).First(&rec).Error
		if err != nil {
			return fmt.Errorf("mark synced %s %s: %w", s.doctype, localID, err)
		}

		doc := p.Sync()
		if doc.SyncStatus == models.SyncStateSynced {
			if doc.RemoteID != nil && *doc.RemoteID == ack.RemoteID {
				return nil
			}
			return fmt.Errorf("%s %s already synced as %q, refusing remote id %q",
				s.doctype, localID, deref(doc.RemoteID), ack.RemoteID)
		}
		if doc.RemoteID != nil && *doc.RemoteID != ack.RemoteID {
			return fmt.Errorf("%s %s already paired with %q, refusing remote id %q",
				s.doctype, localID, *doc.RemoteID, ack.RemoteID)
		}

		updates := map[string]interface{}{
			"sync_status": models.SyncStateSynced,
			"remote_id":   ack.RemoteID,
			"sync_error":  nil,
		}
		if ack.RemoteModified != nil {
			updates["remote_modified"] = *ack.RemoteModified
		}
		return tx.Model(p).Where("local_id = ?", localID).Updates(updates).Error
	})
}

// MarkFailed parks a rejected document outside the outbox.
func (s *DocStore[T, P]) MarkFailed(ctx context.Context, instanceID, companyID, localID, reason string) error {
	var rec T
	p := P(&rec)
	res := s.db.WithContext(ctx).Model(p).
		Where("local_id = ? AND instance_id = ? AND company_id = ? AND sync_status = ?",
			localID, instanceID, companyID, models.SyncStatePending).
		Updates(map[string]interface{}{
			"sync_status": models.SyncStateFailed,
			"sync_error":  reason,
		})
	if res.Error != nil {
		return fmt.Errorf("mark failed %s %s: %w", s.doctype, localID, res.Error)
	}
	return nil
}

// RetryFailed returns a parked document to the outbox after it was edited.
func (s *DocStore[T, P]) RetryFailed(ctx context.Context, instanceID, companyID, localID string) error {
	var rec T
	p := P(&rec)
	res := s.db.WithContext(ctx).Model(p).
		Where("local_id = ? AND instance_id = ? AND company_id = ? AND sync_status = ?",
			localID, instanceID, companyID, models.SyncStateFailed).
		Updates(map[string]interface{}{
			"sync_status": models.SyncStatePending,
			"sync_error":  nil,
		})
	if res.Error != nil {
		return fmt.Errorf("retry %s %s: %w", s.doctype, localID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("retry %s %s: no failed document found", s.doctype, localID)
	}
	return nil
}

// UpsertFromServer applies a pulled batch in one transaction. Rows with
// pending local edits are never overwritten; they produce conflict records
// instead. Applying the same batch twice reports changed=false the second
// time.
func (s *DocStore[T, P]) UpsertFromServer(ctx context.Context, instanceID, companyID string, records []P) (bool, int, error) {
	changed := false
	conflicts := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			remoteID := rec.DocRemoteID()
			if remoteID == "" {
				continue
			}

			incomingHash, err := s.checksum.Checksum(rec)
			if err != nil {
				return fmt.Errorf("hash pulled %s: %w", s.doctype, err)
			}

			var existing T
			ep := P(&existing)
			err = tx.Where("instance_id = ? AND company_id = ? AND remote_id = ?",
				instanceID, companyID, remoteID).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				doc := rec.Sync()
				doc.LocalID = uuid.New().String()
				doc.InstanceID = instanceID
				doc.CompanyID = companyID
				doc.SyncStatus = models.SyncStateSynced
				doc.ContentHash = incomingHash
				if err := tx.Create(rec).Error; err != nil {
					return fmt.Errorf("insert pulled %s %s: %w", s.doctype, remoteID, err)
				}
				changed = true
				continue
			}
			if err != nil {
				return fmt.Errorf("lookup %s %s: %w", s.doctype, remoteID, err)
			}

			edoc := ep.Sync()
			switch s.resolver.Decide(edoc.SyncStatus, edoc.UpdatedAt, rec.Sync().RemoteModified) {
			case sync.DecisionTakeRemote:
				if edoc.ContentHash == incomingHash {
					continue
				}
				doc := rec.Sync()
				doc.LocalID = edoc.LocalID
				doc.InstanceID = instanceID
				doc.CompanyID = companyID
				doc.SyncStatus = models.SyncStateSynced
				doc.ContentHash = incomingHash
				doc.CreatedAt = edoc.CreatedAt
				if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(rec).Error; err != nil {
					return fmt.Errorf("update pulled %s %s: %w", s.doctype, remoteID, err)
				}
				changed = true

			case sync.DecisionKeepLocal:
				recorded, err := s.recordResolvedConflict(tx, ep, rec, incomingHash)
				if err != nil {
					return err
				}
				if recorded {
					conflicts++
				}

			case sync.DecisionConflict:
				recorded, err := s.recordPendingConflict(tx, ep, rec, incomingHash)
				if err != nil {
					return err
				}
				if recorded {
					conflicts++
				}
			}
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return changed, conflicts, nil
}

// recordPendingConflict stores a conflict for manual review unless one is
// already open for the row.
func (s *DocStore[T, P]) recordPendingConflict(tx *gorm.DB, local, remote P, remoteHash string) (bool, error) {
	var count int64
	err := tx.Model(&models.SyncConflict{}).
		Where("doc_type = ? AND local_id = ? AND resolved = ?", string(s.doctype), local.DocLocalID(), false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check open conflicts: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	return true, s.recordConflict(tx, local, remote, remoteHash, false)
}

// recordResolvedConflict records an auto-resolved collision once per remote
// version. The same still-pending document meeting the same server payload
// on every run must not grow the audit trail.
func (s *DocStore[T, P]) recordResolvedConflict(tx *gorm.DB, local, remote P, remoteHash string) (bool, error) {
	var count int64
	err := tx.Model(&models.SyncConflict{}).
		Where("doc_type = ? AND local_id = ? AND remote_hash = ?",
			string(s.doctype), local.DocLocalID(), remoteHash).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check recorded conflicts: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	return true, s.recordConflict(tx, local, remote, remoteHash, true)
}

func (s *DocStore[T, P]) recordConflict(tx *gorm.DB, local, remote P, remoteHash string, resolved bool) error {
	localJSON, err := json.Marshal(local)
	if err != nil {
		return fmt.Errorf("snapshot local %s: %w", s.doctype, err)
	}
	remoteJSON, err := json.Marshal(remote)
	if err != nil {
		return fmt.Errorf("snapshot remote %s: %w", s.doctype, err)
	}

	conflict := models.SyncConflict{
		DocType:       string(s.doctype),
		LocalID:       local.DocLocalID(),
		RemoteID:      remote.DocRemoteID(),
		LocalVersion:  localJSON,
		RemoteVersion: remoteJSON,
		RemoteHash:    remoteHash,
		Strategy:      s.resolver.Strategy(),
		Resolved:      resolved,
	}
	if resolved {
		keep := "keep_local"
		conflict.Resolution = &keep
		now := tx.NowFunc()
		conflict.ResolvedAt = &now
	}
	if err := tx.Create(&conflict).Error; err != nil {
		return fmt.Errorf("record conflict %s %s: %w", s.doctype, local.DocLocalID(), err)
	}
	return nil
}

// ApplyResolution closes a recorded conflict. keep_local re-queues the
// device version for push; take_remote applies the stored server snapshot.
func (s *DocStore[T, P]) ApplyResolution(ctx context.Context, c *models.SyncConflict, resolution string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch resolution {
		case "keep_local":
			var rec T
			p := P(&rec)
			if err := tx.Model(p).Where("local_id = ?", c.LocalID).
				Update("sync_status", models.SyncStatePending).Error; err != nil {
				return fmt.Errorf("requeue %s %s: %w", s.doctype, c.LocalID, err)
			}

		case "take_remote":
			var existing T
			ep := P(&existing)
			if err := tx.Where("local_id = ?", c.LocalID).First(&existing).Error; err != nil {
				return fmt.Errorf("load %s %s: %w", s.doctype, c.LocalID, err)
			}

			var rec T
			p := P(&rec)
			if err := json.Unmarshal(c.RemoteVersion, p); err != nil {
				return fmt.Errorf("decode remote snapshot: %w", err)
			}
			hash, err := s.checksum.Checksum(p)
			if err != nil {
				return err
			}
			// The snapshot carries only the remote-facing fields; the row's
			// identity and scope stay as they are.
			edoc := ep.Sync()
			doc := p.Sync()
			doc.LocalID = c.LocalID
			doc.InstanceID = edoc.InstanceID
			doc.CompanyID = edoc.CompanyID
			doc.CreatedAt = edoc.CreatedAt
			doc.SyncStatus = models.SyncStateSynced
			doc.ContentHash = hash
			if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(p).Error; err != nil {
				return fmt.Errorf("apply remote snapshot %s %s: %w", s.doctype, c.LocalID, err)
			}

		default:
			return fmt.Errorf("unknown resolution %q", resolution)
		}

		now := tx.NowFunc()
		return tx.Model(&models.SyncConflict{}).Where("id = ?", c.ID).
			Updates(map[string]interface{}{
				"resolved":    true,
				"resolution":  resolution,
				"resolved_at": now,
			}).Error
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
