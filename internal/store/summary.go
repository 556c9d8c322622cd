package store

import (
	"context"
	"fmt"
	"time"

	"github.com/openretail/possync/internal/models"
	"github.com/openretail/possync/internal/sync"
)

// OutboxRow is the per-doctype view of documents still owed to the server.
type OutboxRow struct {
	DocType       string     `json:"doc_type"`
	Pending       int64      `json:"pending"`
	Failed        int64      `json:"failed"`
	OldestPending *time.Time `json:"oldest_pending,omitempty"`
}

// OutboxReporter is the non-generic face of a DocStore the HTTP surface
// works with.
type OutboxReporter interface {
	Doctype() sync.Doctype
	OutboxStatus(ctx context.Context, instanceID, companyID string) (OutboxRow, error)
	RetryFailed(ctx context.Context, instanceID, companyID, localID string) error
}

// OutboxStatus counts pending and failed documents and finds the oldest
// pending one. A growing oldest age is the operator's first sign the
// terminal cannot reach the server.
func (s *DocStore[T, P]) OutboxStatus(ctx context.Context, instanceID, companyID string) (OutboxRow, error) {
	row := OutboxRow{DocType: string(s.doctype)}

	var rec T
	p := P(&rec)

	err := s.db.WithContext(ctx).Model(p).
		Where("instance_id = ? AND company_id = ? AND sync_status = ?",
			instanceID, companyID, models.SyncStatePending).
		Count(&row.Pending).Error
	if err != nil {
		return row, fmt.Errorf("count %s outbox: %w", s.doctype, err)
	}

	err = s.db.WithContext(ctx).Model(p).
		Where("instance_id = ? AND company_id = ? AND sync_status = ?",
			instanceID, companyID, models.SyncStateFailed).
		Count(&row.Failed).Error
	if err != nil {
		return row, fmt.Errorf("count %s failed: %w", s.doctype, err)
	}

	if row.Pending > 0 {
		var oldest time.Time
		err = s.db.WithContext(ctx).Model(p).
			Where("instance_id = ? AND company_id = ? AND sync_status = ?",
				instanceID, companyID, models.SyncStatePending).
			Select("MIN(created_at)").Scan(&oldest).Error
		if err != nil {
			return row, fmt.Errorf("find oldest %s: %w", s.doctype, err)
		}
		row.OldestPending = &oldest
	}

	return row, nil
}
