package sync

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Context is the immutable snapshot of the device registration a sync run
// operates under. It is built once per run; units never mutate it.
type Context struct {
	InstanceID  string
	CompanyID   string
	TerritoryID string
	WarehouseID string
	PriceList   string
	// FromDate bounds incremental pulls (yyyy-MM-dd). Empty means full pull.
	FromDate string
}

// Validate checks the required fields and the date format.
func (c Context) Validate() error {
	if strings.TrimSpace(c.InstanceID) == "" {
		return fmt.Errorf("sync context: instance id is required")
	}
	if strings.TrimSpace(c.CompanyID) == "" {
		return fmt.Errorf("sync context: company id is required")
	}
	if c.FromDate != "" {
		if _, err := time.Parse(dateLayout, c.FromDate); err != nil {
			return fmt.Errorf("sync context: invalid from date %q: %w", c.FromDate, err)
		}
	}
	return nil
}

// Fingerprint returns the cache key identifying the catalog scope of this
// context. Two contexts with the same fingerprint see the same catalog.
func (c Context) Fingerprint() string {
	return strings.Join([]string{c.CompanyID, c.TerritoryID, c.PriceList, c.WarehouseID}, "|")
}

// CustomerFingerprint returns the cache key for the customer snapshot.
func (c Context) CustomerFingerprint() string {
	return c.CompanyID + "|" + c.TerritoryID
}

// Since returns the FromDate as a time, or nil when unset.
func (c Context) Since() *time.Time {
	if c.FromDate == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, c.FromDate)
	if err != nil {
		return nil
	}
	return &t
}
