package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fields stripped before hashing. They change on every push/pull round trip
// without the business payload changing, so hashing them would make every
// re-pull look like an update.
var volatileFields = []string{"name", "write_date", "id", "last_synced_at"}

// ChecksumCalculator produces the content hash stored next to every
// document. Two documents with the same business payload hash identically
// regardless of sync bookkeeping.
type ChecksumCalculator struct {
	exclude []string
}

// NewChecksumCalculator returns a calculator with the default volatile
// field set.
func NewChecksumCalculator() *ChecksumCalculator {
	return &ChecksumCalculator{exclude: volatileFields}
}

// Checksum returns the hex SHA-256 of the canonical JSON form of v with
// volatile fields removed. encoding/json emits map keys sorted, which makes
// the form canonical.
func (c *ChecksumCalculator) Checksum(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("checksum marshal: %w", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", fmt.Errorf("checksum canonicalize: %w", err)
	}
	for _, key := range c.exclude {
		delete(m, key)
	}

	canonical, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("checksum remarshal: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
