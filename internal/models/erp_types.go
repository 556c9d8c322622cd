package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// RemoteString is a string type tolerant of the server's dynamic typing.
// The business server returns `false` (boolean) for empty text fields
// instead of an empty string, so plain `string` fields fail to decode.
type RemoteString string

// UnmarshalJSON accepts both string and bool(false) payloads.
func (rs *RemoteString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*rs = RemoteString(s)
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if !b {
			*rs = ""
			return nil
		}
		*rs = "true"
		return nil
	}

	return errors.New("RemoteString: cannot unmarshal value into string")
}

// Value implements driver.Valuer for database storage.
func (rs RemoteString) Value() (driver.Value, error) {
	return string(rs), nil
}

// Scan implements sql.Scanner for database retrieval.
func (rs *RemoteString) Scan(value interface{}) error {
	if value == nil {
		*rs = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*rs = RemoteString(v)
	case []byte:
		*rs = RemoteString(string(v))
	default:
		return fmt.Errorf("failed to scan RemoteString: %v", value)
	}
	return nil
}

// String returns the native string value.
func (rs RemoteString) String() string {
	return string(rs)
}
