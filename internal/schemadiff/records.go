package schemadiff

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ChangeRecords is a persistable slice of ChangeRecord, stored as a JSONB
// column on proposals.breaking_changes.
type ChangeRecords []ChangeRecord

// Value implements driver.Valuer.
func (r ChangeRecords) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner.
func (r *ChangeRecords) Scan(src interface{}) error {
	if src == nil {
		*r = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("ChangeRecords.Scan: unsupported source type %T", src)
	}
	return json.Unmarshal(b, r)
}
