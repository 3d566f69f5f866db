package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is a map[string]interface{} that knows how to read and write
// itself as a JSONB column, for the freeform metadata fields on Team,
// Asset, and User.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("JSONMap.Scan: unsupported source type %T", src)
	}
	return json.Unmarshal(b, m)
}

// Value implements driver.Valuer for Guarantees, stored as a JSONB column
// on contracts.
func (g *Guarantees) Value() (driver.Value, error) {
	if g == nil {
		return nil, nil
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner for Guarantees.
func (g *Guarantees) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("Guarantees.Scan: unsupported source type %T", src)
	}
	return json.Unmarshal(b, g)
}
