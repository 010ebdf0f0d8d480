package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FieldChange records one proposed field edit: the value the submitter saw and
// the value they want committed.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// FieldChanges is the JSONB-backed changes map carried by an edit request.
type FieldChanges map[string]FieldChange

// Value implements driver.Valuer.
func (c FieldChanges) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *FieldChanges) Scan(src any) error {
	if src == nil {
		*c = FieldChanges{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported FieldChanges source %T", src)
	}
	if len(data) == 0 {
		*c = FieldChanges{}
		return nil
	}
	return json.Unmarshal(data, c)
}
