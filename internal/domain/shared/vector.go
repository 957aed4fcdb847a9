package shared

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Vector is an embedding vector stored as a JSON array column.
// A nil Vector means no embedding has been generated yet.
type Vector []float64

// Value implements driver.Valuer
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner
func (v *Vector) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	default:
		return fmt.Errorf("cannot scan %T into Vector", value)
	}
}

// IsZero returns true if the vector is absent or has no magnitude
func (v Vector) IsZero() bool {
	if len(v) == 0 {
		return true
	}
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
