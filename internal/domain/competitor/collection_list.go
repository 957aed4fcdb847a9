package competitor

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CollectionList is a list of collection handles stored as a JSON array column
type CollectionList []string

// Value implements driver.Valuer
func (l CollectionList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *CollectionList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, l)
	case string:
		return json.Unmarshal([]byte(data), l)
	default:
		return fmt.Errorf("cannot scan %T into CollectionList", value)
	}
}
