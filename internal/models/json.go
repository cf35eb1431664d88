package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON holds the raw gateway callback payload as a jsonb column. The gateway's
// status vocabulary is wider than ours, so the original verdict is kept for
// dispute resolution.
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSON", src)
	}
}
