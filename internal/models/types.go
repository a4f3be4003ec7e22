package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON type for GORM
type JSON json.RawMessage

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = JSON(bytes)
	return nil
}

// UnmarshalTo unmarshals JSON data to target
func (j JSON) UnmarshalTo(target interface{}) error {
	if len(j) == 0 {
		return nil
	}
	return json.Unmarshal(j, target)
}

// MarshalJSON renders the raw value untouched
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}
