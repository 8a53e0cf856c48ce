package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

func jsonValue(v any) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonScan(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	}
	return errors.New("unsupported JSON source type")
}
