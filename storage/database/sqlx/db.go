// Package sqlxrepos implements the business repositories on PostgreSQL
// via jmoiron/sqlx. Nested value lists (seasons, contacts, card details)
// live in JSONB columns.
package sqlxrepos

import (
	"database/sql/driver"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

func itoa(n int) string { return strconv.Itoa(n) }

// jsonb marshals any value into a JSONB column parameter.
type jsonb struct {
	v interface{}
}

func (j jsonb) Value() (driver.Value, error) {
	return json.Marshal(j.v)
}

// unmarshalInto decodes a JSONB column into dest; empty columns are left as
// the zero value.
func unmarshalInto(raw []byte, dest interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrap(err, "decoding jsonb column")
	}
	return nil
}
