package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Event is a single logged occurrence. Attachments are loaded separately and
// ordered by upload time.
type Event struct {
	ID          int64     `db:"id" json:"id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	Tags        Tags      `db:"tags" json:"tags"`
	Metadata    Metadata  `db:"metadata" json:"metadata"`

	Attachments []*Attachment `db:"-" json:"attachments"`
}

// Tags is a set of strings stored as a JSON array column.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(src any) error {
	return scanJSON(src, t)
}

// Metadata is an opaque structured document stored as a JSON column.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Metadata) Scan(src any) error {
	return scanJSON(src, m)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
}
