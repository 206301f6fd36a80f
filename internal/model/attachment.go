package model

import (
	"time"
)

// Attachment is a file associated with exactly one Event. The object lives in
// the S3-compatible store under Key; this row is the source of truth for its
// existence.
type Attachment struct {
	ID          int64     `db:"id" json:"id"`
	EventID     int64     `db:"event_id" json:"event_id"`
	Key         string    `db:"key" json:"key"`
	Filename    string    `db:"filename" json:"filename"`
	ContentType string    `db:"content_type" json:"content_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploaded_at"`
}
