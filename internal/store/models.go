package store

import "time"

// Entry is one stored key/value pair.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
