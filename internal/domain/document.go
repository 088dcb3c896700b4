// Package domain holds the StackIt entities as they are stored.
//
// Entities reference each other by id only. Display data such as an author's
// username is joined in at read time, never copied into a stored record.
package domain

import "time"

// Document holds the fields every stored entity carries.
type Document struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (d *Document) InitTimestamps() {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
}

// NewerThan orders documents newest-first, breaking timestamp ties by id so
// listings are stable.
func (d *Document) NewerThan(other *Document) bool {
	if !d.CreatedAt.Equal(other.CreatedAt) {
		return d.CreatedAt.After(other.CreatedAt)
	}
	return d.ID > other.ID
}
