package domain

import "time"

// MirrorSync records when the local product mirror was last replaced.
type MirrorSync struct {
	ID       uint `gorm:"primaryKey"`
	SyncedAt time.Time
	Rows     int
}
