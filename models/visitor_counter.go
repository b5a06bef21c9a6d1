package models

import "time"

// VisitorCounter is the singleton row tracking how many visits the service has recorded.
// The row is created once at bootstrap and only ever incremented afterwards.
type VisitorCounter struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Count     int64     `gorm:"column:count;not null;default:0" json:"count"`
	LastVisit time.Time `gorm:"column:last_visit;default:CURRENT_TIMESTAMP" json:"last_visit"`
}

// TableName returns the table name for VisitorCounter
func (VisitorCounter) TableName() string { return "visitor_counter" }

// VisitorCounterFilter narrows visitor counter lookups
type VisitorCounterFilter struct {
	ID *uint
}
