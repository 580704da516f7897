package model

import "time"

// ScheduleKind selects how a reminder recurs.
type ScheduleKind string

const (
	ScheduleOneTime ScheduleKind = "one_time"
	ScheduleMonthly ScheduleKind = "monthly"
)

// Reminder represents a saved reminder for a chat user.
// Exactly one of OccursAt or DayOfMonth+TimeOfDay is meaningful, per Schedule.
type Reminder struct {
	ID         uint         `gorm:"primaryKey"`
	Owner      int64        `gorm:"index;not null"`
	Text       string       `gorm:"type:text;not null"`
	Note       string       `gorm:"type:text"`
	Amount     string       `gorm:"type:text"`
	Link       string       `gorm:"type:text"`
	Schedule   ScheduleKind `gorm:"type:varchar(16);not null"`
	OccursAt   *time.Time
	DayOfMonth int
	TimeOfDay  string    `gorm:"type:varchar(5)"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}
