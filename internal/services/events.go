package services

import "time"

// DayChangeEvent is the payload other layers expect on the app's
// change-notification channel. Day is nil for month-level changes.
type DayChangeEvent struct {
	Year      int  `json:"year"`
	Month     int  `json:"month"`
	Day       *int `json:"day,omitempty"`
	IsSymptom bool `json:"isSymptom,omitempty"`
}

// DayChangePublisher is owned by the surrounding application; the journal
// core only emits into it.
type DayChangePublisher interface {
	DayChanged(event DayChangeEvent)
	DayDeleted(event DayChangeEvent)
}

// ScheduleSource answers whether a schedule marker should be shown for a
// day. Read-only collaborator, no write path into the journal core.
type ScheduleSource interface {
	HasSchedule(day time.Time) bool
}
