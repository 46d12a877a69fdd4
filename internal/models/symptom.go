package models

import "time"

const (
	SeverityMin = 1
	SeverityMax = 5
)

type Symptom struct {
	ID         uint   `gorm:"primaryKey"`
	DayCardID  uint   `gorm:"not null;index"`
	Name       string `gorm:"not null"`
	Severity   int    `gorm:"not null"`
	Notes      string
	RecordedAt time.Time
	Images     []SymptomImage `gorm:"foreignKey:SymptomID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func ValidSeverity(severity int) bool {
	return severity >= SeverityMin && severity <= SeverityMax
}
