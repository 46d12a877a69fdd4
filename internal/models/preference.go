package models

import "time"

type Preference struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null;default:''"`
	UpdatedAt time.Time
}
