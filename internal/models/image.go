package models

import "time"

// ImageRecord and SymptomImage hold only path references into the blob
// store; binary content never enters the database.
type ImageRecord struct {
	ID            uint   `gorm:"primaryKey"`
	DayCardID     uint   `gorm:"not null;index"`
	OriginalPath  string `gorm:"not null"`
	ThumbnailPath string `gorm:"not null"`
	IsFavorite    bool   `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

type SymptomImage struct {
	ID            uint   `gorm:"primaryKey"`
	SymptomID     uint   `gorm:"not null;index"`
	OriginalPath  string `gorm:"not null"`
	ThumbnailPath string `gorm:"not null"`
	CreatedAt     time.Time
}
