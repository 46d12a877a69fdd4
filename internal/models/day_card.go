package models

import "time"

// DayCard is the single journal entry for one calendar day. Year, Month and
// Day are denormalized from Date at construction and must never drift.
type DayCard struct {
	ID        uint      `gorm:"primaryKey"`
	Date      time.Time `gorm:"type:date;not null"`
	Year      int       `gorm:"not null;uniqueIndex:uidx_day_cards_date"`
	Month     int       `gorm:"not null;uniqueIndex:uidx_day_cards_date"`
	Day       int       `gorm:"not null;uniqueIndex:uidx_day_cards_date"`
	Notes     string
	Images    []ImageRecord `gorm:"foreignKey:DayCardID"`
	Symptoms  []Symptom     `gorm:"foreignKey:DayCardID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewDayCard(day time.Time, location *time.Location) DayCard {
	if location == nil {
		location = time.Local
	}
	localized := day.In(location)
	year, month, dayOfMonth := localized.Date()
	return DayCard{
		Date:  time.Date(year, month, dayOfMonth, 0, 0, 0, 0, location),
		Year:  year,
		Month: int(month),
		Day:   dayOfMonth,
	}
}
