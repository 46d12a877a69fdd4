package db

import "gorm.io/gorm"

type Repositories struct {
	DayCards    *DayCardRepository
	Symptoms    *SymptomRepository
	Images      *ImageRepository
	Preferences *PreferenceRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		DayCards:    NewDayCardRepository(database),
		Symptoms:    NewSymptomRepository(database),
		Images:      NewImageRepository(database),
		Preferences: NewPreferenceRepository(database),
	}
}
