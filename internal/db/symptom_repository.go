package db

import (
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/models"
	"gorm.io/gorm"
)

type SymptomRepository struct {
	database *gorm.DB
}

func NewSymptomRepository(database *gorm.DB) *SymptomRepository {
	return &SymptomRepository{database: database}
}

func (repo *SymptomRepository) FindByID(symptomID uint) (models.Symptom, error) {
	symptom := models.Symptom{}
	if err := repo.database.Preload("Images").First(&symptom, symptomID).Error; err != nil {
		return models.Symptom{}, err
	}
	return symptom, nil
}

func (repo *SymptomRepository) Create(symptom *models.Symptom) error {
	return repo.database.Create(symptom).Error
}

func (repo *SymptomRepository) ListDayNumbersWithSymptoms(year int, month int) ([]int, error) {
	days := make([]int, 0)
	if err := repo.database.Model(&models.Symptom{}).
		Joins("JOIN day_cards ON day_cards.id = symptoms.day_card_id").
		Where("day_cards.year = ? AND day_cards.month = ?", year, month).
		Distinct().
		Order("day_cards.day ASC").
		Pluck("day_cards.day", &days).Error; err != nil {
		return nil, err
	}
	return days, nil
}

// DeleteCascade removes one symptom and its image rows in a transaction.
func (repo *SymptomRepository) DeleteCascade(symptomID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("symptom_id = ?", symptomID).Delete(&models.SymptomImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Symptom{}, symptomID).Error
	})
}
