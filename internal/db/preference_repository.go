package db

import (
	"errors"
	"strconv"

	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/models"
	"gorm.io/gorm"
)

// PreferenceRepository is the persisted key/value store for per-month UI
// choices. Each call is independently durable; there is no transactionality
// across keys.
type PreferenceRepository struct {
	database *gorm.DB
}

func NewPreferenceRepository(database *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{database: database}
}

func (repo *PreferenceRepository) Get(key string) (string, bool, error) {
	preference := models.Preference{}
	err := repo.database.Where("key = ?", key).First(&preference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return preference.Value, true, nil
}

func (repo *PreferenceRepository) Set(key string, value string) error {
	result := repo.database.Model(&models.Preference{}).
		Where("key = ?", key).
		Update("value", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return repo.database.Create(&models.Preference{Key: key, Value: value}).Error
}

func (repo *PreferenceRepository) Delete(key string) error {
	return repo.database.Where("key = ?", key).Delete(&models.Preference{}).Error
}

func (repo *PreferenceRepository) GetBool(key string) (bool, bool, error) {
	raw, found, err := repo.Get(key)
	if err != nil || !found {
		return false, found, err
	}
	parsed, parseErr := strconv.ParseBool(raw)
	if parseErr != nil {
		return false, false, nil
	}
	return parsed, true, nil
}

func (repo *PreferenceRepository) SetBool(key string, value bool) error {
	return repo.Set(key, strconv.FormatBool(value))
}
