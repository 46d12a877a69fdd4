package db

import (
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/models"
	"gorm.io/gorm"
)

type ImageRepository struct {
	database *gorm.DB
}

func NewImageRepository(database *gorm.DB) *ImageRepository {
	return &ImageRepository{database: database}
}

func (repo *ImageRepository) FindRecordByID(imageID uint) (models.ImageRecord, error) {
	record := models.ImageRecord{}
	if err := repo.database.First(&record, imageID).Error; err != nil {
		return models.ImageRecord{}, err
	}
	return record, nil
}

func (repo *ImageRepository) CreateRecords(records []models.ImageRecord) error {
	if len(records) == 0 {
		return nil
	}
	return repo.database.Create(&records).Error
}

func (repo *ImageRepository) UpdateFavorite(imageID uint, favorite bool) error {
	return repo.database.Model(&models.ImageRecord{}).
		Where("id = ?", imageID).
		Update("is_favorite", favorite).Error
}

func (repo *ImageRepository) CountByMonth(year int, month int) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.ImageRecord{}).
		Joins("JOIN day_cards ON day_cards.id = image_records.day_card_id").
		Where("day_cards.year = ? AND day_cards.month = ?", year, month).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ImageRepository) ListRecordsByMonth(year int, month int) ([]models.ImageRecord, error) {
	records := make([]models.ImageRecord, 0)
	if err := repo.database.
		Joins("JOIN day_cards ON day_cards.id = image_records.day_card_id").
		Where("day_cards.year = ? AND day_cards.month = ?", year, month).
		Order("image_records.id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *ImageRepository) ListRecordsByDayIDs(cardIDs []uint) ([]models.ImageRecord, error) {
	records := make([]models.ImageRecord, 0)
	if len(cardIDs) == 0 {
		return records, nil
	}
	if err := repo.database.Where("day_card_id IN ?", cardIDs).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *ImageRepository) ListSymptomImagesByDayIDs(cardIDs []uint) ([]models.SymptomImage, error) {
	images := make([]models.SymptomImage, 0)
	if len(cardIDs) == 0 {
		return images, nil
	}
	if err := repo.database.
		Joins("JOIN symptoms ON symptoms.id = symptom_images.symptom_id").
		Where("symptoms.day_card_id IN ?", cardIDs).
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}
