package db

import (
	"errors"

	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/models"
	"gorm.io/gorm"
)

type DayCardRepository struct {
	database *gorm.DB
}

func NewDayCardRepository(database *gorm.DB) *DayCardRepository {
	return &DayCardRepository{database: database}
}

func (repo *DayCardRepository) FindByDate(year int, month int, day int) (models.DayCard, bool, error) {
	card := models.DayCard{}
	err := repo.database.
		Preload("Images").
		Preload("Symptoms").
		Preload("Symptoms.Images").
		Where("year = ? AND month = ? AND day = ?", year, month, day).
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DayCard{}, false, nil
	}
	if err != nil {
		return models.DayCard{}, false, err
	}
	return card, true, nil
}

func (repo *DayCardRepository) FindByID(cardID uint) (models.DayCard, error) {
	card := models.DayCard{}
	if err := repo.database.
		Preload("Images").
		Preload("Symptoms").
		Preload("Symptoms.Images").
		First(&card, cardID).Error; err != nil {
		return models.DayCard{}, err
	}
	return card, nil
}

func (repo *DayCardRepository) ListByIDs(cardIDs []uint) ([]models.DayCard, error) {
	cards := make([]models.DayCard, 0, len(cardIDs))
	if err := repo.database.Where("id IN ?", cardIDs).Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (repo *DayCardRepository) ListByMonth(year int, month int) ([]models.DayCard, error) {
	cards := make([]models.DayCard, 0)
	if err := repo.database.
		Preload("Images").
		Preload("Symptoms").
		Preload("Symptoms.Images").
		Where("year = ? AND month = ?", year, month).
		Order("day ASC").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (repo *DayCardRepository) Create(card *models.DayCard) error {
	return repo.database.Create(card).Error
}

// Save upserts the card together with any newly appended symptoms and
// image records in a single write.
func (repo *DayCardRepository) Save(card *models.DayCard) error {
	return repo.database.Session(&gorm.Session{FullSaveAssociations: true}).Save(card).Error
}

// DeleteCascadeByIDs removes the day cards and everything they own in one
// transaction: symptom images first, then symptoms, image records and the
// cards themselves. Backing files are not touched here; callers capture
// paths beforehand and clean them up after commit.
func (repo *DayCardRepository) DeleteCascadeByIDs(cardIDs []uint) error {
	if len(cardIDs) == 0 {
		return nil
	}
	return repo.database.Transaction(func(tx *gorm.DB) error {
		symptomIDs := make([]uint, 0)
		if err := tx.Model(&models.Symptom{}).
			Where("day_card_id IN ?", cardIDs).
			Pluck("id", &symptomIDs).Error; err != nil {
			return err
		}

		if len(symptomIDs) > 0 {
			if err := tx.Where("symptom_id IN ?", symptomIDs).Delete(&models.SymptomImage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", symptomIDs).Delete(&models.Symptom{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("day_card_id IN ?", cardIDs).Delete(&models.ImageRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", cardIDs).Delete(&models.DayCard{}).Error
	})
}
