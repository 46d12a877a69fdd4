package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/images"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/models"
)

var (
	ErrDayCardNotFound    = errors.New("day card not found")
	ErrSymptomNotFound    = errors.New("symptom not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrSymptomNameMissing = errors.New("symptom name missing")
	ErrSeverityOutOfRange = errors.New("symptom severity out of range")
	ErrSaveDayFailed      = errors.New("save day failed")
	ErrDeleteDayFailed    = errors.New("delete day failed")
)

type DayCardStore interface {
	FindByDate(year int, month int, day int) (models.DayCard, bool, error)
	FindByID(cardID uint) (models.DayCard, error)
	ListByIDs(cardIDs []uint) ([]models.DayCard, error)
	ListByMonth(year int, month int) ([]models.DayCard, error)
	Create(card *models.DayCard) error
	Save(card *models.DayCard) error
	DeleteCascadeByIDs(cardIDs []uint) error
}

type SymptomStore interface {
	FindByID(symptomID uint) (models.Symptom, error)
	Create(symptom *models.Symptom) error
	ListDayNumbersWithSymptoms(year int, month int) ([]int, error)
	DeleteCascade(symptomID uint) error
}

type ImageRecordStore interface {
	FindRecordByID(imageID uint) (models.ImageRecord, error)
	CreateRecords(records []models.ImageRecord) error
	UpdateFavorite(imageID uint, favorite bool) error
	ListRecordsByDayIDs(cardIDs []uint) ([]models.ImageRecord, error)
	ListSymptomImagesByDayIDs(cardIDs []uint) ([]models.SymptomImage, error)
}

type ImageBlobStore interface {
	Save(data []byte) (images.Handle, error)
	Delete(path string, variant images.Variant)
}

type SymptomInput struct {
	Name          string
	Severity      int
	Notes         string
	RecordedAt    time.Time
	ImagePayloads [][]byte
}

// JournalService owns the repository operations over the day card graph
// and orchestrates the blob store for file-level side effects. Database
// writes are strict; post-commit file cleanup is best effort.
type JournalService struct {
	days     DayCardStore
	symptoms SymptomStore
	records  ImageRecordStore
	blobs    ImageBlobStore
	events   DayChangePublisher
	location *time.Location
}

func NewJournalService(
	days DayCardStore,
	symptoms SymptomStore,
	records ImageRecordStore,
	blobs ImageBlobStore,
	events DayChangePublisher,
	location *time.Location,
) *JournalService {
	if location == nil {
		location = time.Local
	}
	return &JournalService{
		days:     days,
		symptoms: symptoms,
		records:  records,
		blobs:    blobs,
		events:   events,
		location: location,
	}
}

// GetOrCreateDay returns the persisted card for the date, or a fresh
// not-yet-persisted one. Persisting is a separate SaveDay call.
func (service *JournalService) GetOrCreateDay(day time.Time) (models.DayCard, error) {
	fresh := models.NewDayCard(day, service.location)
	existing, found, err := service.days.FindByDate(fresh.Year, fresh.Month, fresh.Day)
	if err != nil {
		return models.DayCard{}, err
	}
	if found {
		return existing, nil
	}
	return fresh, nil
}

func (service *JournalService) SaveDay(card *models.DayCard) error {
	var err error
	if card.ID == 0 {
		err = service.days.Create(card)
	} else {
		err = service.days.Save(card)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveDayFailed, err)
	}
	service.publishChanged(card.Year, card.Month, card.Day, false)
	return nil
}

func (service *JournalService) FetchDay(year int, month int, day int) (models.DayCard, bool, error) {
	return service.days.FindByDate(year, month, day)
}

func (service *JournalService) FetchMonth(year int, month int) ([]models.DayCard, error) {
	return service.days.ListByMonth(year, month)
}

func (service *JournalService) MonthAsMap(year int, month int) (map[int]models.DayCard, error) {
	cards, err := service.days.ListByMonth(year, month)
	if err != nil {
		return nil, err
	}
	byDay := make(map[int]models.DayCard, len(cards))
	for _, card := range cards {
		byDay[card.Day] = card
	}
	return byDay, nil
}

func (service *JournalService) DayNumbersWithSymptoms(year int, month int) ([]int, error) {
	return service.symptoms.ListDayNumbersWithSymptoms(year, month)
}

func (service *JournalService) SymptomIndex(year int, month int) (map[int][]models.Symptom, error) {
	cards, err := service.days.ListByMonth(year, month)
	if err != nil {
		return nil, err
	}
	index := make(map[int][]models.Symptom)
	for _, card := range cards {
		if len(card.Symptoms) == 0 {
			continue
		}
		index[card.Day] = card.Symptoms
	}
	return index, nil
}

// AttachImages stores every payload as a file pair first and references
// them from new image records. A record is only written after both of its
// files are confirmed on disk; on any failure the already-written files
// are removed and nothing is referenced.
func (service *JournalService) AttachImages(cardID uint, payloads [][]byte) ([]models.ImageRecord, error) {
	card, err := service.days.FindByID(cardID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDayCardNotFound, err)
	}

	handles, err := service.saveBlobs(payloads)
	if err != nil {
		return nil, err
	}

	records := make([]models.ImageRecord, 0, len(handles))
	for _, handle := range handles {
		records = append(records, models.ImageRecord{
			DayCardID:     card.ID,
			OriginalPath:  handle.OriginalPath,
			ThumbnailPath: handle.ThumbnailPath,
		})
	}
	if err := service.records.CreateRecords(records); err != nil {
		service.deleteHandles(handles)
		return nil, err
	}

	service.publishChanged(card.Year, card.Month, card.Day, false)
	return records, nil
}

func (service *JournalService) AddSymptom(cardID uint, input SymptomInput) (models.Symptom, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Symptom{}, ErrSymptomNameMissing
	}
	if !models.ValidSeverity(input.Severity) {
		return models.Symptom{}, ErrSeverityOutOfRange
	}

	card, err := service.days.FindByID(cardID)
	if err != nil {
		return models.Symptom{}, fmt.Errorf("%w: %v", ErrDayCardNotFound, err)
	}

	handles, err := service.saveBlobs(input.ImagePayloads)
	if err != nil {
		return models.Symptom{}, err
	}

	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().In(service.location)
	}

	symptom := models.Symptom{
		DayCardID:  card.ID,
		Name:       name,
		Severity:   input.Severity,
		Notes:      input.Notes,
		RecordedAt: recordedAt,
	}
	for _, handle := range handles {
		symptom.Images = append(symptom.Images, models.SymptomImage{
			OriginalPath:  handle.OriginalPath,
			ThumbnailPath: handle.ThumbnailPath,
		})
	}
	if err := service.symptoms.Create(&symptom); err != nil {
		service.deleteHandles(handles)
		return models.Symptom{}, err
	}

	service.publishChanged(card.Year, card.Month, card.Day, true)
	return symptom, nil
}

// RemoveSymptom deletes one symptom and its image rows, then requests
// background removal of the captured file paths.
func (service *JournalService) RemoveSymptom(symptomID uint) error {
	symptom, err := service.symptoms.FindByID(symptomID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSymptomNotFound, err)
	}
	card, err := service.days.FindByID(symptom.DayCardID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDayCardNotFound, err)
	}

	captured := capturePaths(nil, symptom.Images)
	if err := service.symptoms.DeleteCascade(symptom.ID); err != nil {
		return err
	}
	service.deletePaths(captured)

	service.publishChanged(card.Year, card.Month, card.Day, true)
	return nil
}

func (service *JournalService) DeleteDay(cardID uint) error {
	return service.DeleteDays([]uint{cardID})
}

// DeleteDays runs the cascade: every attachment path is captured into
// plain values before anything is removed, the entity graph is deleted in
// one transaction, and only after commit are the files queued for
// background deletion. A failed transaction deletes nothing; failed file
// cleanup is never reported.
func (service *JournalService) DeleteDays(cardIDs []uint) error {
	if len(cardIDs) == 0 {
		return nil
	}

	cards, err := service.days.ListByIDs(cardIDs)
	if err != nil {
		return err
	}
	if len(cards) != len(cardIDs) {
		return ErrDayCardNotFound
	}

	dayImages, err := service.records.ListRecordsByDayIDs(cardIDs)
	if err != nil {
		return err
	}
	symptomImages, err := service.records.ListSymptomImagesByDayIDs(cardIDs)
	if err != nil {
		return err
	}
	captured := capturePaths(dayImages, symptomImages)

	if err := service.days.DeleteCascadeByIDs(cardIDs); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteDayFailed, err)
	}

	service.deletePaths(captured)
	for _, card := range cards {
		service.publishDeleted(card.Year, card.Month, card.Day)
	}
	return nil
}

func (service *JournalService) ToggleFavorite(imageID uint) (bool, error) {
	record, err := service.records.FindRecordByID(imageID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrImageNotFound, err)
	}
	flipped := !record.IsFavorite
	if err := service.records.UpdateFavorite(imageID, flipped); err != nil {
		return false, err
	}
	return flipped, nil
}

func (service *JournalService) saveBlobs(payloads [][]byte) ([]images.Handle, error) {
	handles := make([]images.Handle, 0, len(payloads))
	for _, payload := range payloads {
		handle, err := service.blobs.Save(payload)
		if err != nil {
			service.deleteHandles(handles)
			return nil, err
		}
		handles = append(handles, handle)
	}
	return handles, nil
}

func (service *JournalService) deleteHandles(handles []images.Handle) {
	for _, handle := range handles {
		service.blobs.Delete(handle.OriginalPath, images.VariantOriginal)
		service.blobs.Delete(handle.ThumbnailPath, images.VariantThumbnail)
	}
}

type capturedPath struct {
	path    string
	variant images.Variant
}

// capturePaths copies attachment paths into plain values so nothing live
// is dereferenced after the delete transaction commits.
func capturePaths(records []models.ImageRecord, symptomImages []models.SymptomImage) []capturedPath {
	captured := make([]capturedPath, 0, 2*(len(records)+len(symptomImages)))
	for _, record := range records {
		captured = append(captured,
			capturedPath{path: record.OriginalPath, variant: images.VariantOriginal},
			capturedPath{path: record.ThumbnailPath, variant: images.VariantThumbnail},
		)
	}
	for _, symptomImage := range symptomImages {
		captured = append(captured,
			capturedPath{path: symptomImage.OriginalPath, variant: images.VariantOriginal},
			capturedPath{path: symptomImage.ThumbnailPath, variant: images.VariantThumbnail},
		)
	}
	return captured
}

func (service *JournalService) deletePaths(captured []capturedPath) {
	for _, entry := range captured {
		service.blobs.Delete(entry.path, entry.variant)
	}
}

func (service *JournalService) publishChanged(year int, month int, day int, isSymptom bool) {
	if service.events == nil {
		return
	}
	dayCopy := day
	service.events.DayChanged(DayChangeEvent{Year: year, Month: month, Day: &dayCopy, IsSymptom: isSymptom})
}

func (service *JournalService) publishDeleted(year int, month int, day int) {
	if service.events == nil {
		return
	}
	dayCopy := day
	service.events.DayDeleted(DayChangeEvent{Year: year, Month: month, Day: &dayCopy})
}
