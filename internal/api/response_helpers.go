package api

import (
	"errors"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/models"
)

var errInvalidDateParams = errors.New("invalid date params")

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func parseMonthParams(c *fiber.Ctx) (int, int, error) {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil || year < 1 {
		return 0, 0, errInvalidDateParams
	}
	month, err := strconv.Atoi(c.Params("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errInvalidDateParams
	}
	return year, month, nil
}

func parseDateParams(c *fiber.Ctx, location *time.Location) (time.Time, error) {
	year, month, err := parseMonthParams(c)
	if err != nil {
		return time.Time{}, err
	}
	day, err := strconv.Atoi(c.Params("day"))
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, errInvalidDateParams
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, location)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		// The calendar normalized an impossible day, e.g. Feb 30.
		return time.Time{}, errInvalidDateParams
	}
	return date, nil
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(parsed), nil
}

type imageView struct {
	ID           uint   `json:"id"`
	OriginalURL  string `json:"original_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsFavorite   bool   `json:"is_favorite,omitempty"`
}

type symptomView struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name"`
	Severity   int         `json:"severity"`
	Notes      string      `json:"notes,omitempty"`
	RecordedAt time.Time   `json:"recorded_at"`
	Images     []imageView `json:"images"`
}

type dayCardView struct {
	ID          uint          `json:"id"`
	Year        int           `json:"year"`
	Month       int           `json:"month"`
	Day         int           `json:"day"`
	Notes       string        `json:"notes,omitempty"`
	Images      []imageView   `json:"images"`
	Symptoms    []symptomView `json:"symptoms"`
	HasSchedule bool          `json:"has_schedule,omitempty"`
}

func imageURL(variant string, logicalPath string) string {
	if logicalPath == "" {
		return ""
	}
	return path.Join("/images", variant, filepath.Base(logicalPath))
}

func buildImageView(record models.ImageRecord) imageView {
	return imageView{
		ID:           record.ID,
		OriginalURL:  imageURL("original", record.OriginalPath),
		ThumbnailURL: imageURL("thumbnail", record.ThumbnailPath),
		IsFavorite:   record.IsFavorite,
	}
}

func buildSymptomView(symptom models.Symptom) symptomView {
	view := symptomView{
		ID:         symptom.ID,
		Name:       symptom.Name,
		Severity:   symptom.Severity,
		Notes:      symptom.Notes,
		RecordedAt: symptom.RecordedAt,
		Images:     make([]imageView, 0, len(symptom.Images)),
	}
	for _, symptomImage := range symptom.Images {
		view.Images = append(view.Images, imageView{
			ID:           symptomImage.ID,
			OriginalURL:  imageURL("original", symptomImage.OriginalPath),
			ThumbnailURL: imageURL("thumbnail", symptomImage.ThumbnailPath),
		})
	}
	return view
}

func (handler *Handler) buildDayCardView(card models.DayCard) dayCardView {
	view := dayCardView{
		ID:       card.ID,
		Year:     card.Year,
		Month:    card.Month,
		Day:      card.Day,
		Notes:    card.Notes,
		Images:   make([]imageView, 0, len(card.Images)),
		Symptoms: make([]symptomView, 0, len(card.Symptoms)),
	}
	for _, record := range card.Images {
		view.Images = append(view.Images, buildImageView(record))
	}
	for _, symptom := range card.Symptoms {
		view.Symptoms = append(view.Symptoms, buildSymptomView(symptom))
	}
	if handler.schedule != nil {
		view.HasSchedule = handler.schedule.HasSchedule(card.Date)
	}
	return view
}
