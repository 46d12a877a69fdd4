package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/services"
)

func (handler *Handler) AddSymptom(c *fiber.Ctx) error {
	date, err := parseDateParams(c, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	severity, err := strconv.Atoi(strings.TrimSpace(c.FormValue("severity")))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid severity")
	}

	input := services.SymptomInput{
		Name:     c.FormValue("name"),
		Severity: severity,
		Notes:    c.FormValue("notes"),
	}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fileHeader := range form.File["images"] {
			data, err := readMultipartFile(fileHeader)
			if err != nil {
				return apiError(c, fiber.StatusBadRequest, "failed to read image upload")
			}
			input.ImagePayloads = append(input.ImagePayloads, data)
		}
	}

	card, err := handler.journal.GetOrCreateDay(date)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load day")
	}
	if card.ID == 0 {
		if err := handler.journal.SaveDay(&card); err != nil {
			return apiError(c, fiber.StatusInternalServerError, "failed to save day")
		}
	}

	symptom, err := handler.journal.AddSymptom(card.ID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSymptomNameMissing):
			return apiError(c, fiber.StatusBadRequest, "symptom name is required")
		case errors.Is(err, services.ErrSeverityOutOfRange):
			return apiError(c, fiber.StatusBadRequest, "severity must be between 1 and 5")
		default:
			return apiError(c, fiber.StatusInternalServerError, "failed to add symptom")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(buildSymptomView(symptom))
}

func (handler *Handler) RemoveSymptom(c *fiber.Ctx) error {
	symptomID, err := parseIDParam(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid symptom id")
	}

	if err := handler.journal.RemoveSymptom(symptomID); err != nil {
		if errors.Is(err, services.ErrSymptomNotFound) {
			return apiError(c, fiber.StatusNotFound, "symptom not found")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to remove symptom")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
