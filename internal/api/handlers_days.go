package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/services"
)

func (handler *Handler) GetMonth(c *fiber.Ctx) error {
	year, month, err := parseMonthParams(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid year or month")
	}

	cards, err := handler.journal.FetchMonth(year, month)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to fetch month")
	}

	views := make([]dayCardView, 0, len(cards))
	for _, card := range cards {
		views = append(views, handler.buildDayCardView(card))
	}

	resolution, err := handler.display.Resolve(year, month)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to resolve display mode")
	}
	cardColor, _, err := handler.display.CardColor(year, month)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load card color")
	}

	return c.JSON(fiber.Map{
		"year":       year,
		"month":      month,
		"days":       views,
		"display":    buildDisplayView(resolution),
		"card_color": cardColor,
	})
}

func (handler *Handler) GetDay(c *fiber.Ctx) error {
	date, err := parseDateParams(c, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	card, found, err := handler.journal.FetchDay(date.Year(), int(date.Month()), date.Day())
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to fetch day")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "day not found")
	}

	return c.JSON(handler.buildDayCardView(card))
}

func (handler *Handler) UpsertDay(c *fiber.Ctx) error {
	date, err := parseDateParams(c, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	payload := notesPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	card, err := handler.journal.GetOrCreateDay(date)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load day")
	}
	card.Notes = payload.Notes
	if err := handler.journal.SaveDay(&card); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save day")
	}

	return c.JSON(handler.buildDayCardView(card))
}

func (handler *Handler) DeleteDay(c *fiber.Ctx) error {
	date, err := parseDateParams(c, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	card, found, err := handler.journal.FetchDay(date.Year(), int(date.Month()), date.Day())
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to fetch day")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "day not found")
	}

	if err := handler.journal.DeleteDay(card.ID); err != nil {
		if errors.Is(err, services.ErrDayCardNotFound) {
			return apiError(c, fiber.StatusNotFound, "day not found")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to delete day")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) GetSymptomDays(c *fiber.Ctx) error {
	year, month, err := parseMonthParams(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid year or month")
	}

	days, err := handler.journal.DayNumbersWithSymptoms(year, month)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to fetch symptom days")
	}
	return c.JSON(fiber.Map{"days": days})
}

func (handler *Handler) GetSymptomIndex(c *fiber.Ctx) error {
	year, month, err := parseMonthParams(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid year or month")
	}

	index, err := handler.journal.SymptomIndex(year, month)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to fetch symptom index")
	}

	views := make(map[int][]symptomView, len(index))
	for day, symptoms := range index {
		dayViews := make([]symptomView, 0, len(symptoms))
		for _, symptom := range symptoms {
			dayViews = append(dayViews, buildSymptomView(symptom))
		}
		views[day] = dayViews
	}
	return c.JSON(views)
}
