package api

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/images"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/services"
)

func buildDisplayView(resolution services.Resolution) fiber.Map {
	view := fiber.Map{
		"mode":    resolution.Mode,
		"demoted": resolution.Demoted,
	}
	if resolution.ImagePath != "" {
		variant := "thumbnail"
		if strings.HasPrefix(resolution.ImagePath, "original_images"+string(filepath.Separator)) {
			variant = "original"
		}
		view["image_url"] = imageURL(variant, resolution.ImagePath)
	}
	return view
}

func (handler *Handler) GetDisplayMode(c *fiber.Ctx) error {
	year, month, err := parseMonthParams(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid year or month")
	}

	resolution, err := handler.display.Resolve(year, month)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to resolve display mode")
	}
	return c.JSON(buildDisplayView(resolution))
}

// SetDisplayMode accepts mode=color|random as a form or JSON field, or a
// custom feature image upload under the "image" form file.
func (handler *Handler) SetDisplayMode(c *fiber.Ctx) error {
	year, month, err := parseMonthParams(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid year or month")
	}

	payload := displayModePayload{}
	if err := c.BodyParser(&payload); err != nil && c.FormValue("mode") == "" {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	mode := strings.TrimSpace(payload.Mode)
	if mode == "" {
		mode = strings.TrimSpace(c.FormValue("mode"))
	}

	var resolution services.Resolution
	switch mode {
	case services.DisplayModeColor:
		resolution, err = handler.display.RequestColor(year, month)
	case services.DisplayModeRandomImage:
		resolution, err = handler.display.RequestRandom(year, month)
	case services.DisplayModeCustomImage:
		fileHeader, fileErr := c.FormFile("image")
		if fileErr != nil {
			return apiError(c, fiber.StatusBadRequest, "custom mode requires an image upload")
		}
		data, readErr := readMultipartFile(fileHeader)
		if readErr != nil {
			return apiError(c, fiber.StatusBadRequest, "failed to read image upload")
		}
		resolution, err = handler.display.RequestCustom(year, month, data)
	default:
		return apiError(c, fiber.StatusBadRequest, "unknown display mode")
	}

	if err != nil {
		if errors.Is(err, images.ErrDecodeFailed) || errors.Is(err, images.ErrEncodeFailed) {
			return apiError(c, fiber.StatusBadRequest, "unsupported image data")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to set display mode")
	}
	return c.JSON(buildDisplayView(resolution))
}

func (handler *Handler) SetCardColor(c *fiber.Ctx) error {
	year, month, err := parseMonthParams(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid year or month")
	}

	payload := cardColorPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := handler.display.SetCardColor(year, month, payload.Color); err != nil {
		if errors.Is(err, services.ErrInvalidCardColor) {
			return apiError(c, fiber.StatusBadRequest, "color must be a #RRGGBB value")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to store card color")
	}
	return c.JSON(fiber.Map{"color": strings.TrimSpace(payload.Color)})
}
