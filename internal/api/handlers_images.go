package api

import (
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/images"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/services"
)

func (handler *Handler) UploadDayImages(c *fiber.Ctx) error {
	date, err := parseDateParams(c, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	payloads, err := readUploadedImages(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "no images uploaded")
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

	records, err := handler.journal.AttachImages(card.ID, payloads)
	if err != nil {
		if errors.Is(err, images.ErrDecodeFailed) || errors.Is(err, images.ErrEncodeFailed) {
			return apiError(c, fiber.StatusBadRequest, "unsupported image data")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to store images")
	}

	views := make([]imageView, 0, len(records))
	for _, record := range records {
		views = append(views, buildImageView(record))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"images": views})
}

func (handler *Handler) ToggleFavorite(c *fiber.Ctx) error {
	imageID, err := parseIDParam(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid image id")
	}

	favorite, err := handler.journal.ToggleFavorite(imageID)
	if err != nil {
		if errors.Is(err, services.ErrImageNotFound) {
			return apiError(c, fiber.StatusNotFound, "image not found")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to toggle favorite")
	}
	return c.JSON(fiber.Map{"is_favorite": favorite})
}

func (handler *Handler) ServeOriginal(c *fiber.Ctx) error {
	return handler.serveImage(c, "original_images")
}

func (handler *Handler) ServeThumbnail(c *fiber.Ctx) error {
	return handler.serveImage(c, "thumbnail_images")
}

func (handler *Handler) serveImage(c *fiber.Ctx, directory string) error {
	name := filepath.Base(c.Params("name"))
	if name == "." || name == string(filepath.Separator) {
		return apiError(c, fiber.StatusBadRequest, "invalid image name")
	}

	logicalPath := filepath.Join(directory, name)
	if !handler.blobs.FileExists(logicalPath) {
		return apiError(c, fiber.StatusNotFound, "image not found")
	}
	return c.SendFile(handler.blobs.AbsolutePath(logicalPath))
}

func readUploadedImages(c *fiber.Ctx) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	files := form.File["images"]
	if len(files) == 0 {
		return nil, errors.New("no image files in form")
	}

	payloads := make([][]byte, 0, len(files))
	for _, fileHeader := range files {
		data, err := readMultipartFile(fileHeader)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, data)
	}
	return payloads, nil
}

func readMultipartFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
