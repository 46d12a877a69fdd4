package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	auth := app.Group("/api/auth")
	auth.Get("/status", handler.AuthStatus)
	auth.Post("/pin", handler.LockRequired, handler.SetPIN)
	auth.Post("/unlock", handler.Unlock)

	months := app.Group("/api/months", handler.LockRequired)
	months.Get("/:year/:month", handler.GetMonth)
	months.Get("/:year/:month/symptom-days", handler.GetSymptomDays)
	months.Get("/:year/:month/symptoms", handler.GetSymptomIndex)
	months.Get("/:year/:month/display-mode", handler.GetDisplayMode)
	months.Put("/:year/:month/display-mode", handler.SetDisplayMode)
	months.Put("/:year/:month/card-color", handler.SetCardColor)

	days := app.Group("/api/days", handler.LockRequired)
	days.Get("/:year/:month/:day", handler.GetDay)
	days.Put("/:year/:month/:day", handler.UpsertDay)
	days.Delete("/:year/:month/:day", handler.DeleteDay)
	days.Post("/:year/:month/:day/images", handler.UploadDayImages)
	days.Post("/:year/:month/:day/symptoms", handler.AddSymptom)

	app.Delete("/api/symptoms/:id", handler.LockRequired, handler.RemoveSymptom)
	app.Post("/api/images/:id/favorite", handler.LockRequired, handler.ToggleFavorite)

	app.Get("/images/original/:name", handler.LockRequired, handler.ServeOriginal)
	app.Get("/images/thumbnail/:name", handler.LockRequired, handler.ServeThumbnail)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
