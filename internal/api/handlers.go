package api

import (
	"time"

	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/db"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/images"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/services"
	"gorm.io/gorm"
)

const (
	authCookieName = "meowiary_token"
	authTokenTTL   = 7 * 24 * time.Hour
)

type Handler struct {
	journal      *services.JournalService
	display      *services.DisplayModeService
	preferences  *db.PreferenceRepository
	blobs        *images.Store
	schedule     services.ScheduleSource
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
}

type notesPayload struct {
	Notes string `json:"notes" form:"notes"`
}

type pinPayload struct {
	PIN        string `json:"pin" form:"pin"`
	CurrentPIN string `json:"current_pin" form:"current_pin"`
}

type displayModePayload struct {
	Mode string `json:"mode" form:"mode"`
}

type cardColorPayload struct {
	Color string `json:"color" form:"color"`
}

func NewHandler(
	database *gorm.DB,
	blobs *images.Store,
	secret string,
	location *time.Location,
	cookieSecure bool,
	schedule services.ScheduleSource,
	events services.DayChangePublisher,
) *Handler {
	if location == nil {
		location = time.Local
	}

	repositories := db.NewRepositories(database)
	journal := services.NewJournalService(
		repositories.DayCards,
		repositories.Symptoms,
		repositories.Images,
		blobs,
		events,
		location,
	)
	display := services.NewDisplayModeService(repositories.Preferences, repositories.Images, blobs)

	return &Handler{
		journal:      journal,
		display:      display,
		preferences:  repositories.Preferences,
		blobs:        blobs,
		schedule:     schedule,
		secretKey:    []byte(secret),
		location:     location,
		cookieSecure: cookieSecure,
	}
}
