package services

import (
	"errors"
	"math/rand"
	"regexp"
	"strings"

	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/images"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/models"
)

const (
	DisplayModeColor       = "color"
	DisplayModeCustomImage = "custom_image"
	DisplayModeRandomImage = "random_image"
)

var (
	ErrInvalidCardColor   = errors.New("invalid card color")
	ErrInvalidDisplayMode = errors.New("invalid display mode")
)

var cardColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type DisplayPreferenceStore interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
	GetBool(key string) (bool, bool, error)
	SetBool(key string, value bool) error
}

type DisplayImageIndex interface {
	CountByMonth(year int, month int) (int64, error)
	ListRecordsByMonth(year int, month int) ([]models.ImageRecord, error)
}

type FeatureImageFiles interface {
	SaveFeatureImage(year int, month int, data []byte) (images.Handle, error)
	FileExists(path string) bool
}

// Resolution is the effective per-month display state. Demoted reports
// that the requested or persisted mode was invalid for the month's current
// image set and has been corrected in the preference store.
type Resolution struct {
	Mode      string
	ImagePath string
	Demoted   bool
}

// DisplayModeService decides, per (year, month), whether a card renders as
// a flat color or a representative photo. Only the mode is persisted; a
// random pick is made fresh on every Resolve.
type DisplayModeService struct {
	prefs DisplayPreferenceStore
	index DisplayImageIndex
	files FeatureImageFiles
}

func NewDisplayModeService(prefs DisplayPreferenceStore, index DisplayImageIndex, files FeatureImageFiles) *DisplayModeService {
	return &DisplayModeService{
		prefs: prefs,
		index: index,
		files: files,
	}
}

func (service *DisplayModeService) RequestColor(year int, month int) (Resolution, error) {
	if err := service.prefs.SetBool(DisplayModeKey(year, month), false); err != nil {
		return Resolution{}, err
	}
	return Resolution{Mode: DisplayModeColor}, nil
}

// RequestRandom switches the month to photo mode when it has at least one
// image; with an empty month it coerces to color mode instead and persists
// that, reporting the coercion through Demoted.
func (service *DisplayModeService) RequestRandom(year int, month int) (Resolution, error) {
	count, err := service.index.CountByMonth(year, month)
	if err != nil {
		return Resolution{}, err
	}
	if count == 0 {
		if err := service.prefs.SetBool(DisplayModeKey(year, month), false); err != nil {
			return Resolution{}, err
		}
		return Resolution{Mode: DisplayModeColor, Demoted: true}, nil
	}

	if err := service.prefs.SetBool(HasFeatureImageKey(year, month), false); err != nil {
		return Resolution{}, err
	}
	if err := service.prefs.SetBool(DisplayModeKey(year, month), true); err != nil {
		return Resolution{}, err
	}
	return service.resolveRandom(year, month, false)
}

func (service *DisplayModeService) RequestCustom(year int, month int, data []byte) (Resolution, error) {
	handle, err := service.files.SaveFeatureImage(year, month, data)
	if err != nil {
		return Resolution{}, err
	}
	if err := service.prefs.Set(FeatureImageKey(year, month), handle.OriginalPath); err != nil {
		return Resolution{}, err
	}
	if err := service.prefs.SetBool(HasFeatureImageKey(year, month), true); err != nil {
		return Resolution{}, err
	}
	if err := service.prefs.SetBool(DisplayModeKey(year, month), true); err != nil {
		return Resolution{}, err
	}
	return Resolution{Mode: DisplayModeCustomImage, ImagePath: handle.OriginalPath}, nil
}

// Resolve returns the effective mode for a render, demoting a stale
// persisted mode on the way: custom falls back to random when the feature
// file is gone, random falls back to color when the month has no images.
func (service *DisplayModeService) Resolve(year int, month int) (Resolution, error) {
	photoMode, _, err := service.prefs.GetBool(DisplayModeKey(year, month))
	if err != nil {
		return Resolution{}, err
	}
	if !photoMode {
		return Resolution{Mode: DisplayModeColor}, nil
	}

	demoted := false
	hasFeature, _, err := service.prefs.GetBool(HasFeatureImageKey(year, month))
	if err != nil {
		return Resolution{}, err
	}
	if hasFeature {
		path, found, err := service.prefs.Get(FeatureImageKey(year, month))
		if err != nil {
			return Resolution{}, err
		}
		if found && service.files.FileExists(path) {
			return Resolution{Mode: DisplayModeCustomImage, ImagePath: path}, nil
		}
		if err := service.prefs.SetBool(HasFeatureImageKey(year, month), false); err != nil {
			return Resolution{}, err
		}
		demoted = true
	}

	return service.resolveRandom(year, month, demoted)
}

func (service *DisplayModeService) resolveRandom(year int, month int, demoted bool) (Resolution, error) {
	records, err := service.index.ListRecordsByMonth(year, month)
	if err != nil {
		return Resolution{}, err
	}
	if len(records) == 0 {
		if err := service.prefs.SetBool(DisplayModeKey(year, month), false); err != nil {
			return Resolution{}, err
		}
		return Resolution{Mode: DisplayModeColor, Demoted: true}, nil
	}

	pick := records[rand.Intn(len(records))]
	return Resolution{Mode: DisplayModeRandomImage, ImagePath: pick.ThumbnailPath, Demoted: demoted}, nil
}

func (service *DisplayModeService) SetCardColor(year int, month int, color string) error {
	color = strings.TrimSpace(color)
	if !cardColorPattern.MatchString(color) {
		return ErrInvalidCardColor
	}
	return service.prefs.Set(CardColorKey(year, month), color)
}

func (service *DisplayModeService) CardColor(year int, month int) (string, bool, error) {
	return service.prefs.Get(CardColorKey(year, month))
}
