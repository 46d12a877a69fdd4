package services

import "fmt"

// Preference keys are namespaced by (kind, year, month). Stale entries for
// months without cards are harmless no-ops and are never garbage collected.
func DisplayModeKey(year int, month int) string {
	return fmt.Sprintf("display_mode_%d_%d", year, month)
}

func HasFeatureImageKey(year int, month int) string {
	return fmt.Sprintf("has_feature_image_%d_%d", year, month)
}

func FeatureImageKey(year int, month int) string {
	return fmt.Sprintf("feature_image_%d_%d", year, month)
}

func CardColorKey(year int, month int) string {
	return fmt.Sprintf("card_color_%d_%d", year, month)
}

const AccessPINHashKey = "access_pin_hash"
