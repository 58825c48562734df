package utils

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxPlacesLimit caps the number of places a search may return.
const MaxPlacesLimit = 50

var (
	// Detect potentially dangerous characters - more focused on injection patterns
	dangerousPattern = regexp.MustCompile(`[<>]|--|\/\*|\*\/|;.*--`)

	// Detect HTML/script tags
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// ValidatePlaceName checks a gazetteer name taken from the URL path. Names are
// letters in any script plus spaces, dots, hyphens, apostrophes and commas.
func ValidatePlaceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("place name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return errors.New("place name too long (max 100 characters)")
	}
	if strings.Contains(name, "--") {
		return errors.New("place name contains invalid characters")
	}
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsMark(r), unicode.IsDigit(r):
		case r == ' ', r == '.', r == '-', r == '\'', r == ',':
		default:
			return errors.New("place name contains invalid characters")
		}
	}
	return nil
}

// ValidateQuery validates search query strings
func ValidateQuery(query string) error {
	if query == "" {
		return nil
	}

	if len(query) > 200 {
		return errors.New("query too long (max 200 characters)")
	}

	if dangerousPattern.MatchString(query) {
		return errors.New("query contains invalid characters")
	}

	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return errors.New("latitude must be a finite number")
	}
	if lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return errors.New("longitude must be a finite number")
	}
	if lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateAngle accepts any finite angle; headings and alpha values are
// wrapped into [0, 360) later.
func ValidateAngle(deg float64) error {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return errors.New("angle must be a finite number")
	}
	return nil
}

// ValidateScreenOrientation accepts the rotations a screen can report.
func ValidateScreenOrientation(deg int) error {
	switch deg {
	case 0, 90, -90, 180, -180, 270:
		return nil
	default:
		return errors.New("screenOrientation must be one of 0, 90, -90, 180, 270")
	}
}

// ValidateLimit bounds the page size of place searches.
func ValidateLimit(limit int) error {
	if limit < 1 || limit > MaxPlacesLimit {
		return errors.New("limit must be between 1 and 50")
	}
	return nil
}

// SanitizeInput removes HTML tags and other potentially dangerous content
func SanitizeInput(input string) string {
	sanitized := htmlTagPattern.ReplaceAllString(input, "")
	return strings.TrimSpace(sanitized)
}

// ValidateCoordinateParams validates an observer position given as lat/lon.
func ValidateCoordinateParams(lat, lon float64) map[string][]string {
	fieldErrors := make(map[string][]string)

	if err := ValidateLatitude(lat); err != nil {
		fieldErrors["lat"] = append(fieldErrors["lat"], err.Error())
	}

	if err := ValidateLongitude(lon); err != nil {
		fieldErrors["lon"] = append(fieldErrors["lon"], err.Error())
	}

	return fieldErrors
}

// ValidateAndSanitizeQuery validates and sanitizes a search query
func ValidateAndSanitizeQuery(query string) (string, error) {
	if err := ValidateQuery(query); err != nil {
		return "", err
	}

	return SanitizeInput(query), nil
}
