package utils

import (
	"fmt"
	"net/url"
	"strconv"
)

// FieldErrors collects validation messages keyed by request parameter.
type FieldErrors map[string][]string

// Add appends a message for the given field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Merge copies every message from other into fe.
func (fe FieldErrors) Merge(other map[string][]string) {
	for field, messages := range other {
		fe[field] = append(fe[field], messages...)
	}
}

func invalidField(key string) string {
	return fmt.Sprintf("Invalid field value for field %q.", key)
}

func missingField(key string) string {
	return fmt.Sprintf("Missing required field %q.", key)
}

// ParseFloatParam retrieves a float64 value from the provided URL query parameters.
// If the key is not present or the value is invalid, it returns 0 and updates the fieldErrors map.
func ParseFloatParam(params url.Values, key string, fieldErrors map[string][]string) (float64, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return 0, fieldErrors
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], invalidField(key))
		return 0, fieldErrors
	}
	return f, fieldErrors
}

// RequireFloatParam is ParseFloatParam for parameters that must be present.
func RequireFloatParam(params url.Values, key string, fieldErrors FieldErrors) float64 {
	if params.Get(key) == "" {
		fieldErrors.Add(key, missingField(key))
		return 0
	}
	f, _ := ParseFloatParam(params, key, fieldErrors)
	return f
}

// ParseOptionalFloatParam returns nil when the parameter is absent.
func ParseOptionalFloatParam(params url.Values, key string, fieldErrors FieldErrors) *float64 {
	if params.Get(key) == "" {
		return nil
	}
	f, err := strconv.ParseFloat(params.Get(key), 64)
	if err != nil {
		fieldErrors.Add(key, invalidField(key))
		return nil
	}
	return &f
}

// ParseBoolParam parses key with strconv.ParseBool, falling back to def when
// the parameter is absent.
func ParseBoolParam(params url.Values, key string, def bool, fieldErrors FieldErrors) bool {
	val := params.Get(key)
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		fieldErrors.Add(key, invalidField(key))
		return def
	}
	return b
}

// ParseIntParam parses an integer parameter, falling back to def when absent.
func ParseIntParam(params url.Values, key string, def int, fieldErrors FieldErrors) int {
	val := params.Get(key)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		fieldErrors.Add(key, invalidField(key))
		return def
	}
	return n
}
