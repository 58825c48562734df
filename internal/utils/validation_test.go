package utils

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePlaceName(t *testing.T) {
	tests := []struct {
		name    string
		place   string
		wantErr bool
		errMsg  string
	}{
		{name: "simple name", place: "Cairo"},
		{name: "name with space", place: "Kuala Lumpur"},
		{name: "name with apostrophe and hyphen", place: "N'Djamena-Centre"},
		{name: "non latin script", place: "القاهرة"},
		{name: "accented", place: "Bogotá"},
		{name: "empty", place: "", wantErr: true, errMsg: "place name cannot be empty"},
		{name: "blank", place: "   ", wantErr: true, errMsg: "place name cannot be empty"},
		{name: "too long", place: strings.Repeat("a", 101), wantErr: true, errMsg: "place name too long"},
		{name: "script tag", place: "Cairo<script>", wantErr: true, errMsg: "invalid characters"},
		{name: "sql comment", place: "Cairo'; DROP TABLE places; --", wantErr: true, errMsg: "invalid characters"},
		{name: "path traversal", place: "../../etc/passwd", wantErr: true, errMsg: "invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlaceName(tt.place)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
		errMsg  string
	}{
		{name: "valid simple query", query: "mec"},
		{name: "valid query with spaces", query: "kuala lum"},
		{name: "empty query is valid", query: ""},
		{name: "query too long", query: strings.Repeat("a", 201), wantErr: true, errMsg: "query too long (max 200 characters)"},
		{name: "query with punctuation", query: "St. John's", wantErr: false},
		{name: "query with script tags", query: "<script>alert('xss')</script>", wantErr: true, errMsg: "query contains invalid characters"},
		{name: "query with SQL injection", query: "'; DROP TABLE places; --", wantErr: true, errMsg: "query contains invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLatitudeAndLongitude(t *testing.T) {
	assert.NoError(t, ValidateLatitude(90))
	assert.NoError(t, ValidateLatitude(-90))
	assert.EqualError(t, ValidateLatitude(90.1), "latitude must be between -90 and 90")
	assert.EqualError(t, ValidateLatitude(math.NaN()), "latitude must be a finite number")

	assert.NoError(t, ValidateLongitude(180))
	assert.NoError(t, ValidateLongitude(-180))
	assert.EqualError(t, ValidateLongitude(-180.5), "longitude must be between -180 and 180")
	assert.EqualError(t, ValidateLongitude(math.Inf(-1)), "longitude must be a finite number")
}

func TestValidateAngle(t *testing.T) {
	assert.NoError(t, ValidateAngle(0))
	assert.NoError(t, ValidateAngle(359.9))
	assert.NoError(t, ValidateAngle(-45))
	assert.Error(t, ValidateAngle(math.NaN()))
	assert.Error(t, ValidateAngle(math.Inf(1)))
}

func TestValidateScreenOrientation(t *testing.T) {
	for _, deg := range []int{0, 90, -90, 180, -180, 270} {
		assert.NoError(t, ValidateScreenOrientation(deg), "%d should be accepted", deg)
	}
	for _, deg := range []int{45, 360, -270} {
		assert.Error(t, ValidateScreenOrientation(deg), "%d should be rejected", deg)
	}
}

func TestValidateLimit(t *testing.T) {
	assert.NoError(t, ValidateLimit(1))
	assert.NoError(t, ValidateLimit(MaxPlacesLimit))
	assert.Error(t, ValidateLimit(0))
	assert.Error(t, ValidateLimit(MaxPlacesLimit+1))
}

func TestValidateCoordinateParams(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.Empty(t, ValidateCoordinateParams(30.03, 31.23))
	})

	t.Run("both invalid", func(t *testing.T) {
		fieldErrors := ValidateCoordinateParams(91, 200)
		assert.Equal(t, []string{"latitude must be between -90 and 90"}, fieldErrors["lat"])
		assert.Equal(t, []string{"longitude must be between -180 and 180"}, fieldErrors["lon"])
	})
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Cairo", SanitizeInput("  <b>Cairo</b> "))
	assert.Equal(t, "alert('x')", SanitizeInput("<script>alert('x')</script>"))
}

func TestValidateAndSanitizeQuery(t *testing.T) {
	q, err := ValidateAndSanitizeQuery("  jed ")
	assert.NoError(t, err)
	assert.Equal(t, "jed", q)

	_, err = ValidateAndSanitizeQuery("<b>jed</b>")
	assert.Error(t, err)
}
