package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloatParam(t *testing.T) {
	params := url.Values{"lat": {"30.5"}, "lon": {"abc"}}

	lat, fieldErrors := ParseFloatParam(params, "lat", nil)
	assert.Equal(t, 30.5, lat)
	assert.Empty(t, fieldErrors)

	lon, fieldErrors := ParseFloatParam(params, "lon", fieldErrors)
	assert.Equal(t, 0.0, lon)
	assert.Equal(t, []string{`Invalid field value for field "lon".`}, fieldErrors["lon"])

	missing, fieldErrors := ParseFloatParam(params, "alpha", fieldErrors)
	assert.Equal(t, 0.0, missing)
	assert.NotContains(t, fieldErrors, "alpha")
}

func TestRequireFloatParam(t *testing.T) {
	fieldErrors := FieldErrors{}
	params := url.Values{"lat": {"21.4"}}

	assert.Equal(t, 21.4, RequireFloatParam(params, "lat", fieldErrors))
	assert.Equal(t, 0.0, RequireFloatParam(params, "lon", fieldErrors))
	assert.Equal(t, []string{`Missing required field "lon".`}, fieldErrors["lon"])
	assert.NotContains(t, fieldErrors, "lat")
}

func TestParseOptionalFloatParam(t *testing.T) {
	fieldErrors := FieldErrors{}
	params := url.Values{"alpha": {"90"}, "webkitCompassHeading": {"north"}}

	alpha := ParseOptionalFloatParam(params, "alpha", fieldErrors)
	require.NotNil(t, alpha)
	assert.Equal(t, 90.0, *alpha)

	assert.Nil(t, ParseOptionalFloatParam(params, "missing", fieldErrors))
	assert.Nil(t, ParseOptionalFloatParam(params, "webkitCompassHeading", fieldErrors))
	assert.Contains(t, fieldErrors, "webkitCompassHeading")
}

func TestParseBoolParam(t *testing.T) {
	fieldErrors := FieldErrors{}
	params := url.Values{"absolute": {"true"}, "bad": {"perhaps"}}

	assert.True(t, ParseBoolParam(params, "absolute", false, fieldErrors))
	assert.True(t, ParseBoolParam(params, "missing", true, fieldErrors))
	assert.False(t, ParseBoolParam(params, "bad", false, fieldErrors))
	assert.Contains(t, fieldErrors, "bad")
	assert.Len(t, fieldErrors, 1)
}

func TestParseIntParam(t *testing.T) {
	fieldErrors := FieldErrors{}
	params := url.Values{"limit": {"5"}, "screenOrientation": {"ninety"}}

	assert.Equal(t, 5, ParseIntParam(params, "limit", 10, fieldErrors))
	assert.Equal(t, 10, ParseIntParam(params, "missing", 10, fieldErrors))
	assert.Equal(t, 0, ParseIntParam(params, "screenOrientation", 0, fieldErrors))
	assert.Contains(t, fieldErrors, "screenOrientation")
}

func TestFieldErrorsMerge(t *testing.T) {
	fieldErrors := FieldErrors{"lat": {"a"}}
	fieldErrors.Merge(map[string][]string{"lat": {"b"}, "lon": {"c"}})

	assert.Equal(t, []string{"a", "b"}, fieldErrors["lat"])
	assert.Equal(t, []string{"c"}, fieldErrors["lon"])
}
