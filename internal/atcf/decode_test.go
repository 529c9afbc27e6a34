package atcf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 17-field best-track line for Hurricane Katrina (AL092005).
const bestTrackLine = "AL, 09, 2005082912, , BEST, 0, 241N, 0800W, 65, 1000, TS, 34, NEQ, 120, 90, 60, 90"

// 20-field forecast line: background pressure, radius of last closed
// isobar, and radius of maximum winds are present.
const longForecastLine = "AL, 09, 2005082912, , OFCL, 12, 266N, 0891W, 125, 935, HU, 34, NEQ, 200, 200, 150, 175, 1008, 250, 20"

// 28-field line: direction, speed, and storm name are present.
const fullBestTrackLine = "AL, 09, 2005082912, , BEST, 0, 241N, 0800W, 65, 1000, TS, 34, NEQ, 120, 90, 60, 90, 1008, 250, 20, 80, 0, L, 0, , 270, 10, KATRINA"

func intp(v int) *int { return &v }

func TestDecodeLine_SeventeenFields(t *testing.T) {
	rec, err := decodeLine(bestTrackLine, 1)
	require.NoError(t, err)

	assert.Equal(t, "AL", rec.Basin)
	assert.Equal(t, "09", rec.StormNumber)
	assert.Equal(t, "BEST", rec.RecordType)
	assert.Equal(t, time.Date(2005, 8, 29, 12, 0, 0, 0, time.UTC), rec.Datetime)
	assert.Equal(t, 24.1, rec.Latitude)
	assert.Equal(t, -80.0, rec.Longitude)
	assert.Equal(t, intp(65), rec.MaxSustainedWindSpeed)
	assert.Equal(t, intp(1000), rec.CentralPressure)
	assert.Equal(t, "TS", rec.DevelopmentLevel)
	assert.Equal(t, 34, rec.Isotach)
	assert.Equal(t, "NEQ", rec.Quadrant)
	assert.Equal(t, intp(120), rec.RadiusNEQ)
	assert.Equal(t, intp(90), rec.RadiusSEQ)
	assert.Equal(t, intp(60), rec.RadiusSWQ)
	assert.Equal(t, intp(90), rec.RadiusNWQ)

	// Optional trailing fields are explicitly absent, not zero.
	assert.Nil(t, rec.BackgroundPressure)
	assert.Nil(t, rec.RadiusOfLastClosedIsobar)
	assert.Nil(t, rec.RadiusOfMaximumWinds)
	assert.Nil(t, rec.Direction)
	assert.Nil(t, rec.Speed)
	assert.Empty(t, rec.Name)
}

func TestDecodeLine_LongForecastLine(t *testing.T) {
	rec, err := decodeLine(longForecastLine, 1)
	require.NoError(t, err)

	// forecast-hours 12 applied to the 2005-08-29T12:00 base.
	assert.Equal(t, time.Date(2005, 8, 30, 0, 0, 0, 0, time.UTC), rec.Datetime)
	assert.Equal(t, intp(1008), rec.BackgroundPressure)
	assert.Equal(t, intp(250), rec.RadiusOfLastClosedIsobar)
	assert.Equal(t, intp(20), rec.RadiusOfMaximumWinds)
	assert.Nil(t, rec.Direction)
	assert.Nil(t, rec.Speed)
}

func TestDecodeLine_FullLine(t *testing.T) {
	rec, err := decodeLine(fullBestTrackLine, 1)
	require.NoError(t, err)

	assert.Equal(t, intp(270), rec.Direction)
	assert.Equal(t, intp(10), rec.Speed)
	assert.Equal(t, "KATRINA", rec.Name)
}

func TestDecodeLine_Coordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lon     string
		wantLat float64
		wantLon float64
	}{
		{"north west", "241N", "0800W", 24.1, -80.0},
		{"south east", "241S", "0800E", -24.1, 80.0},
		{"equator", "0N", "1800W", 0, -180.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := "AL, 09, 2005082912, , BEST, 0, " + tt.lat + ", " + tt.lon +
				", 65, 1000, TS, 34, NEQ, 120, 90, 60, 90"
			rec, err := decodeLine(line, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLat, rec.Latitude)
			assert.Equal(t, tt.wantLon, rec.Longitude)
		})
	}
}

func TestDecodeLine_CoordinateErrors(t *testing.T) {
	tests := []struct {
		name  string
		lat   string
		lon   string
		field string
	}{
		{"latitude missing hemisphere", "241", "0800W", "latitude"},
		{"latitude not numeric", "abcN", "0800W", "latitude"},
		{"latitude out of range", "950N", "0800W", "latitude"},
		{"longitude missing hemisphere", "241N", "0800", "longitude"},
		{"longitude out of range", "241N", "1850W", "longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := "AL, 09, 2005082912, , BEST, 0, " + tt.lat + ", " + tt.lon +
				", 65, 1000, TS, 34, NEQ, 120, 90, 60, 90"
			_, err := decodeLine(line, 3)

			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
			assert.Equal(t, 3, fieldErr.Line)
		})
	}
}

func TestDecodeLine_Timestamps(t *testing.T) {
	tests := []struct {
		name          string
		recordType    string
		minutes       string
		forecastHours string
		want          time.Time
	}{
		{"base hour, zero offset", "OFCL", "", "0", time.Date(2005, 8, 29, 12, 0, 0, 0, time.UTC)},
		{"forecast hours roll the day", "OFCL", "", "12", time.Date(2005, 8, 30, 0, 0, 0, 0, time.UTC)},
		{"BEST minute offset", "BEST", "30", "0", time.Date(2005, 8, 29, 12, 30, 0, 0, time.UTC)},
		{"minute field ignored for non-BEST", "OFCL", "30", "0", time.Date(2005, 8, 29, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := "AL, 09, 2005082912, " + tt.minutes + ", " + tt.recordType + ", " +
				tt.forecastHours + ", 241N, 0800W, 65, 1000, TS, 34, NEQ, 120, 90, 60, 90"
			rec, err := decodeLine(line, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Datetime)
		})
	}
}

func TestDecodeLine_TimestampErrors(t *testing.T) {
	t.Run("unparsable base timestamp", func(t *testing.T) {
		line := "AL, 09, not-a-date, , BEST, 0, 241N, 0800W, 65, 1000, TS, 34, NEQ, 120, 90, 60, 90"
		_, err := decodeLine(line, 7)

		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "datetime", fieldErr.Field)
		assert.Equal(t, 7, fieldErr.Line)
		assert.Equal(t, "not-a-date", fieldErr.Value)
	})

	t.Run("unparsable forecast hours", func(t *testing.T) {
		line := "AL, 09, 2005082912, , OFCL, twelve, 241N, 0800W, 65, 1000, TS, 34, NEQ, 120, 90, 60, 90"
		_, err := decodeLine(line, 2)

		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "forecast_hours", fieldErr.Field)
	})
}

func TestDecodeLine_Isotach(t *testing.T) {
	t.Run("blank isotach is fatal", func(t *testing.T) {
		line := "AL, 09, 2005082912, , BEST, 0, 241N, 0800W, 65, 1000, TS, , NEQ, 120, 90, 60, 90"
		_, err := decodeLine(line, 4)

		var radialErr *MissingRadialWindError
		require.ErrorAs(t, err, &radialErr)
		assert.Equal(t, 4, radialErr.Line)
		assert.Contains(t, err.Error(), "parametric wind model cannot be built")
	})

	t.Run("non-numeric isotach is fatal", func(t *testing.T) {
		line := "AL, 09, 2005082912, , BEST, 0, 241N, 0800W, 65, 1000, TS, XX, NEQ, 120, 90, 60, 90"
		_, err := decodeLine(line, 1)

		var radialErr *MissingRadialWindError
		require.ErrorAs(t, err, &radialErr)
	})
}

func TestDecodeLine_NullableCells(t *testing.T) {
	// Empty wind speed, pressure, and quadrant radii decode to nil.
	line := "AL, 09, 2005082912, , BEST, 0, 241N, 0800W, , , TS, 34, NEQ, , , , "
	rec, err := decodeLine(line, 1)
	require.NoError(t, err)

	assert.Nil(t, rec.MaxSustainedWindSpeed)
	assert.Nil(t, rec.CentralPressure)
	assert.Nil(t, rec.RadiusNEQ)
	assert.Nil(t, rec.RadiusSEQ)
	assert.Nil(t, rec.RadiusSWQ)
	assert.Nil(t, rec.RadiusNWQ)
}

func TestDecodeLine_TooFewFields(t *testing.T) {
	_, err := decodeLine("AL, 09, 2005082912, , BEST", 5)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, 5, fieldErr.Line)
}

func TestSplitLine_StripsEscapes(t *testing.T) {
	fields := splitLine(`AL, 09\n, BEST `)
	assert.Equal(t, []string{"AL", "09", "BEST"}, fields)
}

func TestRecordQuantities(t *testing.T) {
	rec, err := decodeLine(bestTrackLine, 1)
	require.NoError(t, err)

	wind, ok := rec.MaxWind()
	require.True(t, ok)
	assert.Equal(t, "65 kt", wind.String())

	pressure, ok := rec.Pressure()
	require.True(t, ok)
	assert.Equal(t, "1000 mb", pressure.String())

	assert.Equal(t, 34, rec.IsotachWind().Int())

	var absent Record
	_, ok = absent.MaxWind()
	assert.False(t, ok)
	_, ok = absent.Pressure()
	assert.False(t, ok)
}
