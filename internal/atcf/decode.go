package atcf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// minFields is the shortest decodable line: positions 0-16 are mandatory.
const minFields = 17

// timeLayout parses the base timestamp plus the minute offset, "YYYYMMDDHHMM".
const timeLayout = "200601021504"

// splitLine splits a raw advisory line into whitespace-trimmed fields.
// Literal backslash-n escape sequences, which appear in some redistributed
// decks, are stripped from every field before trimming.
func splitLine(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(strings.ReplaceAll(f, `\n`, ""))
	}
	return fields
}

// decodeLine decodes one raw advisory line into a Record. It never returns
// a partial record: any mandatory field that fails to parse fails the line.
func decodeLine(line string, lineNo int) (Record, error) {
	fields := splitLine(line)
	if len(fields) < minFields {
		return Record{}, &FieldError{
			Field: "line",
			Line:  lineNo,
			Value: line,
			Err:   fmt.Errorf("expected at least %d comma-delimited fields, got %d", minFields, len(fields)),
		}
	}

	rec := Record{
		Basin:       fields[0],
		StormNumber: fields[1],
		RecordType:  fields[4],
	}

	// Only BEST-track records carry sub-hour precision; the minute field is
	// ignored for every other record type even when populated.
	minutes := "00"
	if rec.RecordType == RecordTypeBest && fields[3] != "" {
		minutes = fields[3]
	}
	ts, err := time.Parse(timeLayout, fields[2]+minutes)
	if err != nil {
		return Record{}, &FieldError{Field: "datetime", Line: lineNo, Value: fields[2], Err: err}
	}

	forecastHours, err := strconv.Atoi(fields[5])
	if err != nil {
		return Record{}, &FieldError{Field: "forecast_hours", Line: lineNo, Value: fields[5], Err: err}
	}
	if forecastHours != 0 {
		ts = ts.Add(time.Duration(forecastHours) * time.Hour)
	}
	rec.Datetime = ts

	rec.Latitude, err = hemisphereCoord(fields[6], "N", "S", 90)
	if err != nil {
		return Record{}, &FieldError{Field: "latitude", Line: lineNo, Value: fields[6], Err: err}
	}
	rec.Longitude, err = hemisphereCoord(fields[7], "E", "W", 180)
	if err != nil {
		return Record{}, &FieldError{Field: "longitude", Line: lineNo, Value: fields[7], Err: err}
	}

	rec.MaxSustainedWindSpeed, err = nullIntField(fields[8], "max_sustained_wind_speed", lineNo)
	if err != nil {
		return Record{}, err
	}
	rec.CentralPressure, err = nullIntField(fields[9], "central_pressure", lineNo)
	if err != nil {
		return Record{}, err
	}
	rec.DevelopmentLevel = fields[10]

	// Isotach is the sole field with no nullable fallback.
	isotach, err := nullInt(fields[11])
	if err != nil || isotach == nil {
		return Record{}, &MissingRadialWindError{Line: lineNo}
	}
	rec.Isotach = *isotach

	rec.Quadrant = fields[12]
	rec.RadiusNEQ, err = nullIntField(fields[13], "radius_for_NEQ", lineNo)
	if err != nil {
		return Record{}, err
	}
	rec.RadiusSEQ, err = nullIntField(fields[14], "radius_for_SEQ", lineNo)
	if err != nil {
		return Record{}, err
	}
	rec.RadiusSWQ, err = nullIntField(fields[15], "radius_for_SWQ", lineNo)
	if err != nil {
		return Record{}, err
	}
	rec.RadiusNWQ, err = nullIntField(fields[16], "radius_for_NWQ", lineNo)
	if err != nil {
		return Record{}, err
	}

	if len(fields) > 18 {
		rec.BackgroundPressure, err = nullIntField(fields[17], "background_pressure", lineNo)
		if err != nil {
			return Record{}, err
		}
		rec.RadiusOfLastClosedIsobar, err = nullIntField(fields[18], "radius_of_last_closed_isobar", lineNo)
		if err != nil {
			return Record{}, err
		}
		rec.RadiusOfMaximumWinds, err = nullIntField(fieldAt(fields, 19), "radius_of_maximum_winds", lineNo)
		if err != nil {
			return Record{}, err
		}
	}

	if len(fields) > 23 {
		rec.Direction, err = nullIntField(fieldAt(fields, 25), "direction", lineNo)
		if err != nil {
			return Record{}, err
		}
		rec.Speed, err = nullIntField(fieldAt(fields, 26), "speed", lineNo)
		if err != nil {
			return Record{}, err
		}
	}

	if len(fields) > 27 {
		rec.Name = fields[27]
	}

	return rec, nil
}

// nullIntField wraps nullInt with field/line context for error reporting.
func nullIntField(cell, field string, lineNo int) (*int, error) {
	v, err := nullInt(cell)
	if err != nil {
		return nil, &FieldError{Field: field, Line: lineNo, Value: cell, Err: err}
	}
	return v, nil
}

// fieldAt returns the field at position i, or an empty cell when the line
// is too short. An empty cell decodes to nil downstream.
func fieldAt(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return fields[i]
}

// hemisphereCoord decodes a coordinate cell: a numeric prefix in tenths of
// degrees followed by a hemisphere suffix. pos maps to a positive sign and
// neg to a negative one. The scaled value must lie within ±limit degrees.
func hemisphereCoord(cell, pos, neg string, limit float64) (float64, error) {
	sign := 1.0
	switch {
	case strings.Contains(cell, pos):
		cell = strings.Trim(cell, pos)
	case strings.Contains(cell, neg):
		sign = -1.0
		cell = strings.Trim(cell, neg)
	default:
		return 0, fmt.Errorf("missing hemisphere suffix %s or %s", pos, neg)
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, err
	}
	v = sign * v / 10
	if v < -limit || v > limit {
		return 0, fmt.Errorf("%g out of range ±%g degrees", v, limit)
	}
	return v, nil
}
