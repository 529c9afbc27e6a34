package atcf

import "time"

// Known advisory record types. Decks may carry others (model aids, ensemble
// members); these are the ones callers commonly filter on.
const (
	RecordTypeBest = "BEST" // post-analysis best track
	RecordTypeOFCL = "OFCL" // official NHC forecast
	RecordTypeOFCP = "OFCP"
	RecordTypeHMON = "HMON"
	RecordTypeCARQ = "CARQ"
	RecordTypeHWRF = "HWRF"
)

// FileDeck is the ATCF product category.
type FileDeck string

const (
	DeckAid   FileDeck = "a" // aid/forecast deck
	DeckBest  FileDeck = "b" // best-track deck
	DeckFixed FileDeck = "f" // fix/new-format deck
)

// Mode selects between the historical archive and the realtime feed.
type Mode string

const (
	ModeHistorical Mode = "historical"
	ModeRealtime   Mode = "realtime"
)

// Record is one decoded ATCF advisory line. Nullable fields are pointers;
// nil means the cell was empty, a not-a-number marker, or absent because the
// line was short. Isotach is never nullable: a line without radial wind
// information does not decode at all.
type Record struct {
	Basin                    string    `json:"basin"`
	StormNumber              string    `json:"storm_number"`
	RecordType               string    `json:"record_type"`
	Datetime                 time.Time `json:"datetime"`
	Latitude                 float64   `json:"latitude"`
	Longitude                float64   `json:"longitude"`
	MaxSustainedWindSpeed    *int      `json:"max_sustained_wind_speed"`
	CentralPressure          *int      `json:"central_pressure"`
	DevelopmentLevel         string    `json:"development_level"`
	Isotach                  int       `json:"isotach"`
	Quadrant                 string    `json:"quadrant"`
	RadiusNEQ                *int      `json:"radius_for_NEQ"`
	RadiusSEQ                *int      `json:"radius_for_SEQ"`
	RadiusSWQ                *int      `json:"radius_for_SWQ"`
	RadiusNWQ                *int      `json:"radius_for_NWQ"`
	BackgroundPressure       *int      `json:"background_pressure"`
	RadiusOfLastClosedIsobar *int      `json:"radius_of_last_closed_isobar"`
	RadiusOfMaximumWinds     *int      `json:"radius_of_maximum_winds"`
	Direction                *int      `json:"direction"`
	Speed                    *int      `json:"speed"`
	Name                     string    `json:"name"`
}

// MaxWind returns the maximum sustained wind as a unit-wrapped quantity in
// knots. The second return is false when the cell was absent.
func (r Record) MaxWind() (Quantity, bool) {
	if r.MaxSustainedWindSpeed == nil {
		return Quantity{}, false
	}
	return Quantity{Magnitude: float64(*r.MaxSustainedWindSpeed), Unit: "kt"}, true
}

// Pressure returns the central pressure in millibars. The second return is
// false when the cell was absent.
func (r Record) Pressure() (Quantity, bool) {
	if r.CentralPressure == nil {
		return Quantity{}, false
	}
	return Quantity{Magnitude: float64(*r.CentralPressure), Unit: "mb"}, true
}

// IsotachWind returns the isotach threshold in knots.
func (r Record) IsotachWind() Quantity {
	return Quantity{Magnitude: float64(r.Isotach), Unit: "kt"}
}

// Table is an ordered sequence of decoded records sharing a uniform column
// set. Order reflects input line order exactly.
type Table []Record
