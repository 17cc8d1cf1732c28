package weather

import (
	"encoding/json"
	"fmt"
)

// unavailableJSON is what the dashboard renders for a reading that could not
// be fetched.
const unavailableJSON = `"N/A"`

// Reading is a single meteorological value that is either a number or
// unavailable.
type Reading struct {
	value float64
	valid bool
}

// NewReading wraps a fetched numeric value.
func NewReading(v float64) Reading {
	return Reading{value: v, valid: true}
}

// Unavailable returns the zero reading.
func Unavailable() Reading {
	return Reading{}
}

// Value reports the numeric value and whether one is present.
func (r Reading) Value() (float64, bool) {
	return r.value, r.valid
}

// MarshalJSON renders the number, or "N/A" when the reading is unavailable.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return []byte(unavailableJSON), nil
	}
	return json.Marshal(r.value)
}

// UnmarshalJSON accepts either a number or the "N/A" marker.
func (r *Reading) UnmarshalJSON(data []byte) error {
	if string(data) == unavailableJSON || string(data) == "null" {
		*r = Reading{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid weather reading %s: %w", data, err)
	}
	*r = NewReading(v)
	return nil
}

// Snapshot is an immutable weather observation for one location. It is
// replaced wholesale on every fetch, never patched field by field. A fetch
// failure is still a valid, displayable snapshot carrying Err.
type Snapshot struct {
	Temperature   Reading `json:"temperature"`
	Humidity      Reading `json:"humidity"`
	Precipitation Reading `json:"precipitation"`
	Err           string  `json:"error,omitempty"`
}

// New builds a successful snapshot.
func New(temperature, humidity, precipitation float64) Snapshot {
	return Snapshot{
		Temperature:   NewReading(temperature),
		Humidity:      NewReading(humidity),
		Precipitation: NewReading(precipitation),
	}
}

// Empty is the pre-fetch snapshot a fresh session starts with.
func Empty() Snapshot {
	return Snapshot{}
}

// Failed captures a fetch failure as data.
func Failed(msg string) Snapshot {
	return Snapshot{Err: msg}
}

// OK reports whether the snapshot came from a successful fetch.
func (s Snapshot) OK() bool {
	return s.Err == ""
}
