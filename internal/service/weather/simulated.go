package weather

import (
	"context"
	"log"
	"math"

	"github.com/emmalund/plantwatch/backend/internal/model/location"
	"github.com/emmalund/plantwatch/backend/internal/model/weather"
)

// Simulated produces plausible fake readings derived from the coordinate, so
// the dashboard can be exercised without network access. Deterministic per
// location.
type Simulated struct{}

func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Fetch(_ context.Context, coords location.Coordinates) weather.Snapshot {
	log.Printf("[weather] simulated fetch for lat=%.2f lon=%.2f", coords.Lat, coords.Lon)
	seed := math.Abs(coords.Lat) + math.Abs(coords.Lon)
	temp := math.Round((5+math.Mod(seed, 15))*10) / 10
	humidity := math.Round(55 + math.Mod(seed*3, 35))
	precip := math.Round(math.Mod(seed, 4)*10) / 10
	return weather.New(temp, humidity, precip)
}
