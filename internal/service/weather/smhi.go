package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/emmalund/plantwatch/backend/internal/config"
	"github.com/emmalund/plantwatch/backend/internal/model/location"
	"github.com/emmalund/plantwatch/backend/internal/model/weather"
)

const fetchTimeout = 10 * time.Second

// SMHI point-forecast parameter names.
const (
	paramTemperature   = "t"
	paramHumidity      = "r"
	paramPrecipitation = "pmean"
)

// SMHIClient fetches point forecasts from the SMHI open data API.
type SMHIClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewSMHIClient builds a client with a bounded request timeout so a slow
// forecast service reports failure rather than hanging the coordinating
// action.
func NewSMHIClient(cfg config.WeatherConfig) *SMHIClient {
	return &SMHIClient{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: fetchTimeout},
	}
}

type smhiResponse struct {
	TimeSeries []struct {
		ValidTime  string `json:"validTime"`
		Parameters []struct {
			Name   string    `json:"name"`
			Values []float64 `json:"values"`
		} `json:"parameters"`
	} `json:"timeSeries"`
}

// Fetch retrieves the nearest forecast instant for the coordinate. Any
// failure is returned as a failed snapshot.
func (c *SMHIClient) Fetch(ctx context.Context, coords location.Coordinates) weather.Snapshot {
	url := fmt.Sprintf("%s/api/category/pmp3g/version/2/geotype/point/lon/%.2f/lat/%.2f/data.json",
		c.baseURL, coords.Lon, coords.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("[weather] building request failed: %v", err)
		return weather.Failed("Could not reach weather service.")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[weather] fetch failed: %v", err)
		return weather.Failed("Could not reach weather service.")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[weather] unexpected status %d from %s", resp.StatusCode, url)
		return weather.Failed("Could not reach weather service.")
	}

	var payload smhiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("[weather] decoding response failed: %v", err)
		return weather.Failed("Error reading weather data.")
	}

	if len(payload.TimeSeries) == 0 {
		log.Printf("[weather] response missing timeSeries")
		return weather.Failed("Weather data format error.")
	}

	snapshot := weather.Snapshot{}
	for _, param := range payload.TimeSeries[0].Parameters {
		if len(param.Values) == 0 {
			continue
		}
		switch param.Name {
		case paramTemperature:
			snapshot.Temperature = weather.NewReading(param.Values[0])
		case paramHumidity:
			snapshot.Humidity = weather.NewReading(param.Values[0])
		case paramPrecipitation:
			snapshot.Precipitation = weather.NewReading(param.Values[0])
		}
	}

	log.Printf("[weather] fetched forecast for lat=%.2f lon=%.2f", coords.Lat, coords.Lon)
	return snapshot
}
