package weather

import (
	"context"

	"github.com/emmalund/plantwatch/backend/internal/model/location"
	"github.com/emmalund/plantwatch/backend/internal/model/weather"
)

// Fetcher retrieves the current weather for a coordinate. The call is total:
// network, timeout, and malformed-payload failures are captured in the
// returned snapshot, never surfaced as an error.
type Fetcher interface {
	Fetch(ctx context.Context, coords location.Coordinates) weather.Snapshot
}
