package plot

import (
	"context"
	"time"

	"github.com/yanqian/ecoplot/pkg/metrics"
)

// Source is the remote per-user, per-plot, per-plant document store.
type Source interface {
	ListUsers(ctx context.Context) ([]User, error)
	// ListPlots returns a user's plots ordered by last edit, newest first.
	ListPlots(ctx context.Context, userID string) ([]PlotDocument, error)
	ListPlants(ctx context.Context, userID, plotID string) ([]PlantDocument, error)
}

// Geocoder resolves free text to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]Coordinates, error)
}

// PlotDocument is a plot as stored remotely. Coordinates stay untyped
// until decoded.
type PlotDocument struct {
	ID         string
	Name       string
	Location   string
	LastEdited time.Time
	Latitude   any
	Longitude  any
}

// PlantDocument is a plant as stored remotely; any field may be missing or
// of the wrong shape.
type PlantDocument map[string]any

// Field names used by PlantDocument.
const (
	FieldCommonName         = "commonName"
	FieldScientificName     = "scientificName"
	FieldServiceValues      = "serviceValues"
	FieldReliabilityValues  = "reliabilityValues"
	FieldCulturalConditions = "culturalConditions"
)

// Observer receives fetch outcomes. Implementations must be safe for concurrent use.
type Observer interface {
	ObserveFetch(operation string, success bool, stats metrics.FetchStats)
}

type noopObserver struct{}

func (noopObserver) ObserveFetch(string, bool, metrics.FetchStats) {}
