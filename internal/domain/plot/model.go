package plot

import (
	"time"

	"github.com/yanqian/ecoplot/internal/domain/plant"
)

// User owns a set of plots.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Plot is a user-owned piece of land with the plants logged on it.
type Plot struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	LastEdited time.Time      `json:"lastEdited"`
	Location   string         `json:"location"`
	Latitude   *float64       `json:"latitude,omitempty"`
	Longitude  *float64       `json:"longitude,omitempty"`
	Plants     []plant.Record `json:"plants"`
}

// Parcelle is the flattened map view of one plot across all users.
type Parcelle struct {
	Latitude  *float64       `json:"latitude,omitempty"`
	Longitude *float64       `json:"longitude,omitempty"`
	Author    string         `json:"author"`
	Plants    []plant.Record `json:"plants"`
}

// PlotSummary pairs a plot with its per-service averages.
type PlotSummary struct {
	Plot     Plot                        `json:"plot"`
	Averages [plant.ServiceCount]float64 `json:"averages"`
}

// Coordinates is a resolved geographic position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func cloneParcelles(in []Parcelle) []Parcelle {
	out := make([]Parcelle, len(in))
	for i, p := range in {
		out[i] = p
		out[i].Plants = append([]plant.Record(nil), p.Plants...)
	}
	return out
}
