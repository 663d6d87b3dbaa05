package plotsource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/ecoplot/internal/domain/plot"
	"github.com/yanqian/ecoplot/pkg/util"
)

// plotWire is the stored JSON shape of a plot. Coordinates and timestamps
// are left loose because older clients wrote them as strings.
type plotWire struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location,omitempty"`
	LastEdited any    `json:"lastEdited,omitempty"`
	Latitude   any    `json:"latitude,omitempty"`
	Longitude  any    `json:"longitude,omitempty"`
}

func decodeJSON(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dst)
}

// decodePlotDocument parses a stored plot. A malformed timestamp is dropped, not fatal.
func decodePlotDocument(data []byte) (plot.PlotDocument, error) {
	var wire plotWire
	if err := decodeJSON(data, &wire); err != nil {
		return plot.PlotDocument{}, fmt.Errorf("decode plot document: %w", err)
	}
	return plot.PlotDocument{
		ID:         wire.ID,
		Name:       wire.Name,
		Location:   wire.Location,
		LastEdited: parseTimestamp(wire.LastEdited),
		Latitude:   wire.Latitude,
		Longitude:  wire.Longitude,
	}, nil
}

func encodePlotDocument(doc plot.PlotDocument) ([]byte, error) {
	wire := plotWire{
		ID:        doc.ID,
		Name:      doc.Name,
		Location:  doc.Location,
		Latitude:  doc.Latitude,
		Longitude: doc.Longitude,
	}
	if !doc.LastEdited.IsZero() {
		wire.LastEdited = doc.LastEdited.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(wire)
}

// decodePlantDocument parses a stored plant. Invalid JSON yields a nil
// document so the domain decoder reports and skips it.
func decodePlantDocument(data []byte) plot.PlantDocument {
	var doc map[string]any
	if err := decodeJSON(data, &doc); err != nil {
		return nil
	}
	return plot.PlantDocument(doc)
}

func parseTimestamp(raw any) time.Time {
	switch v := raw.(type) {
	case string:
		ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}
		}
		return ts.UTC()
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return time.Time{}
		}
		return util.FromUnixMillis(ms)
	default:
		return time.Time{}
	}
}
