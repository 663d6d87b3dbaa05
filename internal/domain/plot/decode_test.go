package plot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodePlantWellFormed(t *testing.T) {
	rec, report, err := DecodePlant(PlantDocument{
		FieldCommonName:         "Trèfle",
		FieldScientificName:     "Trifolium repens",
		FieldServiceValues:      []any{0.9, 0.2, json.Number("0.4")},
		FieldReliabilityValues:  []any{1, int64(0), "0.5"},
		FieldCulturalConditions: []any{"Prairie", "", "Sol frais"},
	})
	require.NoError(t, err)
	require.Empty(t, report.Defaulted)
	require.Equal(t, "Trèfle", rec.Name)
	require.Equal(t, [3]float64{0.9, 0.2, 0.4}, rec.Services)
	require.Equal(t, [3]float64{1, 0, 0.5}, rec.Reliabilities)
	require.Equal(t, [3]string{"Prairie", "", "Sol frais"}, rec.Conditions)
}

func TestDecodePlantDefaults(t *testing.T) {
	rec, report, err := DecodePlant(PlantDocument{
		FieldScientificName:     "Salix alba",
		FieldServiceValues:      []any{0.3, "n/a", nil},
		FieldReliabilityValues:  []any{0.1, 0.2},
		FieldCulturalConditions: []any{"Berges", 7, nil},
	})
	require.NoError(t, err)
	require.Equal(t, "Salix alba", rec.Name)
	require.Equal(t, [3]float64{0.3, -1, -1}, rec.Services)
	require.Equal(t, [3]float64{-1, -1, -1}, rec.Reliabilities)
	require.Equal(t, [3]string{"Berges", "", ""}, rec.Conditions)
	require.Contains(t, report.Defaulted, FieldReliabilityValues)
	require.Contains(t, report.Defaulted, "serviceValues[1]")
}

func TestDecodePlantEmptyDocument(t *testing.T) {
	rec, report, err := DecodePlant(PlantDocument{})
	require.NoError(t, err)
	require.Equal(t, UnknownName, rec.Name)
	require.Equal(t, [3]float64{-1, -1, -1}, rec.Services)
	require.Len(t, report.Defaulted, 4)

	_, _, err = DecodePlant(nil)
	require.Error(t, err)
}

func TestDecodePlot(t *testing.T) {
	edited := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p, err := DecodePlot(PlotDocument{ID: " p1 ", Name: "Potager", LastEdited: edited, Latitude: 45.76, Longitude: "4.84"})
	require.NoError(t, err)
	require.Equal(t, "p1", p.ID)
	require.Equal(t, "Potager", p.Name)
	require.Equal(t, edited, p.LastEdited)
	require.NotNil(t, p.Latitude)
	require.Equal(t, 45.76, *p.Latitude)
	require.Equal(t, 4.84, *p.Longitude)

	p, err = DecodePlot(PlotDocument{ID: "p2", Latitude: "north"})
	require.NoError(t, err)
	require.Equal(t, UnknownName, p.Name)
	require.Nil(t, p.Latitude)
	require.Nil(t, p.Longitude)

	_, err = DecodePlot(PlotDocument{Name: "orphan"})
	require.Error(t, err)
}
