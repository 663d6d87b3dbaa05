package plot

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/yanqian/ecoplot/internal/domain/plant"
)

// UnknownName is substituted when a plant document carries no usable name.
const UnknownName = "unknown"

var (
	errNilDocument = errors.New("plant document is nil")
	errMissingID   = errors.New("plot document has no id")
)

// DecodeReport lists the fields that fell back to defaults.
type DecodeReport struct {
	Defaulted []string
}

func (r *DecodeReport) add(field string) {
	r.Defaulted = append(r.Defaulted, field)
}

// DecodePlant turns a raw plant document into a record. Every field has one
// fallback rule:
//   - name: commonName, else scientificName, else "unknown"
//   - serviceValues, reliabilityValues: three numbers, -1 per missing or
//     non-numeric element, all -1 when the list is absent or not length 3
//   - culturalConditions: three strings, "" per missing or non-string element
func DecodePlant(doc PlantDocument) (plant.Record, DecodeReport, error) {
	var report DecodeReport
	if doc == nil {
		return plant.Record{}, report, errNilDocument
	}

	name := firstNonBlank(stringField(doc, FieldCommonName), stringField(doc, FieldScientificName))
	if name == "" {
		name = UnknownName
		report.add("name")
	}
	rec := plant.NewRecord(name)
	rec.Services = decodeNumbers(doc[FieldServiceValues], FieldServiceValues, &report)
	rec.Reliabilities = decodeNumbers(doc[FieldReliabilityValues], FieldReliabilityValues, &report)
	rec.Conditions = decodeStrings(doc[FieldCulturalConditions], FieldCulturalConditions, &report)
	return rec, report, nil
}

// DecodePlot validates a plot document. Plants are attached by the caller.
func DecodePlot(doc PlotDocument) (Plot, error) {
	id := strings.TrimSpace(doc.ID)
	if id == "" {
		return Plot{}, errMissingID
	}
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		name = UnknownName
	}
	p := Plot{
		ID:         id,
		Name:       name,
		Location:   doc.Location,
		LastEdited: doc.LastEdited,
	}
	if lat, ok := toFloat(doc.Latitude); ok {
		p.Latitude = &lat
	}
	if lng, ok := toFloat(doc.Longitude); ok {
		p.Longitude = &lng
	}
	return p, nil
}

func decodeNumbers(raw any, field string, report *DecodeReport) [plant.ServiceCount]float64 {
	out := [plant.ServiceCount]float64{plant.Unmeasured, plant.Unmeasured, plant.Unmeasured}
	items, ok := asList(raw)
	if !ok || len(items) != plant.ServiceCount {
		report.add(field)
		return out
	}
	for i, item := range items {
		v, ok := toFloat(item)
		if !ok {
			report.add(field + "[" + strconv.Itoa(i) + "]")
			continue
		}
		out[i] = v
	}
	return out
}

func decodeStrings(raw any, field string, report *DecodeReport) [plant.ServiceCount]string {
	var out [plant.ServiceCount]string
	items, ok := asList(raw)
	if !ok || len(items) != plant.ServiceCount {
		report.add(field)
		return out
	}
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			report.add(field + "[" + strconv.Itoa(i) + "]")
			continue
		}
		out[i] = s
	}
	return out
}

func asList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []float64:
		out := make([]any, len(v))
		for i, f := range v {
			out[i] = f
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloat(raw any) (float64, bool) {
	var (
		v  float64
		ok = true
	)
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		v, ok = f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		v, ok = f, err == nil
	default:
		ok = false
	}
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func stringField(doc PlantDocument, key string) string {
	s, _ := doc[key].(string)
	return s
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
