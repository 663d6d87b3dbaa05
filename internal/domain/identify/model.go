package identify

import "github.com/yanqian/ecoplot/internal/domain/plant"

// Image is an uploaded photo to identify.
type Image struct {
	Filename string
	MimeType string
	Organ    string
	Content  []byte
}

// Candidate is one ranked answer from the identification provider.
type Candidate struct {
	ScientificName string  `json:"scientificName"`
	Score          float64 `json:"score"`
}

// Result is the top candidate joined with its catalog entry, when known.
type Result struct {
	ScientificName string        `json:"scientificName"`
	Score          float64       `json:"score"`
	InCatalog      bool          `json:"inCatalog"`
	Plant          *plant.Record `json:"plant,omitempty"`
}

// Organs accepted by the provider.
var Organs = map[string]struct{}{
	"auto":   {},
	"leaf":   {},
	"flower": {},
	"fruit":  {},
	"bark":   {},
}
