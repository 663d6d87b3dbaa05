package plotsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/ecoplot/internal/domain/plot"
	"github.com/yanqian/ecoplot/pkg/util"
)

type memoryPlot struct {
	doc    plot.PlotDocument
	plants []plot.PlantDocument
}

// MemorySource keeps plot documents in process memory. Useful for tests and local dev.
type MemorySource struct {
	mu    sync.RWMutex
	users []plot.User
	plots map[string][]memoryPlot
}

// NewMemorySource constructs an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{plots: make(map[string][]memoryPlot)}
}

// AddUser registers a user; re-adding an ID renames it.
func (s *MemorySource) AddUser(user plot.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == user.ID {
			s.users[i].Name = user.Name
			return
		}
	}
	s.users = append(s.users, user)
}

// AddPlot stores a plot for userID, assigning an ID and edit time when missing.
func (s *MemorySource) AddPlot(userID string, doc plot.PlotDocument, plants ...plot.PlantDocument) string {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.LastEdited.IsZero() {
		doc.LastEdited = util.NowUTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plots[userID] = append(s.plots[userID], memoryPlot{doc: doc, plants: plants})
	return doc.ID
}

// ListUsers implements plot.Source.
func (s *MemorySource) ListUsers(_ context.Context) ([]plot.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]plot.User(nil), s.users...), nil
}

// ListPlots implements plot.Source.
func (s *MemorySource) ListPlots(_ context.Context, userID string) ([]plot.PlotDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.plots[userID]
	out := make([]plot.PlotDocument, 0, len(stored))
	for _, p := range stored {
		out = append(out, p.doc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastEdited.After(out[j].LastEdited)
	})
	return out, nil
}

// ListPlants implements plot.Source.
func (s *MemorySource) ListPlants(_ context.Context, userID, plotID string) ([]plot.PlantDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.plots[userID] {
		if p.doc.ID == plotID {
			return append([]plot.PlantDocument(nil), p.plants...), nil
		}
	}
	return nil, fmt.Errorf("plot %s/%s not found", userID, plotID)
}

type seedFile struct {
	Users []struct {
		ID    string            `json:"id"`
		Name  string            `json:"name"`
		Plots []json.RawMessage `json:"plots"`
	} `json:"users"`
}

// LoadSeed imports users, plots and plants from a JSON seed document.
func (s *MemorySource) LoadSeed(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}
	for _, u := range seed.Users {
		s.AddUser(plot.User{ID: u.ID, Name: u.Name})
		for _, raw := range u.Plots {
			doc, err := decodePlotDocument(raw)
			if err != nil {
				return err
			}
			var withPlants struct {
				Plants []json.RawMessage `json:"plants"`
			}
			if err := json.Unmarshal(raw, &withPlants); err != nil {
				return fmt.Errorf("decode seed plants: %w", err)
			}
			plants := make([]plot.PlantDocument, 0, len(withPlants.Plants))
			for _, p := range withPlants.Plants {
				plants = append(plants, decodePlantDocument(p))
			}
			s.AddPlot(u.ID, doc, plants...)
		}
	}
	return nil
}

var _ plot.Source = (*MemorySource)(nil)
