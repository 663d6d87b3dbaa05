package metrics

import "time"

// FetchStats summarizes one plot-store fetch across all users.
type FetchStats struct {
	Users    int           `json:"users"`
	Plots    int           `json:"plots"`
	Plants   int           `json:"plants"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// IsZero reports whether nothing was fetched.
func (s FetchStats) IsZero() bool {
	return s.Users == 0 && s.Plots == 0 && s.Plants == 0 && s.Skipped == 0
}

// Add folds other into s.
func (s *FetchStats) Add(other FetchStats) {
	s.Users += other.Users
	s.Plots += other.Plots
	s.Plants += other.Plants
	s.Skipped += other.Skipped
}
