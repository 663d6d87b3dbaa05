package plot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/ecoplot/internal/domain/plant"
	"github.com/yanqian/ecoplot/pkg/metrics"
)

// loader walks the remote source. Failures below the user list are logged
// and the entity is skipped so siblings still load.
type loader struct {
	source Source
	logger *slog.Logger
}

func (l loader) parcelles(ctx context.Context) ([]Parcelle, metrics.FetchStats, error) {
	var stats metrics.FetchStats
	users, err := l.source.ListUsers(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("list users: %w", err)
	}

	out := make([]Parcelle, 0)
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		plots, userStats, err := l.userPlots(ctx, user.ID)
		stats.Add(userStats)
		if err != nil {
			if aborted(ctx, err) {
				return nil, stats, err
			}
			l.logger.Warn("skipping user plots", "user_id", user.ID, "error", err)
			stats.Skipped++
			continue
		}
		stats.Users++
		author := authorLabel(user)
		for _, p := range plots {
			out = append(out, Parcelle{
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
				Author:    author,
				Plants:    p.Plants,
			})
		}
	}
	// a cancellation after the last user must not publish a partial view
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	return out, stats, nil
}

func (l loader) userPlots(ctx context.Context, userID string) ([]Plot, metrics.FetchStats, error) {
	var stats metrics.FetchStats
	docs, err := l.source.ListPlots(ctx, userID)
	if err != nil {
		return nil, stats, fmt.Errorf("list plots: %w", err)
	}

	plots := make([]Plot, 0, len(docs))
	for _, doc := range docs {
		p, err := DecodePlot(doc)
		if err != nil {
			l.logger.Warn("skipping malformed plot", "user_id", userID, "error", err)
			stats.Skipped++
			continue
		}
		plantDocs, err := l.source.ListPlants(ctx, userID, p.ID)
		if err != nil {
			if aborted(ctx, err) {
				return nil, stats, fmt.Errorf("list plants: %w", err)
			}
			l.logger.Warn("skipping plot with unreadable plants", "user_id", userID, "plot_id", p.ID, "error", err)
			stats.Skipped++
			continue
		}
		p.Plants = make([]plant.Record, 0, len(plantDocs))
		for i, raw := range plantDocs {
			rec, report, err := DecodePlant(raw)
			if err != nil {
				l.logger.Warn("skipping malformed plant", "user_id", userID, "plot_id", p.ID, "position", i, "error", err)
				stats.Skipped++
				continue
			}
			if len(report.Defaulted) > 0 {
				l.logger.Debug("plant fields defaulted", "plot_id", p.ID, "plant", rec.Name, "fields", report.Defaulted)
			}
			p.Plants = append(p.Plants, rec)
			stats.Plants++
		}
		plots = append(plots, p)
		stats.Plots++
	}
	return plots, stats, nil
}

// aborted reports whether err ends the whole fetch rather than one entity.
func aborted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func authorLabel(u User) string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	if id := strings.TrimSpace(u.ID); id != "" {
		return id
	}
	return UnknownName
}
