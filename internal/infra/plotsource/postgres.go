package plotsource

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/ecoplot/internal/domain/plot"
)

// PostgresSource reads plots from Postgres. Plant rows keep the client's
// document verbatim in a jsonb column.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource constructs the source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// ListUsers implements plot.Source.
func (s *PostgresSource) ListUsers(ctx context.Context) ([]plot.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(name, '')
		FROM users
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []plot.User
	for rows.Next() {
		var u plot.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListPlots implements plot.Source.
func (s *PostgresSource) ListPlots(ctx context.Context, userID string) ([]plot.PlotDocument, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(name, ''), COALESCE(location, ''), last_edited, latitude, longitude
		FROM plots
		WHERE user_id = $1
		ORDER BY last_edited DESC NULLS LAST
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []plot.PlotDocument
	for rows.Next() {
		doc, err := scanPlotDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListPlants implements plot.Source.
func (s *PostgresSource) ListPlants(ctx context.Context, userID, plotID string) ([]plot.PlantDocument, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT document
		FROM plants
		WHERE user_id = $1 AND plot_id = $2
		ORDER BY position
	`, userID, plotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []plot.PlantDocument
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, decodePlantDocument(raw))
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlotDocument(row rowScanner) (plot.PlotDocument, error) {
	var (
		doc      plot.PlotDocument
		edited   *time.Time
		lat, lng *float64
	)
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Location, &edited, &lat, &lng); err != nil {
		return plot.PlotDocument{}, err
	}
	if edited != nil {
		doc.LastEdited = edited.UTC()
	}
	if lat != nil {
		doc.Latitude = *lat
	}
	if lng != nil {
		doc.Longitude = *lng
	}
	return doc, nil
}

var _ plot.Source = (*PostgresSource)(nil)
