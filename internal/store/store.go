// Package store persists runs and fused scores so results can be queried
// and compared across reruns. Two backends exist: SQLite for local single
// user work and Postgres for shared deployments.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/civiclens/lotscout/internal/config"
	"github.com/civiclens/lotscout/internal/model"
)

// Store defines the persistence interface for scoring runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, label string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, rowCount int) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	LatestRun(ctx context.Context) (*model.Run, error)

	// Scores
	SaveFinalScores(ctx context.Context, runID string, scores []model.FinalScore) error
	TopScores(ctx context.Context, runID string, limit int) ([]model.FinalScore, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ErrNotFound reports a missing run.
var ErrNotFound = eris.New("store: not found")

// New builds the store selected by the config driver. SQLite treats the
// database URL as a file path.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
