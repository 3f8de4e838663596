package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/civiclens/lotscout/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Narrowing to an
// interface lets tests substitute a mock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'running',
	row_count  INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS final_scores (
	run_id                      TEXT NOT NULL REFERENCES runs(id),
	lot_id                      TEXT NOT NULL,
	lat                         DOUBLE PRECISION NOT NULL,
	lon                         DOUBLE PRECISION NOT NULL,
	business_type               TEXT NOT NULL,
	final_probability           DOUBLE PRECISION NOT NULL,
	base_business_score         DOUBLE PRECISION NOT NULL,
	sentiment_score             DOUBLE PRECISION NOT NULL,
	transcript_sentiment_score  DOUBLE PRECISION NOT NULL,
	trends_demand_score         DOUBLE PRECISION NOT NULL,
	saturation_score            DOUBLE PRECISION NOT NULL,
	matched_location            TEXT NOT NULL,
	matched_transcript_location TEXT NOT NULL,
	distance_to_sentiment_km    DOUBLE PRECISION NOT NULL,
	reason                      TEXT NOT NULL,
	PRIMARY KEY (run_id, lot_id, business_type)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_final_scores_run_id ON final_scores(run_id);
CREATE INDEX IF NOT EXISTS idx_final_scores_probability ON final_scores(run_id, final_probability DESC);
`

// finalScoreColumns is the COPY column order for final_scores.
var finalScoreColumns = []string{
	"run_id", "lot_id", "lat", "lon", "business_type", "final_probability",
	"base_business_score", "sentiment_score", "transcript_sentiment_score",
	"trends_demand_score", "saturation_score", "matched_location",
	"matched_transcript_location", "distance_to_sentiment_km", "reason",
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, label string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, label, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, label, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Label:     label,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, rowCount int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, row_count = $2, updated_at = $3 WHERE id = $4`,
		string(status), rowCount, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, label, status, row_count, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	return scanPgRun(row)
}

func (s *PostgresStore) LatestRun(ctx context.Context) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, label, status, row_count, created_at, updated_at FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`,
	)
	return scanPgRun(row)
}

// SaveFinalScores bulk-loads rows with the COPY protocol.
func (s *PostgresStore) SaveFinalScores(ctx context.Context, runID string, scores []model.FinalScore) error {
	if len(scores) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(scores))
	for i := range scores {
		fs := &scores[i]
		rows = append(rows, []any{
			runID, fs.LotID, fs.Lat, fs.Lon, fs.BusinessType, fs.FinalProbability,
			fs.BaseBusinessScore, fs.SentimentScore, fs.TranscriptSentimentScore,
			fs.TrendsDemandScore, fs.SaturationScore, fs.MatchedLocation,
			fs.MatchedTranscriptLocation, fs.DistanceToSentimentKM, fs.Reason,
		})
	}

	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{"final_scores"}, finalScoreColumns, pgx.CopyFromRows(rows))
	return eris.Wrapf(err, "postgres: COPY final_scores for run %s", runID)
}

func (s *PostgresStore) TopScores(ctx context.Context, runID string, limit int) ([]model.FinalScore, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT lot_id, lat, lon, business_type, final_probability,
			base_business_score, sentiment_score, transcript_sentiment_score,
			trends_demand_score, saturation_score, matched_location,
			matched_transcript_location, distance_to_sentiment_km, reason
		FROM final_scores
		WHERE run_id = $1
		ORDER BY final_probability DESC, lot_id ASC, business_type ASC
		LIMIT $2`,
		runID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query top scores %s", runID)
	}
	defer rows.Close()

	var out []model.FinalScore
	for rows.Next() {
		var fs model.FinalScore
		if err := rows.Scan(
			&fs.LotID, &fs.Lat, &fs.Lon, &fs.BusinessType, &fs.FinalProbability,
			&fs.BaseBusinessScore, &fs.SentimentScore, &fs.TranscriptSentimentScore,
			&fs.TrendsDemandScore, &fs.SaturationScore, &fs.MatchedLocation,
			&fs.MatchedTranscriptLocation, &fs.DistanceToSentimentKM, &fs.Reason,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan score")
		}
		out = append(out, fs)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate scores")
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var status string
	err := row.Scan(&r.ID, &r.Label, &status, &r.RowCount, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}
	r.Status = model.RunStatus(status)
	return &r, nil
}
