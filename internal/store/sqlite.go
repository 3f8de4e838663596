package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/civiclens/lotscout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'running',
	row_count  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS final_scores (
	run_id                      TEXT NOT NULL REFERENCES runs(id),
	lot_id                      TEXT NOT NULL,
	lat                         REAL NOT NULL,
	lon                         REAL NOT NULL,
	business_type               TEXT NOT NULL,
	final_probability           REAL NOT NULL,
	base_business_score         REAL NOT NULL,
	sentiment_score             REAL NOT NULL,
	transcript_sentiment_score  REAL NOT NULL,
	trends_demand_score         REAL NOT NULL,
	saturation_score            REAL NOT NULL,
	matched_location            TEXT NOT NULL,
	matched_transcript_location TEXT NOT NULL,
	distance_to_sentiment_km    REAL NOT NULL,
	reason                      TEXT NOT NULL,
	PRIMARY KEY (run_id, lot_id, business_type)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_final_scores_run_id ON final_scores(run_id);
CREATE INDEX IF NOT EXISTS idx_final_scores_probability ON final_scores(run_id, final_probability DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, label string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, label, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, label, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Label:     label,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, rowCount int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, row_count = ?, updated_at = ? WHERE id = ?`,
		string(status), rowCount, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, status, row_count, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, status, row_count, created_at, updated_at FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`,
	)
	return scanRun(row)
}

func (s *SQLiteStore) SaveFinalScores(ctx context.Context, runID string, scores []model.FinalScore) error {
	if len(scores) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO final_scores (
		run_id, lot_id, lat, lon, business_type, final_probability,
		base_business_score, sentiment_score, transcript_sentiment_score,
		trends_demand_score, saturation_score, matched_location,
		matched_transcript_location, distance_to_sentiment_km, reason
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert scores")
	}
	defer stmt.Close()

	for i := range scores {
		fs := &scores[i]
		_, err := stmt.ExecContext(ctx,
			runID, fs.LotID, fs.Lat, fs.Lon, fs.BusinessType, fs.FinalProbability,
			fs.BaseBusinessScore, fs.SentimentScore, fs.TranscriptSentimentScore,
			fs.TrendsDemandScore, fs.SaturationScore, fs.MatchedLocation,
			fs.MatchedTranscriptLocation, fs.DistanceToSentimentKM, fs.Reason,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert score %s/%s", fs.LotID, fs.BusinessType)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit scores")
}

func (s *SQLiteStore) TopScores(ctx context.Context, runID string, limit int) ([]model.FinalScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lot_id, lat, lon, business_type, final_probability,
			base_business_score, sentiment_score, transcript_sentiment_score,
			trends_demand_score, saturation_score, matched_location,
			matched_transcript_location, distance_to_sentiment_km, reason
		FROM final_scores
		WHERE run_id = ?
		ORDER BY final_probability DESC, lot_id ASC, business_type ASC
		LIMIT ?`,
		runID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query top scores %s", runID)
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
			return nil, eris.Wrap(err, "sqlite: scan score")
		}
		out = append(out, fs)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate scores")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var status string
	err := row.Scan(&r.ID, &r.Label, &status, &r.RowCount, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	r.Status = model.RunStatus(status)
	return &r, nil
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}
