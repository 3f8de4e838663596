package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/lotscout/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgresMigrate(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS runs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateRun(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO runs").
		WithArgs(pgxmock.AnyArg(), "label-x", "running", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "label-x")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteRun(t *testing.T) {
	t.Parallel()

	t.Run("updates existing run", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectExec("UPDATE runs SET status").
			WithArgs("complete", 42, pgxmock.AnyArg(), "run-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, s.CompleteRun(context.Background(), "run-1", model.RunStatusComplete, 42))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing run", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectExec("UPDATE runs SET status").
			WithArgs("failed", 0, pgxmock.AnyArg(), "ghost").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := s.CompleteRun(context.Background(), "ghost", model.RunStatusFailed, 0)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresGetRun(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		now := time.Now().UTC()
		mock.ExpectQuery("SELECT id, label, status, row_count").
			WithArgs("run-1").
			WillReturnRows(pgxmock.NewRows(
				[]string{"id", "label", "status", "row_count", "created_at", "updated_at"},
			).AddRow("run-1", "lbl", "complete", 7, now, now))

		run, err := s.GetRun(context.Background(), "run-1")
		require.NoError(t, err)
		assert.Equal(t, "run-1", run.ID)
		assert.Equal(t, model.RunStatusComplete, run.Status)
		assert.Equal(t, 7, run.RowCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT id, label, status, row_count").
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		_, err := s.GetRun(context.Background(), "ghost")
		assert.Error(t, err)
	})
}

func TestPostgresSaveFinalScores(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	scores := sampleScores()

	mock.ExpectCopyFrom(pgx.Identifier{"final_scores"}, finalScoreColumns).
		WillReturnResult(int64(len(scores)))

	require.NoError(t, s.SaveFinalScores(context.Background(), "run-1", scores))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveFinalScoresEmpty(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	require.NoError(t, s.SaveFinalScores(context.Background(), "run-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTopScores(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT lot_id, lat, lon, business_type").
		WithArgs("run-1", 5).
		WillReturnRows(pgxmock.NewRows([]string{
			"lot_id", "lat", "lon", "business_type", "final_probability",
			"base_business_score", "sentiment_score", "transcript_sentiment_score",
			"trends_demand_score", "saturation_score", "matched_location",
			"matched_transcript_location", "distance_to_sentiment_km", "reason",
		}).AddRow("lot-1", 41.6, -87.05, "coffee shop", 78.5,
			83.3, 80.0, 60.0, 75.0, 1.0, "downtown", "no_data", 0.42, "High demand."))

	top, err := s.TopScores(context.Background(), "run-1", 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "lot-1", top[0].LotID)
	assert.Equal(t, 78.5, top[0].FinalProbability)
	assert.Equal(t, "downtown", top[0].MatchedLocation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
