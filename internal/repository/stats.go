package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"peerform/internal/model"
)

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

// FetchWorkoutStats calls the fetch_workout_stats procedure. An empty result
// means the account has no workouts and yields zero counts.
func (r *statsRepository) FetchWorkoutStats(ctx context.Context, accountID uuid.UUID) (model.WorkoutStats, error) {
	query := `SELECT yearly_count, monthly_count, weekly_count FROM fetch_workout_stats($1)`

	var rows []model.WorkoutStats
	if err := r.db.SelectContext(ctx, &rows, query, accountID); err != nil {
		return model.WorkoutStats{}, fmt.Errorf("fetch workout stats: %w", err)
	}
	if len(rows) == 0 {
		return model.WorkoutStats{}, nil
	}
	return rows[0], nil
}
