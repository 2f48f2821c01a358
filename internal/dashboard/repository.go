package dashboard

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/checkin"
)

type Repository interface {
	GetCheckInCounts(ctx context.Context, userID string, monthStart, dayStart, dayEnd time.Time) (*CheckInCounts, error)
	GetRecentCheckIns(ctx context.Context, userID string, limit int) ([]checkin.CheckIn, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetCheckInCounts(ctx context.Context, userID string, monthStart, dayStart, dayEnd time.Time) (*CheckInCounts, error) {
	query := `
		SELECT
		  COUNT(*) AS total,
		  COUNT(*) FILTER (WHERE check_in_time >= $2) AS this_month,
		  COUNT(*) FILTER (WHERE check_in_time >= $3 AND check_in_time < $4) AS today,
		  COALESCE(ROUND(AVG(duration)::numeric, 2), 0)::float8 AS average_duration
		FROM check_ins
		WHERE user_id = $1
	`

	var counts CheckInCounts
	if err := r.db.GetContext(ctx, &counts, query, userID, monthStart, dayStart, dayEnd); err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *repository) GetRecentCheckIns(ctx context.Context, userID string, limit int) ([]checkin.CheckIn, error) {
	query := `
		SELECT id, user_id, check_in_time, check_out_time, duration, created_at
		FROM check_ins
		WHERE user_id = $1
		ORDER BY check_in_time DESC
		LIMIT $2
	`

	records := []checkin.CheckIn{}
	if err := r.db.SelectContext(ctx, &records, query, userID, limit); err != nil {
		return nil, err
	}
	return records, nil
}
