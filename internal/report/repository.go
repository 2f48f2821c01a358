package report

import (
	"context"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetTotalMembers(ctx context.Context) (int64, error)
	GetActiveMembers(ctx context.Context) (int64, error)
	GetTotalRevenue(ctx context.Context) (int64, error)
	GetMonthlyRevenue(ctx context.Context, from, to time.Time) (int64, error)
	GetTodayCheckIns(ctx context.Context, from, to time.Time) (int64, error)
	GetPopularClasses(ctx context.Context, limit int) ([]PopularClass, error)
	GetRevenueByDateRange(ctx context.Context, from, to time.Time) (*RevenueData, error)
	GetAttendanceByDateRange(ctx context.Context, from, to time.Time) (*AttendanceData, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, query, args...)
	return n, err
}

func (r *repository) GetTotalMembers(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE role = 'member'`)
}

func (r *repository) GetActiveMembers(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(DISTINCT user_id) FROM subscriptions WHERE status = 'ACTIVE'`)
}

func (r *repository) GetTotalRevenue(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE status = 'SETTLED'`)
}

func (r *repository) GetMonthlyRevenue(ctx context.Context, from, to time.Time) (int64, error) {
	return r.count(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM payments
		WHERE status = 'SETTLED' AND created_at >= $1 AND created_at < $2
	`, from, to)
}

func (r *repository) GetTodayCheckIns(ctx context.Context, from, to time.Time) (int64, error) {
	return r.count(ctx, `
		SELECT COUNT(*)
		FROM check_ins
		WHERE check_in_time >= $1 AND check_in_time < $2
	`, from, to)
}

func (r *repository) GetPopularClasses(ctx context.Context, limit int) ([]PopularClass, error) {
	out := []PopularClass{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT
		  c.id           AS class_id,
		  c.name         AS name,
		  c.trainer_name AS trainer_name,
		  c.start_time   AS start_time,
		  COUNT(b.id) FILTER (WHERE b.status = 'booked') AS booked_count
		FROM classes c
		LEFT JOIN class_bookings b ON b.class_id = c.id
		GROUP BY c.id, c.name, c.trainer_name, c.start_time
		ORDER BY booked_count DESC, c.start_time
		LIMIT $1
	`, limit)
	return out, err
}

func (r *repository) GetRevenueByDateRange(ctx context.Context, from, to time.Time) (*RevenueData, error) {
	data := &RevenueData{Daily: []DailyRevenue{}}

	total, err := r.count(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM payments
		WHERE status = 'SETTLED' AND created_at BETWEEN $1 AND $2
	`, from, to)
	if err != nil {
		return nil, err
	}
	data.TotalRevenue = total

	err = r.db.SelectContext(ctx, &data.Daily, `
		SELECT
		  DATE(created_at AT TIME ZONE 'UTC') AS date,
		  SUM(amount_cents)                   AS revenue,
		  COUNT(*)                            AS transaction_count
		FROM payments
		WHERE status = 'SETTLED' AND created_at BETWEEN $1 AND $2
		GROUP BY DATE(created_at AT TIME ZONE 'UTC')
		ORDER BY date
	`, from, to)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (r *repository) GetAttendanceByDateRange(ctx context.Context, from, to time.Time) (*AttendanceData, error) {
	data := &AttendanceData{Daily: []DailyAttendance{}}

	err := r.db.SelectContext(ctx, &data.Daily, `
		SELECT
		  DATE(check_in_time AT TIME ZONE 'UTC') AS date,
		  COUNT(*)                               AS check_ins,
		  COUNT(DISTINCT user_id)                AS unique_members
		FROM check_ins
		WHERE check_in_time BETWEEN $1 AND $2
		GROUP BY DATE(check_in_time AT TIME ZONE 'UTC')
		ORDER BY date
	`, from, to)
	if err != nil {
		return nil, err
	}

	for _, d := range data.Daily {
		data.TotalCheckIns += int64(d.CheckIns)
	}
	data.AveragePerDay = averagePerDay(data.TotalCheckIns, from, to)

	return data, nil
}

// averagePerDay spreads total over every calendar day the window touches,
// including days without visits. Rounded to two decimals.
func averagePerDay(total int64, from, to time.Time) float64 {
	days := math.Ceil(to.Sub(from).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return math.Round(float64(total)/days*100) / 100
}
