package checkin

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/db"
)

const openIndex = "check_ins_one_open_per_user"

var (
	// ErrOpenCheckInExists is returned by Create when the user already has an
	// open visit. The partial unique index decides, so concurrent check-ins
	// for one user cannot both succeed.
	ErrOpenCheckInExists = errors.New("user already has an open check-in")
	// ErrAlreadyClosed is returned by Checkout when the record was closed
	// between the lookup and the update.
	ErrAlreadyClosed = errors.New("check-in already closed")
)

const checkInColumns = `id, user_id, check_in_time, check_out_time, duration, created_at`

type Repository interface {
	Create(ctx context.Context, userID string, at time.Time) (*CheckIn, error)
	// FindActiveByUser returns the open visit or nil, nil.
	FindActiveByUser(ctx context.Context, userID string) (*CheckIn, error)
	CountTodayCheckIns(ctx context.Context, userID string, from, to time.Time) (int, error)
	// FindByIDAndUser returns nil, nil when no record with that id belongs to the user.
	FindByIDAndUser(ctx context.Context, id, userID string) (*CheckIn, error)
	Checkout(ctx context.Context, id, userID string, at time.Time, duration int) (*CheckIn, error)
	// FindByUser lists visits newest first. Nil bounds are open.
	FindByUser(ctx context.Context, userID string, start, end *time.Time) ([]CheckIn, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID string, at time.Time) (*CheckIn, error) {
	rec := &CheckIn{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO check_ins (id, user_id, check_in_time)
		VALUES ($1, $2, $3)
		RETURNING `+checkInColumns,
		uuid.NewString(), userID, at,
	).StructScan(rec)
	if err != nil {
		if db.IsUniqueViolation(err, openIndex) {
			return nil, ErrOpenCheckInExists
		}
		return nil, err
	}
	return rec, nil
}

func (r *repository) FindActiveByUser(ctx context.Context, userID string) (*CheckIn, error) {
	rec := &CheckIn{}
	err := r.db.GetContext(ctx, rec, `
		SELECT `+checkInColumns+`
		FROM check_ins
		WHERE user_id = $1 AND check_out_time IS NULL
		LIMIT 1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (r *repository) CountTodayCheckIns(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*)
		FROM check_ins
		WHERE user_id = $1 AND check_in_time >= $2 AND check_in_time < $3
	`, userID, from, to)
	return n, err
}

func (r *repository) FindByIDAndUser(ctx context.Context, id, userID string) (*CheckIn, error) {
	rec := &CheckIn{}
	err := r.db.GetContext(ctx, rec, `
		SELECT `+checkInColumns+`
		FROM check_ins
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (r *repository) Checkout(ctx context.Context, id, userID string, at time.Time, duration int) (*CheckIn, error) {
	rec := &CheckIn{}
	err := r.db.GetContext(ctx, rec, `
		UPDATE check_ins
		SET check_out_time = $3, duration = $4
		WHERE id = $1 AND user_id = $2 AND check_out_time IS NULL
		RETURNING `+checkInColumns,
		id, userID, at, duration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlreadyClosed
		}
		return nil, err
	}
	return rec, nil
}

func (r *repository) FindByUser(ctx context.Context, userID string, start, end *time.Time) ([]CheckIn, error) {
	out := []CheckIn{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+checkInColumns+`
		FROM check_ins
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR check_in_time >= $2)
		  AND ($3::timestamptz IS NULL OR check_in_time <= $3)
		ORDER BY check_in_time DESC
	`, userID, start, end)
	return out, err
}
