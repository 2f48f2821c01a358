package class

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/db"
)

const oneBookingIndex = "class_bookings_one_per_user"

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrClassFull       = errors.New("class is full")
	ErrAlreadyBooked   = errors.New("user already booked this class")
	ErrBookingNotFound = errors.New("booking not found or already cancelled")
)

const classColumns = `id, name, trainer_name, start_time, end_time, capacity, created_at`

type Repository interface {
	CreateClass(ctx context.Context, name, trainer string, start, end time.Time, capacity int) (*Class, error)
	GetClassByID(ctx context.Context, id string) (*Class, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]ClassWithAvailability, error)
	CreateBooking(ctx context.Context, userID, classID string) (*Booking, error)
	GetBookingByID(ctx context.Context, id string) (*Booking, error)
	CancelBooking(ctx context.Context, id string) error
	ListUpcomingForUser(ctx context.Context, userID string, from time.Time) ([]BookingWithClass, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateClass(ctx context.Context, name, trainer string, start, end time.Time, capacity int) (*Class, error) {
	query := `
		INSERT INTO classes (id, name, trainer_name, start_time, end_time, capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + classColumns

	var c Class
	if err := r.db.GetContext(ctx, &c, query, uuid.NewString(), name, trainer, start, end, capacity); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetClassByID(ctx context.Context, id string) (*Class, error) {
	var c Class
	err := r.db.GetContext(ctx, &c, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]ClassWithAvailability, error) {
	query := `
		SELECT
		  c.id, c.name, c.trainer_name, c.start_time, c.end_time, c.capacity, c.created_at,
		  COUNT(b.id) FILTER (WHERE b.status = 'booked') AS booked_count
		FROM classes c
		LEFT JOIN class_bookings b ON b.class_id = c.id
		WHERE c.start_time > $1
		GROUP BY c.id
		ORDER BY c.start_time ASC
		LIMIT $2
	`

	classes := []ClassWithAvailability{}
	if err := r.db.SelectContext(ctx, &classes, query, from, limit); err != nil {
		return nil, err
	}
	for i := range classes {
		classes[i].fillAvailability()
	}
	return classes, nil
}

// CreateBooking locks the class row so the capacity check and the insert
// are atomic with respect to other bookings of the same class.
func (r *repository) CreateBooking(ctx context.Context, userID, classID string) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var capacity int
	err = tx.GetContext(ctx, &capacity, `SELECT capacity FROM classes WHERE id = $1 FOR UPDATE`, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	var booked int
	err = tx.GetContext(ctx, &booked, `SELECT COUNT(*) FROM class_bookings WHERE class_id = $1 AND status = 'booked'`, classID)
	if err != nil {
		return nil, err
	}
	if booked >= capacity {
		return nil, ErrClassFull
	}

	var b Booking
	err = tx.GetContext(ctx, &b, `
		INSERT INTO class_bookings (id, user_id, class_id, status)
		VALUES ($1, $2, $3, 'booked')
		RETURNING id, user_id, class_id, status, created_at
	`, uuid.NewString(), userID, classID)
	if err != nil {
		if db.IsUniqueViolation(err, oneBookingIndex) {
			return nil, ErrAlreadyBooked
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `
		SELECT id, user_id, class_id, status, created_at
		FROM class_bookings
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) CancelBooking(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE class_bookings
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'booked'
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *repository) ListUpcomingForUser(ctx context.Context, userID string, from time.Time) ([]BookingWithClass, error) {
	query := `
		SELECT
		  b.id, b.user_id, b.class_id, b.status, b.created_at,
		  c.name AS class_name,
		  c.trainer_name,
		  c.start_time,
		  c.end_time
		FROM class_bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE b.user_id = $1 AND b.status = 'booked' AND c.start_time > $2
		ORDER BY c.start_time ASC
	`

	bookings := []BookingWithClass{}
	if err := r.db.SelectContext(ctx, &bookings, query, userID, from); err != nil {
		return nil, err
	}
	return bookings, nil
}
