package subscription

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/db"
)

const activeIndex = "subscriptions_one_active_per_user"

var (
	ErrActiveSubscriptionExists = errors.New("user already has an active subscription")
	ErrNoActiveSubscription     = errors.New("no active subscription")
)

const subscriptionColumns = `id, user_id, plan_type, plan_name, max_check_ins_per_day, features, price_cents, status, start_date, end_date, created_at, updated_at`

type Repository interface {
	// FindActiveByUser returns nil, nil when the user has no ACTIVE row.
	FindActiveByUser(ctx context.Context, userID string) (*Subscription, error)
	Purchase(ctx context.Context, userID string, plan Plan, start time.Time) (*Subscription, *Payment, error)
	CancelActive(ctx context.Context, userID string) (*Subscription, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]Expiring, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveByUser(ctx context.Context, userID string) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1 AND status = 'ACTIVE'
		LIMIT 1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// Purchase records an ACTIVE subscription and its settled payment in one
// transaction. The user row is locked so concurrent purchases for the same
// user serialize; the partial unique index is the final guard.
func (r *repository) Purchase(ctx context.Context, userID string, plan Plan, start time.Time) (*Subscription, *Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var lockedID string
	if err := tx.GetContext(ctx, &lockedID, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
		return nil, nil, err
	}

	exists, err := db.Exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_id = $1 AND status = 'ACTIVE')`, userID)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, ErrActiveSubscriptionExists
	}

	var end *time.Time
	if plan.DurationDays > 0 {
		e := start.AddDate(0, 0, plan.DurationDays)
		end = &e
	}

	sub := &Subscription{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO subscriptions (id, user_id, plan_type, plan_name, max_check_ins_per_day, features, price_cents, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'ACTIVE', $8, $9)
		RETURNING `+subscriptionColumns,
		uuid.NewString(), userID, plan.Type, plan.Name, plan.MaxCheckInsPerDay, pqArray(plan.Features), plan.PriceCents, start, end,
	).StructScan(sub)
	if err != nil {
		if db.IsUniqueViolation(err, activeIndex) {
			return nil, nil, ErrActiveSubscriptionExists
		}
		return nil, nil, err
	}

	payment := &Payment{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO payments (id, user_id, subscription_id, amount_cents, status, created_at)
		VALUES ($1, $2, $3, $4, 'SETTLED', $5)
		RETURNING id, user_id, subscription_id, amount_cents, status, created_at`,
		uuid.NewString(), userID, sub.ID, plan.PriceCents, start,
	).StructScan(payment)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return sub, payment, nil
}

func (r *repository) CancelActive(ctx context.Context, userID string) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		UPDATE subscriptions
		SET status = 'CANCELED', updated_at = NOW()
		WHERE user_id = $1 AND status = 'ACTIVE'
		RETURNING `+subscriptionColumns, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}
	return sub, nil
}

func (r *repository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'EXPIRED', updated_at = NOW()
		WHERE status = 'ACTIVE' AND end_date IS NOT NULL AND end_date < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]Expiring, error) {
	out := []Expiring{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT s.id, s.user_id, u.email, u.name, s.plan_name, s.end_date
		FROM subscriptions s
		JOIN users u ON u.id = s.user_id
		WHERE s.status = 'ACTIVE' AND s.end_date BETWEEN $1 AND $2
		ORDER BY s.end_date
	`, from, to)
	return out, err
}

func pqArray(features []string) pq.StringArray {
	if features == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(features)
}
