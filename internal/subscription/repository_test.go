package subscription

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserID = "6a1f0d7e-2c3b-4f5a-8e9d-0b1c2d3e4f50"
	testSubID  = "9c8b7a6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d"
)

var subColumns = []string{"id", "user_id", "plan_type", "plan_name", "max_check_ins_per_day", "features", "price_cents", "status", "start_date", "end_date", "created_at", "updated_at"}

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

func subRow(status string, start time.Time, end *time.Time) *sqlmock.Rows {
	var endVal interface{}
	if end != nil {
		endVal = *end
	}
	return sqlmock.NewRows(subColumns).
		AddRow(testSubID, testUserID, "basic", "Basic", 1, "{gym_floor,locker}", int64(15000000), status, start, endVal, start, start)
}

func TestRepository_FindActiveByUser(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	query := regexp.QuoteMeta("FROM subscriptions WHERE user_id = $1 AND status = 'ACTIVE' LIMIT 1")
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	mock.ExpectQuery(query).WithArgs(testUserID).WillReturnRows(subRow("ACTIVE", start, &end))

	sub, err := repo.FindActiveByUser(context.Background(), testUserID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, 1, sub.MaxCheckInsPerDay)
	assert.Equal(t, pq.StringArray{"gym_floor", "locker"}, sub.Features)
	require.NotNil(t, sub.EndDate)
	assert.True(t, end.Equal(*sub.EndDate))

	mock.ExpectQuery(query).WithArgs("nobody").WillReturnError(sql.ErrNoRows)

	sub, err = repo.FindActiveByUser(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, sub)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindActiveByUser_UnboundedEndDate(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("FROM subscriptions").WithArgs(testUserID).
		WillReturnRows(subRow("ACTIVE", time.Now(), nil))

	sub, err := repo.FindActiveByUser(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Nil(t, sub.EndDate)
}

func TestRepository_Purchase(t *testing.T) {
	plan, err := findPlan("basic")
	require.NoError(t, err)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	lock := regexp.QuoteMeta("SELECT id FROM users WHERE id = $1 FOR UPDATE")
	exists := regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_id = $1 AND status = 'ACTIVE')")
	insertSub := regexp.QuoteMeta("INSERT INTO subscriptions")
	insertPayment := regexp.QuoteMeta("INSERT INTO payments")

	t.Run("creates subscription and settled payment", func(t *testing.T) {
		repo, mock, closeFn := setupMock(t)
		defer closeFn()

		end := start.AddDate(0, 0, 30)
		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs(testUserID).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testUserID))
		mock.ExpectQuery(exists).WithArgs(testUserID).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(insertSub).
			WithArgs(sqlmock.AnyArg(), testUserID, "basic", "Basic", 1, sqlmock.AnyArg(), int64(15000000), start, end).
			WillReturnRows(subRow("ACTIVE", start, &end))
		mock.ExpectQuery(insertPayment).
			WithArgs(sqlmock.AnyArg(), testUserID, testSubID, int64(15000000), start).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "subscription_id", "amount_cents", "status", "created_at"}).
				AddRow("pay-1", testUserID, testSubID, int64(15000000), "SETTLED", start))
		mock.ExpectCommit()

		sub, payment, err := repo.Purchase(context.Background(), testUserID, plan, start)
		require.NoError(t, err)
		assert.Equal(t, testSubID, sub.ID)
		assert.Equal(t, PaymentSettled, payment.Status)
		require.NotNil(t, payment.SubscriptionID)
		assert.Equal(t, testSubID, *payment.SubscriptionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects second active subscription", func(t *testing.T) {
		repo, mock, closeFn := setupMock(t)
		defer closeFn()

		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs(testUserID).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testUserID))
		mock.ExpectQuery(exists).WithArgs(testUserID).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, _, err := repo.Purchase(context.Background(), testUserID, plan, start)
		assert.ErrorIs(t, err, ErrActiveSubscriptionExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation from a concurrent purchase", func(t *testing.T) {
		repo, mock, closeFn := setupMock(t)
		defer closeFn()

		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs(testUserID).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testUserID))
		mock.ExpectQuery(exists).WithArgs(testUserID).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(insertSub).WillReturnError(&pq.Error{Code: "23505", Constraint: activeIndex})
		mock.ExpectRollback()

		_, _, err := repo.Purchase(context.Background(), testUserID, plan, start)
		assert.ErrorIs(t, err, ErrActiveSubscriptionExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("payment failure rolls back", func(t *testing.T) {
		repo, mock, closeFn := setupMock(t)
		defer closeFn()

		end := start.AddDate(0, 0, 30)
		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs(testUserID).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testUserID))
		mock.ExpectQuery(exists).WithArgs(testUserID).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(insertSub).WillReturnRows(subRow("ACTIVE", start, &end))
		mock.ExpectQuery(insertPayment).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		_, _, err := repo.Purchase(context.Background(), testUserID, plan, start)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_CancelActive(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	query := regexp.QuoteMeta("UPDATE subscriptions SET status = 'CANCELED', updated_at = NOW() WHERE user_id = $1 AND status = 'ACTIVE'")
	start := time.Now()

	mock.ExpectQuery(query).WithArgs(testUserID).WillReturnRows(subRow("CANCELED", start, nil))

	sub, err := repo.CancelActive(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, sub.Status)

	mock.ExpectQuery(query).WithArgs(testUserID).WillReturnError(sql.ErrNoRows)

	_, err = repo.CancelActive(context.Background(), testUserID)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ExpireDue(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions SET status = 'EXPIRED', updated_at = NOW() WHERE status = 'ACTIVE' AND end_date IS NOT NULL AND end_date < $1")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.ExpireDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindExpiringBetween(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	from := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	to := from.Add(2 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.status = 'ACTIVE' AND s.end_date BETWEEN $1 AND $2")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "email", "name", "plan_name", "end_date"}).
			AddRow(testSubID, testUserID, "a@example.com", "Alice", "Basic", from.Add(time.Hour)))

	out, err := repo.FindExpiringBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a@example.com", out[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
