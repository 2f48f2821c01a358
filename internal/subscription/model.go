package subscription

import (
	"time"

	"github.com/lib/pq"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusActive   Status = "ACTIVE"
	StatusExpired  Status = "EXPIRED"
	StatusCanceled Status = "CANCELED"
)

// Subscription carries a snapshot of the plan it was bought from, so later
// catalogue changes do not alter existing memberships.
type Subscription struct {
	ID                string         `db:"id" json:"id"`
	UserID            string         `db:"user_id" json:"user_id"`
	PlanType          string         `db:"plan_type" json:"plan_type"`
	PlanName          string         `db:"plan_name" json:"plan_name"`
	MaxCheckInsPerDay int            `db:"max_check_ins_per_day" json:"max_check_ins_per_day"`
	Features          pq.StringArray `db:"features" json:"features"`
	PriceCents        int64          `db:"price_cents" json:"price_cents"`
	Status            Status         `db:"status" json:"status"`
	StartDate         time.Time      `db:"start_date" json:"start_date"`
	EndDate           *time.Time     `db:"end_date" json:"end_date,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

type PaymentStatus string

const (
	PaymentSettled PaymentStatus = "SETTLED"
)

type Payment struct {
	ID             string        `db:"id" json:"id"`
	UserID         string        `db:"user_id" json:"user_id"`
	SubscriptionID *string       `db:"subscription_id" json:"subscription_id,omitempty"`
	AmountCents    int64         `db:"amount_cents" json:"amount_cents"`
	Status         PaymentStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// Expiring is an active subscription about to run out, joined with the
// owner's contact details.
type Expiring struct {
	SubscriptionID string    `db:"id"`
	UserID         string    `db:"user_id"`
	Email          string    `db:"email"`
	Name           string    `db:"name"`
	PlanName       string    `db:"plan_name"`
	EndDate        time.Time `db:"end_date"`
}

type PurchaseRequest struct {
	PlanType string `json:"plan_type" binding:"required"`
}

type PurchaseResponse struct {
	Subscription *Subscription `json:"subscription"`
	Payment      *Payment      `json:"payment"`
}
