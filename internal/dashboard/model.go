package dashboard

import (
	"time"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/checkin"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/class"
)

type MemberSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SubscriptionSummary struct {
	PlanType          string     `json:"plan_type"`
	PlanName          string     `json:"plan_name"`
	Status            string     `json:"status"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	DaysRemaining     *int       `json:"days_remaining"`
	Features          []string   `json:"features"`
	MaxCheckInsPerDay int        `json:"max_check_ins_per_day"`
}

// CheckInCounts is what the store computes in one pass over a member's visits.
type CheckInCounts struct {
	Total           int     `db:"total"`
	ThisMonth       int     `db:"this_month"`
	Today           int     `db:"today"`
	AverageDuration float64 `db:"average_duration"`
}

type CheckInStats struct {
	Total           int     `json:"total"`
	ThisMonth       int     `json:"this_month"`
	Today           int     `json:"today"`
	RemainingToday  int     `json:"remaining_today"`
	AverageDuration float64 `json:"average_duration_minutes"`
}

type MemberDashboard struct {
	Member             MemberSummary                 `json:"member"`
	Subscription       *SubscriptionSummary          `json:"subscription"`
	CheckInStats       CheckInStats                  `json:"check_in_stats"`
	RecommendedClasses []class.ClassWithAvailability `json:"recommended_classes"`
	UpcomingBookings   []class.BookingWithClass      `json:"upcoming_bookings"`
	RecentCheckIns     []checkin.CheckIn             `json:"recent_check_ins"`
}
