package dashboard

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/apperror"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/auth"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/checkin"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/class"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/clock"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/metrics"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/subscription"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/user"
)

const (
	recommendedClassLimit = 5
	recentCheckInLimit    = 5
)

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type SubscriptionLookup interface {
	FindActiveByUser(ctx context.Context, userID string) (*subscription.Subscription, error)
}

type ClassSchedule interface {
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]class.ClassWithAvailability, error)
	ListUpcomingForUser(ctx context.Context, userID string, from time.Time) ([]class.BookingWithClass, error)
}

type Service interface {
	GetMemberDashboard(ctx context.Context, requester auth.Principal, userID string) (*MemberDashboard, error)
}

type service struct {
	repo          Repository
	users         UserFinder
	subscriptions SubscriptionLookup
	classes       ClassSchedule
	clock         clock.Clock
}

func NewService(repo Repository, users UserFinder, subscriptions SubscriptionLookup, classes ClassSchedule, clk clock.Clock) Service {
	return &service{
		repo:          repo,
		users:         users,
		subscriptions: subscriptions,
		classes:       classes,
		clock:         clk,
	}
}

// GetMemberDashboard assembles the member's view. Members may only read
// their own dashboard; admins may read anyone's.
func (s *service) GetMemberDashboard(ctx context.Context, requester auth.Principal, userID string) (*MemberDashboard, error) {
	if requester.UserID != userID && !requester.IsAdmin() {
		return nil, apperror.Forbidden("You can only view your own dashboard")
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindNotFound, "User not found", err)
	}

	now := s.clock.Now().In(s.clock.Location())
	dayStart := clock.StartOfDay(now)

	var (
		sub    *subscription.Subscription
		counts *CheckInCounts
	)
	d := &MemberDashboard{
		Member: MemberSummary{ID: u.ID, Name: u.Name, Email: u.Email},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sub, err = s.subscriptions.FindActiveByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.repo.GetCheckInCounts(gctx, userID, clock.StartOfMonth(now), dayStart, dayStart.AddDate(0, 0, 1))
		return err
	})
	g.Go(func() (err error) {
		d.RecommendedClasses, err = s.classes.ListUpcoming(gctx, now, recommendedClassLimit)
		return err
	})
	g.Go(func() (err error) {
		d.UpcomingBookings, err = s.classes.ListUpcomingForUser(gctx, userID, now)
		return err
	})
	g.Go(func() (err error) {
		d.RecentCheckIns, err = s.repo.GetRecentCheckIns(gctx, userID, recentCheckInLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		metrics.RecordReport("member_dashboard", "error")
		return nil, apperror.Internal("Failed to fetch dashboard", err)
	}

	d.Subscription = summarize(sub, now)
	d.CheckInStats = checkInStats(counts, sub)
	if d.RecentCheckIns == nil {
		d.RecentCheckIns = []checkin.CheckIn{}
	}

	metrics.RecordReport("member_dashboard", "ok")
	return d, nil
}

func summarize(sub *subscription.Subscription, now time.Time) *SubscriptionSummary {
	if sub == nil {
		return nil
	}

	summary := &SubscriptionSummary{
		PlanType:          sub.PlanType,
		PlanName:          sub.PlanName,
		Status:            string(sub.Status),
		StartDate:         sub.StartDate,
		EndDate:           sub.EndDate,
		Features:          []string(sub.Features),
		MaxCheckInsPerDay: sub.MaxCheckInsPerDay,
	}
	if summary.Features == nil {
		summary.Features = []string{}
	}
	if sub.EndDate != nil {
		days := daysRemaining(*sub.EndDate, now)
		summary.DaysRemaining = &days
	}
	return summary
}

// daysRemaining counts partial days as whole ones.
func daysRemaining(end, now time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}

func checkInStats(counts *CheckInCounts, sub *subscription.Subscription) CheckInStats {
	stats := CheckInStats{
		Total:           counts.Total,
		ThisMonth:       counts.ThisMonth,
		Today:           counts.Today,
		AverageDuration: counts.AverageDuration,
	}
	if sub != nil {
		stats.RemainingToday = max(0, sub.MaxCheckInsPerDay-counts.Today)
	}
	return stats
}
