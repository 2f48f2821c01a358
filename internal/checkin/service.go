package checkin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/apperror"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/clock"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/logger"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/metrics"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/subscription"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/user"
)

const dateLayout = "2006-01-02"

// SubscriptionLookup returns the user's ACTIVE subscription or nil, nil.
type SubscriptionLookup interface {
	FindActiveByUser(ctx context.Context, userID string) (*subscription.Subscription, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type Mailer interface {
	SendCheckOutSummary(ctx context.Context, email, name string, checkIn, checkOut time.Time, durationMinutes int) error
}

type Service interface {
	CheckIn(ctx context.Context, userID string) (*CheckIn, error)
	CheckOut(ctx context.Context, checkInID, userID string) (*CheckIn, error)
	GetHistory(ctx context.Context, userID, startDate, endDate string) ([]CheckIn, error)
	GetCurrentStatus(ctx context.Context, userID string) (*Status, error)
}

type service struct {
	repo          Repository
	subscriptions SubscriptionLookup
	users         UserFinder
	mailer        Mailer
	clock         clock.Clock
}

// NewService builds the check-in engine. users and mailer are optional and
// only used for the post-visit summary email.
func NewService(repo Repository, subscriptions SubscriptionLookup, clk clock.Clock, users UserFinder, mailer Mailer) Service {
	return &service{
		repo:          repo,
		subscriptions: subscriptions,
		users:         users,
		mailer:        mailer,
		clock:         clk,
	}
}

func (s *service) CheckIn(ctx context.Context, userID string) (*CheckIn, error) {
	now := s.clock.Now()

	sub, err := s.subscriptions.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, s.reject(apperror.New(apperror.KindNoActiveMembership, "No active membership found"))
	}

	// equal instants are still valid
	if sub.EndDate != nil && now.After(*sub.EndDate) {
		return nil, s.reject(apperror.New(apperror.KindMembershipExpired, "Membership has expired"))
	}

	open, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, s.reject(alreadyCheckedIn())
	}

	dayStart := clock.StartOfDay(now.In(s.clock.Location()))
	count, err := s.repo.CountTodayCheckIns(ctx, userID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if count >= sub.MaxCheckInsPerDay {
		limitErr := apperror.New(apperror.KindDailyLimitReached,
			fmt.Sprintf("Daily check-in limit reached (%d per day)", sub.MaxCheckInsPerDay))
		limitErr.Limit = sub.MaxCheckInsPerDay
		return nil, s.reject(limitErr)
	}

	rec, err := s.repo.Create(ctx, userID, now)
	if err != nil {
		if errors.Is(err, ErrOpenCheckInExists) {
			return nil, s.reject(alreadyCheckedIn())
		}
		return nil, err
	}

	metrics.RecordCheckIn("success")
	logger.Info("member checked in", "user_id", userID, "check_in_id", rec.ID)
	return rec, nil
}

func alreadyCheckedIn() *apperror.Error {
	return apperror.New(apperror.KindAlreadyCheckedIn, "Already checked in. Please check out first")
}

func checkInNotFound() *apperror.Error {
	return apperror.New(apperror.KindCheckInNotFound, "Check-in record not found")
}

func (s *service) reject(err *apperror.Error) error {
	metrics.RecordCheckIn(string(err.Kind))
	return err
}

func (s *service) CheckOut(ctx context.Context, checkInID, userID string) (*CheckIn, error) {
	// ids are UUIDs; anything else cannot name a record
	if _, err := uuid.Parse(checkInID); err != nil {
		return nil, checkInNotFound()
	}

	rec, err := s.repo.FindByIDAndUser(ctx, checkInID, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, checkInNotFound()
	}
	if !rec.IsOpen() {
		return nil, alreadyCheckedOut()
	}

	out := s.clock.Now()
	if out.Before(rec.CheckInTime) {
		out = rec.CheckInTime
	}
	duration := durationMinutes(rec.CheckInTime, out)

	closed, err := s.repo.Checkout(ctx, rec.ID, userID, out, duration)
	if err != nil {
		if errors.Is(err, ErrAlreadyClosed) {
			return nil, alreadyCheckedOut()
		}
		return nil, err
	}

	metrics.RecordCheckOut(duration)
	logger.Info("member checked out", "user_id", userID, "check_in_id", closed.ID, "duration_min", duration)
	s.sendSummary(ctx, userID, closed, duration)

	return closed, nil
}

func alreadyCheckedOut() *apperror.Error {
	return apperror.New(apperror.KindAlreadyCheckedOut, "Already checked out")
}

// durationMinutes rounds to the nearest minute, halves away from zero.
func durationMinutes(in, out time.Time) int {
	return int(math.Round(float64(out.Sub(in).Milliseconds()) / 60000))
}

func (s *service) sendSummary(ctx context.Context, userID string, rec *CheckIn, duration int) {
	if s.mailer == nil || s.users == nil || rec.CheckOutTime == nil {
		return
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.Warn("checkout summary skipped, user lookup failed", "user_id", userID, "error", err)
		return
	}
	if err := s.mailer.SendCheckOutSummary(ctx, u.Email, u.Name, rec.CheckInTime, *rec.CheckOutTime, duration); err != nil {
		logger.Warn("failed to queue checkout summary", "user_id", userID, "error", err)
	}
}

func (s *service) GetHistory(ctx context.Context, userID, startDate, endDate string) ([]CheckIn, error) {
	var start, end *time.Time

	if startDate != "" {
		d, err := time.ParseInLocation(dateLayout, startDate, s.clock.Location())
		if err != nil {
			return nil, apperror.BadRequest("start_date must be a YYYY-MM-DD date")
		}
		from := clock.StartOfDay(d)
		start = &from
	}
	if endDate != "" {
		d, err := time.ParseInLocation(dateLayout, endDate, s.clock.Location())
		if err != nil {
			return nil, apperror.BadRequest("end_date must be a YYYY-MM-DD date")
		}
		to := clock.EndOfDay(d)
		end = &to
	}

	return s.repo.FindByUser(ctx, userID, start, end)
}

func (s *service) GetCurrentStatus(ctx context.Context, userID string) (*Status, error) {
	open, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Status{IsCheckedIn: open != nil, CurrentCheckIn: open}, nil
}
