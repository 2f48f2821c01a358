package class

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/apperror"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/clock"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/logger"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/metrics"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/user"
)

const defaultListLimit = 20

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type Mailer interface {
	SendClassBookingConfirmation(ctx context.Context, email, name, className string, when time.Time) error
	SendClassCancellation(ctx context.Context, email, name, className string, when time.Time) error
}

type Service interface {
	CreateClass(ctx context.Context, req CreateClassRequest) (*Class, error)
	ListUpcoming(ctx context.Context, limit int) ([]ClassWithAvailability, error)
	BookClass(ctx context.Context, userID, classID string) (*Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID string) error
	ListMyBookings(ctx context.Context, userID string) ([]BookingWithClass, error)
}

type service struct {
	repo   Repository
	users  UserFinder
	mailer Mailer
	clock  clock.Clock
}

// NewService wires the class schedule. users and mailer may be nil, in which
// case no confirmation emails are sent.
func NewService(repo Repository, users UserFinder, mailer Mailer, clk clock.Clock) Service {
	return &service{repo: repo, users: users, mailer: mailer, clock: clk}
}

func (s *service) CreateClass(ctx context.Context, req CreateClassRequest) (*Class, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.BadRequest("Class name is required")
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, apperror.BadRequest("Invalid start_time format, use RFC3339")
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, apperror.BadRequest("Invalid end_time format, use RFC3339")
	}
	if !end.After(start) {
		return nil, apperror.BadRequest("End time must be after start time")
	}
	if req.Capacity <= 0 {
		return nil, apperror.BadRequest("Capacity must be greater than 0")
	}

	c, err := s.repo.CreateClass(ctx, name, strings.TrimSpace(req.TrainerName), start, end, req.Capacity)
	if err != nil {
		return nil, err
	}

	logger.Info("class created", "class_id", c.ID, "start", c.StartTime)
	return c, nil
}

func (s *service) ListUpcoming(ctx context.Context, limit int) ([]ClassWithAvailability, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListUpcoming(ctx, s.clock.Now(), limit)
}

func (s *service) BookClass(ctx context.Context, userID, classID string) (*Booking, error) {
	if !isID(classID) {
		return nil, apperror.NotFound("Class not found")
	}

	c, err := s.repo.GetClassByID(ctx, classID)
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			return nil, apperror.NotFound("Class not found")
		}
		return nil, err
	}

	if !c.StartTime.After(s.clock.Now()) {
		return nil, apperror.BadRequest("Cannot book a class that has already started")
	}

	b, err := s.repo.CreateBooking(ctx, userID, classID)
	if err != nil {
		switch {
		case errors.Is(err, ErrClassNotFound):
			return nil, apperror.NotFound("Class not found")
		case errors.Is(err, ErrClassFull):
			metrics.RecordClassBooking("full")
			return nil, apperror.Conflict("Class is full")
		case errors.Is(err, ErrAlreadyBooked):
			return nil, apperror.Conflict("You already booked this class")
		}
		return nil, err
	}

	metrics.RecordClassBooking(BookingBooked)
	logger.Info("class booked", "user_id", userID, "class_id", classID, "booking_id", b.ID)

	s.notify(ctx, userID, func(u *user.User) error {
		return s.mailer.SendClassBookingConfirmation(ctx, u.Email, u.Name, c.Name, c.StartTime)
	})
	return b, nil
}

func (s *service) CancelBooking(ctx context.Context, userID, bookingID string) error {
	if !isID(bookingID) {
		return apperror.NotFound("Booking not found")
	}

	b, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return apperror.NotFound("Booking not found")
		}
		return err
	}
	if b.UserID != userID {
		return apperror.Forbidden("You can only cancel your own bookings")
	}

	if err := s.repo.CancelBooking(ctx, bookingID); err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return apperror.NotFound("Booking not found or already cancelled")
		}
		return err
	}

	metrics.RecordClassBooking(BookingCancelled)
	logger.Info("class booking cancelled", "user_id", userID, "booking_id", bookingID)

	c, err := s.repo.GetClassByID(ctx, b.ClassID)
	if err != nil {
		logger.Warn("cancellation email skipped", "booking_id", bookingID, "error", err)
		return nil
	}
	s.notify(ctx, userID, func(u *user.User) error {
		return s.mailer.SendClassCancellation(ctx, u.Email, u.Name, c.Name, c.StartTime)
	})
	return nil
}

func (s *service) ListMyBookings(ctx context.Context, userID string) ([]BookingWithClass, error) {
	return s.repo.ListUpcomingForUser(ctx, userID, s.clock.Now())
}

// isID reports whether id can name a row; malformed ids would otherwise
// surface as a database cast error.
func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// notify sends a best-effort email to userID; failures are only logged.
func (s *service) notify(ctx context.Context, userID string, send func(u *user.User) error) {
	if s.users == nil || s.mailer == nil {
		return
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.Warn("class email skipped", "user_id", userID, "error", err)
		return
	}
	if err := send(u); err != nil {
		logger.Warn("class email failed", "user_id", userID, "error", err)
	}
}
