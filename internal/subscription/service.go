package subscription

import (
	"context"
	"time"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/clock"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/logger"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/metrics"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/user"
)

type Mailer interface {
	SendSubscriptionReceipt(ctx context.Context, email, name, planName string, priceCents int64, endDate *time.Time) error
	SendExpiryReminder(ctx context.Context, email, name, planName string, endDate time.Time) error
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type Service interface {
	ListPlans() []Plan
	Purchase(ctx context.Context, userID, planType string) (*PurchaseResponse, error)
	Current(ctx context.Context, userID string) (*Subscription, error)
	Cancel(ctx context.Context, userID string) (*Subscription, error)
}

type service struct {
	repo   Repository
	users  UserFinder
	mailer Mailer
	clock  clock.Clock
}

// NewService builds the subscription service. users and mailer may be nil,
// in which case no receipt is sent.
func NewService(repo Repository, users UserFinder, mailer Mailer, clk clock.Clock) Service {
	return &service{
		repo:   repo,
		users:  users,
		mailer: mailer,
		clock:  clk,
	}
}

func (s *service) ListPlans() []Plan {
	return getPlans()
}

func (s *service) Purchase(ctx context.Context, userID, planType string) (*PurchaseResponse, error) {
	plan, err := findPlan(planType)
	if err != nil {
		return nil, err
	}

	sub, payment, err := s.repo.Purchase(ctx, userID, plan, s.clock.Now())
	if err != nil {
		return nil, err
	}

	logger.Infof("Subscription created: plan=%s user=%s", plan.Type, userID)
	metrics.RecordSubscription(plan.Type)

	s.sendReceipt(ctx, userID, sub)

	return &PurchaseResponse{Subscription: sub, Payment: payment}, nil
}

func (s *service) sendReceipt(ctx context.Context, userID string, sub *Subscription) {
	if s.mailer == nil || s.users == nil {
		return
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.Warn("receipt skipped, user lookup failed", "user_id", userID, "error", err)
		return
	}
	if err := s.mailer.SendSubscriptionReceipt(ctx, u.Email, u.Name, sub.PlanName, sub.PriceCents, sub.EndDate); err != nil {
		logger.Warn("failed to queue subscription receipt", "user_id", userID, "error", err)
	}
}

func (s *service) Current(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNoActiveSubscription
	}
	return sub, nil
}

func (s *service) Cancel(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := s.repo.CancelActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	logger.Infof("Subscription %s canceled by user %s", sub.ID, userID)
	return sub, nil
}
