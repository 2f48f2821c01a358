package report

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/apperror"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/clock"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/metrics"
)

const (
	dateLayout          = "2006-01-02"
	defaultTrailingDays = 30
)

type Service interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetRevenueReport(ctx context.Context, q RangeQuery) (*RevenueReport, error)
	GetAttendanceReport(ctx context.Context, q RangeQuery) (*AttendanceReport, error)
}

type service struct {
	repo         Repository
	clock        clock.Clock
	popularLimit int
}

func NewService(repo Repository, clk clock.Clock, popularLimit int) Service {
	if popularLimit <= 0 {
		popularLimit = 5
	}
	return &service{
		repo:         repo,
		clock:        clk,
		popularLimit: popularLimit,
	}
}

// GetDashboardStats runs the six aggregate queries concurrently. The first
// failure cancels the rest and no partial result is returned.
func (s *service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := s.clock.Now().In(s.clock.Location())
	monthStart := clock.StartOfMonth(now)
	dayStart := clock.StartOfDay(now)

	stats := &DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalMembers, err = s.repo.GetTotalMembers(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveMembers, err = s.repo.GetActiveMembers(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = s.repo.GetTotalRevenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.MonthlyRevenue, err = s.repo.GetMonthlyRevenue(gctx, monthStart, monthStart.AddDate(0, 1, 0))
		return err
	})
	g.Go(func() (err error) {
		stats.TodayCheckIns, err = s.repo.GetTodayCheckIns(gctx, dayStart, dayStart.AddDate(0, 0, 1))
		return err
	})
	g.Go(func() (err error) {
		stats.PopularClasses, err = s.repo.GetPopularClasses(gctx, s.popularLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		metrics.RecordReport("dashboard", "error")
		return nil, apperror.Internal("Failed to fetch dashboard statistics", err)
	}

	metrics.RecordReport("dashboard", "ok")
	return stats, nil
}

func (s *service) GetRevenueReport(ctx context.Context, q RangeQuery) (*RevenueReport, error) {
	return windowedReport(ctx, s.clock, q, reportDef[*RevenueData, RevenueReport]{
		name:    "revenue",
		failure: "Failed to fetch revenue report",
		window:  requiredWindow,
		fetch:   s.repo.GetRevenueByDateRange,
		shape: func(from, to time.Time, data *RevenueData) RevenueReport {
			daily := make([]RevenueDay, 0, len(data.Daily))
			for _, d := range data.Daily {
				daily = append(daily, RevenueDay{
					Date:             formatDay(d.Date),
					Revenue:          d.Revenue,
					TransactionCount: d.TransactionCount,
				})
			}
			return RevenueReport{
				StartDate:    from,
				EndDate:      to,
				TotalRevenue: data.TotalRevenue,
				Daily:        daily,
			}
		},
	})
}

func (s *service) GetAttendanceReport(ctx context.Context, q RangeQuery) (*AttendanceReport, error) {
	return windowedReport(ctx, s.clock, q, reportDef[*AttendanceData, AttendanceReport]{
		name:    "attendance",
		failure: "Failed to fetch attendance report",
		window:  trailingWindow(defaultTrailingDays),
		fetch:   s.repo.GetAttendanceByDateRange,
		shape: func(from, to time.Time, data *AttendanceData) AttendanceReport {
			daily := make([]AttendanceDay, 0, len(data.Daily))
			for _, d := range data.Daily {
				daily = append(daily, AttendanceDay{
					Date:          formatDay(d.Date),
					CheckIns:      d.CheckIns,
					UniqueMembers: d.UniqueMembers,
				})
			}
			return AttendanceReport{
				StartDate:     from,
				EndDate:       to,
				TotalCheckIns: data.TotalCheckIns,
				AveragePerDay: data.AveragePerDay,
				Daily:         daily,
			}
		},
	})
}

// formatDay renders the UTC calendar date of t.
func formatDay(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
