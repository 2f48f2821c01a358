package report

import (
	"context"
	"time"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/apperror"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/clock"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/metrics"
)

// windowPolicy turns the raw query into an inclusive [from, to] window.
// Returned errors must already be classified.
type windowPolicy func(q RangeQuery, now time.Time) (from, to time.Time, err error)

type reportDef[D, R any] struct {
	name    string
	failure string
	window  windowPolicy
	fetch   func(ctx context.Context, from, to time.Time) (D, error)
	shape   func(from, to time.Time, data D) R
}

// windowedReport is the shared normalize, validate, fetch, reshape pipeline
// behind every date-ranged report. BadRequest is decided before any fetch and
// is never reported as Internal.
func windowedReport[D, R any](ctx context.Context, clk clock.Clock, q RangeQuery, def reportDef[D, R]) (*R, error) {
	from, to, err := def.window(q, clk.Now().In(clk.Location()))
	if err != nil {
		return nil, classify(def, err)
	}
	if from.After(to) {
		return nil, classify(def, apperror.BadRequest("Start date must be before end date"))
	}

	data, err := def.fetch(ctx, from, to)
	if err != nil {
		return nil, classify(def, err)
	}

	metrics.RecordReport(def.name, "ok")
	out := def.shape(from, to, data)
	return &out, nil
}

func classify[D, R any](def reportDef[D, R], err error) error {
	if apperror.IsKind(err, apperror.KindBadRequest) {
		metrics.RecordReport(def.name, "bad_request")
		return err
	}
	metrics.RecordReport(def.name, "error")
	return apperror.Internal(def.failure, err)
}

func parseDay(value, field string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, apperror.BadRequest(field + " must be a YYYY-MM-DD date")
	}
	return d, nil
}

// requiredWindow needs both dates and covers them as whole days.
func requiredWindow(q RangeQuery, now time.Time) (time.Time, time.Time, error) {
	if q.StartDate == "" || q.EndDate == "" {
		return time.Time{}, time.Time{}, apperror.BadRequest("start_date and end_date are required")
	}
	start, err := parseDay(q.StartDate, "start_date", now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDay(q.EndDate, "end_date", now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return clock.StartOfDay(start), clock.EndOfDay(end), nil
}

// trailingWindow defaults the end to today and the start to days*24h before
// the end of that day.
func trailingWindow(days int) windowPolicy {
	return func(q RangeQuery, now time.Time) (time.Time, time.Time, error) {
		end := now
		if q.EndDate != "" {
			d, err := parseDay(q.EndDate, "end_date", now.Location())
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			end = d
		}
		end = clock.EndOfDay(end)

		start := end.Add(-time.Duration(days) * 24 * time.Hour)
		if q.StartDate != "" {
			d, err := parseDay(q.StartDate, "start_date", now.Location())
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			start = d
		}
		return clock.StartOfDay(start), end, nil
	}
}
