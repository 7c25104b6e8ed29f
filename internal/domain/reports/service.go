package reports

import (
	"context"
	"errors"
	"time"

	"hrdesk/internal/domain/records"
)

type Service struct {
	Store *records.Store
}

func NewService(store *records.Store) *Service {
	return &Service{Store: store}
}

// Summary reads employees and trainings. Corrupt collections count as empty.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	employees, err := s.Store.Employees(ctx)
	if err != nil && !errors.Is(err, records.ErrCorrupt) {
		return Summary{}, err
	}
	trainings, err := records.Get[records.Training](ctx, s.Store, records.Trainings)
	if err != nil && !errors.Is(err, records.ErrCorrupt) {
		return Summary{}, err
	}
	return Summarize(employees, len(trainings)), nil
}

func (s *Service) WeeklyLateness(ctx context.Context, now time.Time) ([]LatenessRow, error) {
	entries, err := records.Get[records.TimeEntry](ctx, s.Store, records.TimeTracking)
	if err != nil && !errors.Is(err, records.ErrCorrupt) {
		return nil, err
	}
	return WeeklyLateness(entries, now), nil
}

// Dashboard is the summary plus this week's lateness.
func (s *Service) Dashboard(ctx context.Context) (map[string]any, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Store.Now()
	lateness, err := s.WeeklyLateness(ctx, now)
	if err != nil {
		return nil, err
	}
	start, end := WeekRange(now)
	return map[string]any{
		"summary":   summary,
		"lateness":  lateness,
		"weekStart": start.Format(time.RFC3339),
		"weekEnd":   end.Format(time.RFC3339),
	}, nil
}
