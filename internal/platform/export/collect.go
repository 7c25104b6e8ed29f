package export

import (
	"context"
	"errors"
	"time"

	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/reports"
)

// Collect gathers a Report for the week containing now. Corrupt collections
// are exported as empty rather than failing the download.
func Collect(ctx context.Context, store *records.Store, now time.Time) (Report, error) {
	svc := reports.NewService(store)
	summary, err := svc.Summary(ctx)
	if err != nil {
		return Report{}, err
	}
	lateness, err := svc.WeeklyLateness(ctx, now)
	if err != nil {
		return Report{}, err
	}
	employees, err := store.Employees(ctx)
	if err != nil && !errors.Is(err, records.ErrCorrupt) {
		return Report{}, err
	}
	start, end := reports.WeekRange(now)
	return Report{
		GeneratedAt: now,
		WeekStart:   start,
		WeekEnd:     end,
		Summary:     summary,
		Lateness:    lateness,
		Employees:   employees,
	}, nil
}

// FileName is the download name for a report artifact, e.g.
// hrdesk-report-2024-05-15.xlsx.
func FileName(now time.Time, ext string) string {
	return "hrdesk-report-" + now.Format("2006-01-02") + ext
}
