package attendance

import "context"

// AttendanceService is the interactive surface of the engine. Scheduled
// reconciliation enters through the cron jobs, not through this interface.
type AttendanceService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (CheckInResponse, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (CheckOutResponse, error)
	GetHistory(ctx context.Context, employeeID int64) ([]RecordResponse, error)
	GetByDate(ctx context.Context, date string) ([]RecordResponse, error)
	GetSummary(ctx context.Context, date string) (SummaryResponse, error)
	InitializeDay(ctx context.Context) (InitializeResponse, error)
}
