package earnings

import (
	"context"
	"time"

	"cvstudio/internal/domain"
)

// Commission rule: a flat advertising cost is deducted from the paid amount
// before the moderator's cut is applied. Tasks that never clear the
// deduction contribute nothing, never a negative amount.
const (
	commissionRate = 0.20
	adCostFlat     = 100.0
)

// TaskReader is the slice of the task store the calculator reads.
type TaskReader interface {
	ListCompletedByModerator(ctx context.Context, moderatorID int64, from, to time.Time) ([]domain.Task, error)
}

// Summary is one moderator's commission for one calendar month.
type Summary struct {
	ModeratorID int64   `json:"moderator_id"`
	Month       string  `json:"month"`
	TaskCount   int     `json:"task_count"`
	TotalPaid   float64 `json:"total_paid"`
	Earnings    float64 `json:"earnings"`
}

type Service struct {
	tasks TaskReader
}

func NewService(tasks TaskReader) *Service {
	return &Service{tasks: tasks}
}

// CommissionFor computes a single task's contribution. Only completed EGP
// tasks count; everything else is zero.
func CommissionFor(t domain.Task) float64 {
	if t.Status != domain.TaskDone {
		return 0
	}
	if t.Currency != domain.CurrencyEGP {
		return 0
	}
	if t.FinancialPaid <= adCostFlat {
		return 0
	}
	return commissionRate * (t.FinancialPaid - adCostFlat)
}

// MonthlyEarnings aggregates a moderator's commission for the calendar month
// containing the given time. Read-only; safe to recompute on demand.
func (s *Service) MonthlyEarnings(ctx context.Context, moderatorID int64, month time.Time) (*Summary, error) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	tasks, err := s.tasks.ListCompletedByModerator(ctx, moderatorID, from, to)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		ModeratorID: moderatorID,
		Month:       from.Format("2006-01"),
	}
	for _, t := range tasks {
		sum.TaskCount++
		sum.TotalPaid += t.FinancialPaid
		sum.Earnings += CommissionFor(t)
	}
	return sum, nil
}
