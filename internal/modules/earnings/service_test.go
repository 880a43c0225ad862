package earnings

import (
	"context"
	"errors"
	"testing"
	"time"

	"cvstudio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTaskReader struct {
	mock.Mock
}

func (m *MockTaskReader) ListCompletedByModerator(ctx context.Context, moderatorID int64, from, to time.Time) ([]domain.Task, error) {
	args := m.Called(ctx, moderatorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func doneTask(paid float64) domain.Task {
	return domain.Task{
		Status:        domain.TaskDone,
		Currency:      domain.CurrencyEGP,
		FinancialPaid: paid,
	}
}

func TestCommissionFor(t *testing.T) {
	// 20% of what remains after the 100 EGP advertising cost
	assert.Equal(t, 80.0, CommissionFor(doneTask(500)))
	assert.Equal(t, 20.0, CommissionFor(doneTask(200)))

	// at or below the advertising cost nothing is earned
	assert.Equal(t, 0.0, CommissionFor(doneTask(100)))
	assert.Equal(t, 0.0, CommissionFor(doneTask(40)))
	assert.Equal(t, 0.0, CommissionFor(doneTask(0)))

	// just above the threshold
	assert.InDelta(t, 0.2, CommissionFor(doneTask(101)), 1e-9)
}

func TestCommissionFor_PaidIncreaseScalesByRate(t *testing.T) {
	base := CommissionFor(doneTask(300))
	bumped := CommissionFor(doneTask(450))
	assert.InDelta(t, 0.20*150, bumped-base, 1e-9)
}

func TestCommissionFor_NonDoneAndForeignCurrency(t *testing.T) {
	inProgress := doneTask(500)
	inProgress.Status = domain.TaskInProgress
	assert.Equal(t, 0.0, CommissionFor(inProgress))

	usd := doneTask(500)
	usd.Currency = "USD"
	assert.Equal(t, 0.0, CommissionFor(usd))
}

func TestMonthlyEarnings_Aggregates(t *testing.T) {
	mockTasks := new(MockTaskReader)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mockTasks.On("ListCompletedByModerator", mock.Anything, int64(3), from, to).
		Return([]domain.Task{doneTask(500), doneTask(200), doneTask(80)}, nil)

	service := NewService(mockTasks)
	sum, err := service.MonthlyEarnings(context.Background(), 3, time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.Equal(t, "2026-02", sum.Month)
	assert.Equal(t, 3, sum.TaskCount)
	assert.Equal(t, 780.0, sum.TotalPaid)
	// 80 + 20 + 0
	assert.Equal(t, 100.0, sum.Earnings)
	mockTasks.AssertExpectations(t)
}

func TestMonthlyEarnings_EmptyMonth(t *testing.T) {
	mockTasks := new(MockTaskReader)
	mockTasks.On("ListCompletedByModerator", mock.Anything, int64(3), mock.Anything, mock.Anything).
		Return([]domain.Task{}, nil)

	service := NewService(mockTasks)
	sum, err := service.MonthlyEarnings(context.Background(), 3, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 0, sum.TaskCount)
	assert.Equal(t, 0.0, sum.Earnings)
}

func TestMonthlyEarnings_RepoErrorPropagates(t *testing.T) {
	mockTasks := new(MockTaskReader)

	repoErr := errors.New("db gone")
	mockTasks.On("ListCompletedByModerator", mock.Anything, int64(3), mock.Anything, mock.Anything).
		Return(nil, repoErr)

	service := NewService(mockTasks)
	_, err := service.MonthlyEarnings(context.Background(), 3, time.Now())

	assert.ErrorIs(t, err, repoErr)
}
