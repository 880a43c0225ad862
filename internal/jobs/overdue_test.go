package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"cvstudio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTaskScanner struct {
	mock.Mock
}

func (m *MockTaskScanner) FindDueBetween(ctx context.Context, from, to time.Time, statuses []domain.TaskStatus) ([]domain.Task, error) {
	args := m.Called(ctx, from, to, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskScanner) MarkOverdueNotified(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockOverdueNotifier struct {
	mock.Mock
}

func (m *MockOverdueNotifier) NotifyTaskOverdue(ctx context.Context, designerID, moderatorID, taskID int64, code string, due time.Time) error {
	args := m.Called(ctx, designerID, moderatorID, taskID, code, due)
	return args.Error(0)
}

func TestOverdueDetector_Run_NotifiesAndStamps(t *testing.T) {
	mockTasks := new(MockTaskScanner)
	mockNotifs := new(MockOverdueNotifier)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(-30 * time.Minute)

	overdue := domain.Task{
		ID: 42, Code: "c1", DesignerID: 7, ModeratorID: 3,
		Status: domain.TaskInProgress, DueDate: due,
	}

	mockTasks.On("FindDueBetween", mock.Anything, now.Add(-time.Hour), now, domain.ActiveStatuses()).
		Return([]domain.Task{overdue}, nil)
	mockNotifs.On("NotifyTaskOverdue", mock.Anything, int64(7), int64(3), int64(42), "c1", due).Return(nil)
	mockTasks.On("MarkOverdueNotified", mock.Anything, int64(42), now).Return(nil)

	detector := NewOverdueDetector(mockTasks, mockNotifs, time.Hour)
	err := detector.Run(context.Background(), now)

	assert.NoError(t, err)
	mockTasks.AssertExpectations(t)
	mockNotifs.AssertExpectations(t)
}

func TestOverdueDetector_Run_SkipsAlreadyNotified(t *testing.T) {
	mockTasks := new(MockTaskScanner)
	mockNotifs := new(MockOverdueNotifier)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stamped := domain.Task{
		ID: 42, DesignerID: 7, ModeratorID: 3,
		Status: domain.TaskInProgress, DueDate: now.Add(-10 * time.Minute),
		OverdueNotified: true,
	}

	mockTasks.On("FindDueBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Task{stamped}, nil)

	detector := NewOverdueDetector(mockTasks, mockNotifs, time.Hour)
	err := detector.Run(context.Background(), now)

	assert.NoError(t, err)
	mockNotifs.AssertNotCalled(t, "NotifyTaskOverdue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockTasks.AssertNotCalled(t, "MarkOverdueNotified", mock.Anything, mock.Anything, mock.Anything)
}

func TestOverdueDetector_Run_AtMostOnceAcrossConsecutiveScans(t *testing.T) {
	mockTasks := new(MockTaskScanner)
	mockNotifs := new(MockOverdueNotifier)

	// due date falls in the first scan's window only
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	due := first.Add(-30 * time.Minute)

	task := domain.Task{
		ID: 42, Code: "c1", DesignerID: 7, ModeratorID: 3,
		Status: domain.TaskInProgress, DueDate: due,
	}

	mockTasks.On("FindDueBetween", mock.Anything, first.Add(-time.Hour), first, mock.Anything).
		Return([]domain.Task{task}, nil)
	mockTasks.On("FindDueBetween", mock.Anything, second.Add(-time.Hour), second, mock.Anything).
		Return([]domain.Task{}, nil)
	mockNotifs.On("NotifyTaskOverdue", mock.Anything, int64(7), int64(3), int64(42), "c1", due).Return(nil).Once()
	mockTasks.On("MarkOverdueNotified", mock.Anything, int64(42), first).Return(nil)

	detector := NewOverdueDetector(mockTasks, mockNotifs, time.Hour)

	assert.NoError(t, detector.Run(context.Background(), first))
	assert.NoError(t, detector.Run(context.Background(), second))

	mockNotifs.AssertNumberOfCalls(t, "NotifyTaskOverdue", 1)
}

func TestOverdueDetector_Run_NotStampedWhenNotificationFails(t *testing.T) {
	mockTasks := new(MockTaskScanner)
	mockNotifs := new(MockOverdueNotifier)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task := domain.Task{
		ID: 42, DesignerID: 7, ModeratorID: 3,
		Status: domain.TaskNew, DueDate: now.Add(-5 * time.Minute),
	}

	mockTasks.On("FindDueBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Task{task}, nil)
	mockNotifs.On("NotifyTaskOverdue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("dispatcher down"))

	detector := NewOverdueDetector(mockTasks, mockNotifs, time.Hour)
	err := detector.Run(context.Background(), now)

	assert.NoError(t, err)
	mockTasks.AssertNotCalled(t, "MarkOverdueNotified", mock.Anything, mock.Anything, mock.Anything)
}

func TestOverdueDetector_Run_QueryErrorPropagates(t *testing.T) {
	mockTasks := new(MockTaskScanner)
	mockNotifs := new(MockOverdueNotifier)

	queryErr := errors.New("db gone")
	mockTasks.On("FindDueBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, queryErr)

	detector := NewOverdueDetector(mockTasks, mockNotifs, time.Hour)
	err := detector.Run(context.Background(), time.Now())

	assert.ErrorIs(t, err, queryErr)
}

func TestNewOverdueDetector_DefaultsInterval(t *testing.T) {
	detector := NewOverdueDetector(new(MockTaskScanner), new(MockOverdueNotifier), 0)
	assert.Equal(t, time.Hour, detector.interval)
}
