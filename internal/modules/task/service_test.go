package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"cvstudio/internal/domain"
	"cvstudio/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// Mock repositories
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t *domain.Task) error {
	args := m.Called(ctx, t)
	if t != nil {
		t.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, f repository.ListFilter) ([]domain.Task, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) BulkUpdateStatus(ctx context.Context, ids []int64, status domain.TaskStatus, now time.Time) error {
	args := m.Called(ctx, ids, status, now)
	return args.Error(0)
}

func (m *MockTaskRepository) BulkArchive(ctx context.Context, ids []int64, now time.Time) error {
	args := m.Called(ctx, ids, now)
	return args.Error(0)
}

func (m *MockTaskRepository) BulkDelete(ctx context.Context, ids []int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) NotifyTaskCreated(ctx context.Context, designerID, moderatorID, taskID int64, code string) error {
	args := m.Called(ctx, designerID, moderatorID, taskID, code)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyTaskStatusChanged(ctx context.Context, designerID, moderatorID, taskID int64, code string, status domain.TaskStatus) error {
	args := m.Called(ctx, designerID, moderatorID, taskID, code, status)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyDeliveryUploaded(ctx context.Context, moderatorID, taskID int64, code string, fileCount int) error {
	args := m.Called(ctx, moderatorID, taskID, code, fileCount)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyPaymentUpdated(ctx context.Context, designerID, moderatorID, taskID int64, code string, total, paid float64) error {
	args := m.Called(ctx, designerID, moderatorID, taskID, code, total, paid)
	return args.Error(0)
}

func newTestService() (*Service, *MockTaskRepository, *MockUserReader, *MockNotificationSender) {
	mockTasks := new(MockTaskRepository)
	mockUsers := new(MockUserReader)
	mockNotifs := new(MockNotificationSender)
	return NewService(mockTasks, mockUsers, mockNotifs), mockTasks, mockUsers, mockNotifs
}

func designerUser(id int64) *domain.User {
	return &domain.User{ID: id, Name: "Designer", Role: domain.RoleDesigner}
}

func moderatorUser(id int64) *domain.User {
	return &domain.User{ID: id, Name: "Moderator", Role: domain.RoleModerator}
}

func TestService_CreateTask_Success(t *testing.T) {
	service, mockTasks, mockUsers, mockNotifs := newTestService()

	mockUsers.On("GetByID", mock.Anything, int64(7)).Return(designerUser(7), nil)
	mockUsers.On("GetByID", mock.Anything, int64(3)).Return(moderatorUser(3), nil)
	mockTasks.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockNotifs.On("NotifyTaskCreated", mock.Anything, int64(7), int64(3), int64(999), mock.Anything).Return(nil)

	taskDate := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	req := CreateTaskRequest{
		ClientName:  "Ahmed Hassan",
		ClientPhone: "+20 111 222 3344",
		Services: []domain.ServiceItem{
			{Type: "cv", Language: "ar", DeliveryTime: "24 ساعة"},
			{Type: "cover_letter", Language: "en", DeliveryTime: "48 ساعة"},
		},
		DesignerID:     7,
		ModeratorID:    3,
		FinancialTotal: 500,
		FinancialPaid:  200,
		TaskDate:       taskDate,
	}

	created, err := service.CreateTask(context.Background(), req, Actor{UserID: 3, Role: domain.RoleModerator})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, domain.TaskNew, created.Status)
	assert.Equal(t, domain.CurrencyEGP, created.Currency)
	// due date follows the slowest service, 48h here
	assert.Equal(t, taskDate.Add(48*time.Hour), created.DueDate)
	assert.Equal(t, 300.0, created.FinancialRemaining)
	assert.NotEmpty(t, created.Code)
	mockNotifs.AssertExpectations(t)
}

func TestService_CreateTask_ForbiddenForDesigner(t *testing.T) {
	service, _, _, _ := newTestService()

	_, err := service.CreateTask(context.Background(), CreateTaskRequest{}, Actor{UserID: 7, Role: domain.RoleDesigner})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_CreateTask_ValidationErrors(t *testing.T) {
	service, _, _, _ := newTestService()
	actor := Actor{UserID: 1, Role: domain.RoleAdmin}

	base := CreateTaskRequest{
		ClientName:  "Client",
		ClientPhone: "+20 100 000 0000",
		Services:    []domain.ServiceItem{{Type: "cv", DeliveryTime: "24 ساعة"}},
		DesignerID:  7,
		ModeratorID: 3,
		TaskDate:    time.Now(),
	}

	noName := base
	noName.ClientName = ""
	_, err := service.CreateTask(context.Background(), noName, actor)
	assert.ErrorIs(t, err, ErrValidation)

	noServices := base
	noServices.Services = nil
	_, err = service.CreateTask(context.Background(), noServices, actor)
	assert.ErrorIs(t, err, ErrValidation)

	negativePaid := base
	negativePaid.FinancialPaid = -1
	_, err = service.CreateTask(context.Background(), negativePaid, actor)
	assert.ErrorIs(t, err, ErrValidation)

	noDate := base
	noDate.TaskDate = time.Time{}
	_, err = service.CreateTask(context.Background(), noDate, actor)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_CreateTask_DesignerRoleChecked(t *testing.T) {
	service, _, mockUsers, _ := newTestService()

	// assigned "designer" actually holds the moderator role
	mockUsers.On("GetByID", mock.Anything, int64(7)).Return(moderatorUser(7), nil)

	req := CreateTaskRequest{
		ClientName:  "Client",
		ClientPhone: "+20 100 000 0000",
		Services:    []domain.ServiceItem{{Type: "cv", DeliveryTime: "24 ساعة"}},
		DesignerID:  7,
		ModeratorID: 3,
		TaskDate:    time.Now(),
	}

	_, err := service.CreateTask(context.Background(), req, Actor{UserID: 1, Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_CreateTask_MissingDesigner(t *testing.T) {
	service, _, mockUsers, _ := newTestService()

	mockUsers.On("GetByID", mock.Anything, int64(7)).Return(nil, gorm.ErrRecordNotFound)

	req := CreateTaskRequest{
		ClientName:  "Client",
		ClientPhone: "+20 100 000 0000",
		Services:    []domain.ServiceItem{{Type: "cv", DeliveryTime: "24 ساعة"}},
		DesignerID:  7,
		ModeratorID: 3,
		TaskDate:    time.Now(),
	}

	_, err := service.CreateTask(context.Background(), req, Actor{UserID: 1, Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_CreateTask_NotificationFailureIgnored(t *testing.T) {
	service, mockTasks, mockUsers, mockNotifs := newTestService()

	mockUsers.On("GetByID", mock.Anything, int64(7)).Return(designerUser(7), nil)
	mockUsers.On("GetByID", mock.Anything, int64(3)).Return(moderatorUser(3), nil)
	mockTasks.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockNotifs.On("NotifyTaskCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("dispatcher down"))

	req := CreateTaskRequest{
		ClientName:  "Client",
		ClientPhone: "+20 100 000 0000",
		Services:    []domain.ServiceItem{{Type: "cv", DeliveryTime: "24 ساعة"}},
		DesignerID:  7,
		ModeratorID: 3,
		TaskDate:    time.Now(),
	}

	created, err := service.CreateTask(context.Background(), req, Actor{UserID: 1, Role: domain.RoleAdmin})

	assert.NoError(t, err)
	assert.NotNil(t, created)
}

func TestService_UpdateStatus_StampsCompletedOnce(t *testing.T) {
	service, mockTasks, _, mockNotifs := newTestService()

	existing := &domain.Task{
		ID:          42,
		Code:        "1700000000000",
		DesignerID:  7,
		ModeratorID: 3,
		Status:      domain.TaskToReview,
	}
	mockTasks.On("GetByID", mock.Anything, int64(42)).Return(existing, nil)
	mockTasks.On("UpdateFields", mock.Anything, int64(42), mock.MatchedBy(func(fields map[string]any) bool {
		_, hasCompleted := fields["completed_at"]
		return fields["status"] == string(domain.TaskDone) && hasCompleted
	})).Return(nil)
	mockNotifs.On("NotifyTaskStatusChanged", mock.Anything, int64(7), int64(3), int64(42), "1700000000000", domain.TaskDone).Return(nil)

	updated, err := service.UpdateStatus(context.Background(), 42, domain.TaskDone, Actor{UserID: 3, Role: domain.RoleModerator})

	assert.NoError(t, err)
	assert.Equal(t, domain.TaskDone, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
	mockTasks.AssertExpectations(t)
}

func TestService_UpdateStatus_CompletedAtNotOverwritten(t *testing.T) {
	service, mockTasks, _, mockNotifs := newTestService()

	first := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	existing := &domain.Task{
		ID:          42,
		DesignerID:  7,
		ModeratorID: 3,
		Status:      domain.TaskDone,
		CompletedAt: &first,
	}
	mockTasks.On("GetByID", mock.Anything, int64(42)).Return(existing, nil)
	mockTasks.On("UpdateFields", mock.Anything, int64(42), mock.MatchedBy(func(fields map[string]any) bool {
		_, hasCompleted := fields["completed_at"]
		return !hasCompleted
	})).Return(nil)
	mockNotifs.On("NotifyTaskStatusChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	updated, err := service.UpdateStatus(context.Background(), 42, domain.TaskDone, Actor{UserID: 1, Role: domain.RoleAdmin})

	assert.NoError(t, err)
	assert.Equal(t, first, *updated.CompletedAt)
	mockTasks.AssertExpectations(t)
}

func TestService_UpdateStatus_ForbiddenForUnassigned(t *testing.T) {
	service, mockTasks, _, _ := newTestService()

	existing := &domain.Task{ID: 42, DesignerID: 7, ModeratorID: 3, Status: domain.TaskNew}
	mockTasks.On("GetByID", mock.Anything, int64(42)).Return(existing, nil)

	_, err := service.UpdateStatus(context.Background(), 42, domain.TaskInProgress, Actor{UserID: 99, Role: domain.RoleDesigner})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_UpdateStatus_UnknownStatusRejected(t *testing.T) {
	service, mockTasks, _, _ := newTestService()

	existing := &domain.Task{ID: 42, DesignerID: 7, ModeratorID: 3, Status: domain.TaskNew}
	mockTasks.On("GetByID", mock.Anything, int64(42)).Return(existing, nil)

	_, err := service.UpdateStatus(context.Background(), 42, domain.TaskStatus("archived"), Actor{UserID: 1, Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_UpdateStatus_NotFound(t *testing.T) {
	service, mockTasks, _, _ := newTestService()

	mockTasks.On("GetByID", mock.Anything, int64(42)).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.UpdateStatus(context.Background(), 42, domain.TaskDone, Actor{UserID: 1, Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UploadDelivery_DesignerOnly(t *testing.T) {
	service, mockTasks, _, _ := newTestService()

	existing := &domain.Task{ID: 42, DesignerID: 7, ModeratorID: 3, Status: domain.TaskInProgress}
	mockTasks.On("GetByID", mock.Anything, int64(42)).Return(existing, nil)

	// the moderator on the task cannot deliver, only designer 7 can
	_, err := service.UploadDelivery(context.Background(), 42, []string{"https://cdn/x.pdf"}, Actor{UserID: 3, Role: domain.RoleModerator})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_UploadDelivery_ForcesSubmitted(t *testing.T) {
	service, mockTasks, _, mockNotifs := newTestService()

	existing := &domain.Task{ID: 42, Code: "c1", DesignerID: 7, ModeratorID: 3, Status: domain.TaskInProgress}
	mockTasks.On("GetByID", mock.Anything, int64(42)).Return(existing, nil)
	mockTasks.On("UpdateFields", mock.Anything, int64(42), mock.MatchedBy(func(fields map[string]any) bool {
		return fields["status"] == string(domain.TaskSubmitted)
	})).Return(nil)
	mockNotifs.On("NotifyDeliveryUploaded", mock.Anything, int64(3), int64(42), "c1", 2).Return(nil)

	urls := []string{"https://cdn/a.pdf", "https://cdn/b.pdf"}
	updated, err := service.UploadDelivery(context.Background(), 42, urls, Actor{UserID: 7, Role: domain.RoleDesigner})

	assert.NoError(t, err)
	assert.Equal(t, domain.TaskSubmitted, updated.Status)
	assert.Equal(t, urls, updated.DeliveryURLs)
	mockNotifs.AssertExpectations(t)
}

func TestService_UpdateFinancials_AdminOnly(t *testing.T) {
	service, _, _, _ := newTestService()

	_, err := service.UpdateFinancials(context.Background(), 42, 500, 300, Actor{UserID: 3, Role: domain.RoleModerator})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_UpdateFinancials_RecomputesRemaining(t *testing.T) {
	service, mockTasks, _, mockNotifs := newTestService()

	existing := &domain.Task{
		ID: 42, Code: "c1", DesignerID: 7, ModeratorID: 3,
		FinancialTotal: 500, FinancialPaid: 100, FinancialRemaining: 400,
	}
	mockTasks.On("GetByID", mock.Anything, int64(42)).Return(existing, nil)
	mockTasks.On("UpdateFields", mock.Anything, int64(42), mock.MatchedBy(func(fields map[string]any) bool {
		return fields["financial_total"] == 500.0 &&
			fields["financial_paid"] == 350.0 &&
			fields["financial_remaining"] == 150.0
	})).Return(nil)
	mockNotifs.On("NotifyPaymentUpdated", mock.Anything, int64(7), int64(3), int64(42), "c1", 500.0, 350.0).Return(nil)

	updated, err := service.UpdateFinancials(context.Background(), 42, 500, 350, Actor{UserID: 1, Role: domain.RoleAdmin})

	assert.NoError(t, err)
	assert.Equal(t, 150.0, updated.FinancialRemaining)
	mockTasks.AssertExpectations(t)
}

func TestService_ListTasks_ScopedToDesigner(t *testing.T) {
	service, mockTasks, _, _ := newTestService()

	mockTasks.On("List", mock.Anything, mock.MatchedBy(func(f repository.ListFilter) bool {
		return f.DesignerID == 7
	})).Return([]domain.Task{}, nil)

	_, err := service.ListTasks(context.Background(), repository.ListFilter{}, Actor{UserID: 7, Role: domain.RoleDesigner})

	assert.NoError(t, err)
	mockTasks.AssertExpectations(t)
}

func TestService_GetTask_HiddenFromOtherDesigner(t *testing.T) {
	service, mockTasks, _, _ := newTestService()

	existing := &domain.Task{ID: 42, DesignerID: 7, ModeratorID: 3}
	mockTasks.On("GetByID", mock.Anything, int64(42)).Return(existing, nil)

	_, err := service.GetTask(context.Background(), 42, Actor{UserID: 8, Role: domain.RoleDesigner})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := service.GetTask(context.Background(), 42, Actor{UserID: 5, Role: domain.RoleTeamLeader})
	assert.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)
}

func TestService_DeleteTask_AdminOnly(t *testing.T) {
	service, mockTasks, _, _ := newTestService()

	err := service.DeleteTask(context.Background(), 42, Actor{UserID: 3, Role: domain.RoleModerator})
	assert.ErrorIs(t, err, ErrForbidden)

	mockTasks.On("Delete", mock.Anything, int64(42)).Return(nil)
	err = service.DeleteTask(context.Background(), 42, Actor{UserID: 1, Role: domain.RoleAdmin})
	assert.NoError(t, err)
}

func TestService_Bulk_StatusChange(t *testing.T) {
	service, mockTasks, _, _ := newTestService()

	ids := []int64{1, 2, 3}
	mockTasks.On("BulkUpdateStatus", mock.Anything, ids, domain.TaskCancelled, mock.Anything).Return(nil)

	err := service.Bulk(context.Background(), BulkRequest{
		TaskIDs: ids,
		Action:  BulkActionStatus,
		Status:  domain.TaskCancelled,
	}, Actor{UserID: 3, Role: domain.RoleModerator})

	assert.NoError(t, err)
	mockTasks.AssertExpectations(t)
}

func TestService_Bulk_DeleteRequiresAdmin(t *testing.T) {
	service, _, _, _ := newTestService()

	err := service.Bulk(context.Background(), BulkRequest{
		TaskIDs: []int64{1},
		Action:  BulkActionDelete,
	}, Actor{UserID: 3, Role: domain.RoleModerator})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_Bulk_FailurePropagates(t *testing.T) {
	service, mockTasks, _, _ := newTestService()

	repoErr := errors.New("deadlock")
	mockTasks.On("BulkArchive", mock.Anything, []int64{1, 2}, mock.Anything).Return(repoErr)

	err := service.Bulk(context.Background(), BulkRequest{
		TaskIDs: []int64{1, 2},
		Action:  BulkActionArchive,
	}, Actor{UserID: 1, Role: domain.RoleAdmin})

	assert.ErrorIs(t, err, repoErr)
}

func TestService_Bulk_UnknownAction(t *testing.T) {
	service, _, _, _ := newTestService()

	err := service.Bulk(context.Background(), BulkRequest{
		TaskIDs: []int64{1},
		Action:  BulkAction("merge"),
	}, Actor{UserID: 1, Role: domain.RoleAdmin})

	assert.ErrorIs(t, err, ErrValidation)
}
