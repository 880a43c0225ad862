package task

import (
	"context"
	"time"

	"cvstudio/internal/domain"
	"cvstudio/internal/repository"
)

// TaskRepository defines the interface for task persistence
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, f repository.ListFilter) ([]domain.Task, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
	BulkUpdateStatus(ctx context.Context, ids []int64, status domain.TaskStatus, now time.Time) error
	BulkArchive(ctx context.Context, ids []int64, now time.Time) error
	BulkDelete(ctx context.Context, ids []int64) error
}

// UserReader resolves assignment ids to user records
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// NotificationSender is the dispatcher as the lifecycle sees it. Every call
// is best-effort: failures are logged by the caller and never fail the
// triggering write.
type NotificationSender interface {
	NotifyTaskCreated(ctx context.Context, designerID, moderatorID, taskID int64, code string) error
	NotifyTaskStatusChanged(ctx context.Context, designerID, moderatorID, taskID int64, code string, status domain.TaskStatus) error
	NotifyDeliveryUploaded(ctx context.Context, moderatorID, taskID int64, code string, fileCount int) error
	NotifyPaymentUpdated(ctx context.Context, designerID, moderatorID, taskID int64, code string, total, paid float64) error
}
