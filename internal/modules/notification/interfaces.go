package notification

import (
	"context"
	"time"

	"cvstudio/internal/domain"
)

// Repository is the slice of the notification store the dispatcher and the
// retention job need.
type Repository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id, userID int64) error
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
