package domain

import "time"

type NotificationType string

const (
	NotificationTask    NotificationType = "task"
	NotificationSystem  NotificationType = "system"
	NotificationPayment NotificationType = "payment"
)

// Notification is a persisted per-user message produced by a lifecycle
// event. Records are created by the dispatcher, flipped to read by the
// recipient, and retired by the retention job once read and stale.
type Notification struct {
	ID      int64            `json:"id"`
	UserID  int64            `json:"user_id"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Body    string           `json:"body,omitempty"`
	Link    string           `json:"link,omitempty"`
	TaskID  *int64           `json:"task_id,omitempty"`
	IsRead  bool             `json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}
