package domain

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskNew        TaskStatus = "new"
	TaskInProgress TaskStatus = "in_progress"
	TaskSubmitted  TaskStatus = "submitted"
	TaskToReview   TaskStatus = "to_review"
	TaskDone       TaskStatus = "done"
	TaskCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNew, TaskInProgress, TaskSubmitted, TaskToReview, TaskDone, TaskCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status changes are expected.
func (s TaskStatus) Terminal() bool {
	return s == TaskDone || s == TaskCancelled
}

// ActiveStatuses are the statuses the overdue scan considers.
func ActiveStatuses() []TaskStatus {
	return []TaskStatus{TaskNew, TaskInProgress, TaskSubmitted, TaskToReview}
}

// ValidateTransition is the single place transition rules live. The current
// rule set accepts any known status after any other; tightening it later
// only changes this function, not the data shape.
func ValidateTransition(from, to TaskStatus) error {
	if !to.Valid() {
		return fmt.Errorf("unknown task status %q", to)
	}
	return nil
}

// CurrencyEGP is the only currency the service bills in.
const CurrencyEGP = "EGP"

// ServiceItem is one requested service on an order. DeliveryTime is the
// display label the order form uses (e.g. "48 ساعة").
type ServiceItem struct {
	Type         string `json:"type" validate:"required"`
	Language     string `json:"language"`
	DeliveryTime string `json:"delivery_time" validate:"required"`
}

type Task struct {
	ID   int64  `json:"id"`
	Code string `json:"code"` // human-facing order code, millisecond timestamp

	ClientName  string `json:"client_name" validate:"required"`
	ClientPhone string `json:"client_phone" validate:"required"`

	Services []ServiceItem `json:"services" validate:"required,min=1"`

	DesignerID  int64 `json:"designer_id" validate:"required"`
	ModeratorID int64 `json:"moderator_id" validate:"required"`

	Status TaskStatus `json:"status"`

	FinancialTotal     float64 `json:"financial_total"`
	FinancialPaid      float64 `json:"financial_paid"`
	FinancialRemaining float64 `json:"financial_remaining"`
	Currency           string  `json:"currency"`

	DeliveryURLs []string `json:"delivery_urls,omitempty"`

	TaskDate time.Time `json:"task_date"`
	DueDate  time.Time `json:"due_date"`

	Archived   bool       `json:"archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	OverdueNotified   bool       `json:"overdue_notified"`
	OverdueNotifiedAt *time.Time `json:"overdue_notified_at,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
