package task

import (
	"time"

	"cvstudio/internal/domain"
)

type CreateTaskRequest struct {
	ClientName  string               `json:"client_name" binding:"required"`
	ClientPhone string               `json:"client_phone" binding:"required"`
	Services    []domain.ServiceItem `json:"services" binding:"required,min=1"`
	DesignerID  int64                `json:"designer_id" binding:"required"`
	ModeratorID int64                `json:"moderator_id" binding:"required"`

	FinancialTotal float64 `json:"financial_total" binding:"required,gte=0"`
	FinancialPaid  float64 `json:"financial_paid" binding:"gte=0"`

	TaskDate time.Time `json:"task_date" binding:"required"`
}

type UpdateStatusRequest struct {
	Status domain.TaskStatus `json:"status" binding:"required"`
}

type UploadDeliveryRequest struct {
	// URLs come back opaque from the blob-storage collaborator that handled
	// the actual upload.
	URLs []string `json:"urls" binding:"required,min=1"`
}

// UpdateFinancialsRequest carries both amounts as pointers: zero is a valid
// value, but a body missing either amount is rejected instead of silently
// resetting the stored one.
type UpdateFinancialsRequest struct {
	FinancialTotal *float64 `json:"financial_total" binding:"required,gte=0"`
	FinancialPaid  *float64 `json:"financial_paid" binding:"required,gte=0"`
}

type BulkAction string

const (
	BulkActionStatus  BulkAction = "status"
	BulkActionArchive BulkAction = "archive"
	BulkActionDelete  BulkAction = "delete"
)

type BulkRequest struct {
	TaskIDs []int64           `json:"task_ids" binding:"required,min=1"`
	Action  BulkAction        `json:"action" binding:"required"`
	Status  domain.TaskStatus `json:"status,omitempty"`
}
