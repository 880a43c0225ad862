package domain

import "time"

// TaskComment is free-form discussion attached to a task. Plain CRUD, no
// lifecycle semantics.
type TaskComment struct {
	ID         int64     `json:"id"`
	TaskID     int64     `json:"task_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Text       string    `json:"text" validate:"required"`
	CreatedAt  time.Time `json:"created_at"`
}
