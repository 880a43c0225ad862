package domain

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleModerator  UserRole = "moderator"
	RoleDesigner   UserRole = "designer"
	RoleClient     UserRole = "client"
	RoleTeamLeader UserRole = "team_leader"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleDesigner, RoleClient, RoleTeamLeader:
		return true
	}
	return false
}

// User is an identity record issued by the external auth collaborator. The
// backend keeps it for assignment lookups and for the push token the
// downstream delivery listener reads.
type User struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name" validate:"required"`
	Email string   `json:"email" validate:"required,email"`
	Phone string   `json:"phone,omitempty"`
	Role  UserRole `json:"role" validate:"required"`

	// PushToken is consumed by the push-delivery collaborator, never by
	// this service.
	PushToken string `json:"push_token,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
