package user

type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
	Role  string `json:"role" binding:"required"`
}

type PushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
