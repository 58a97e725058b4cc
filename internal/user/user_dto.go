package user

type CreateUserRequest struct {
	OrganizationID uint64 `json:"organization_id" binding:"required"`
	Name           string `json:"name" binding:"required,max=255"`
	Email          string `json:"email" binding:"required,email,max=255"`
	Role           Role   `json:"role" binding:"required,oneof=employee admin"`
	DaysRemaining  *int   `json:"days_remaining" binding:"omitempty,min=0"`
}

type UserResponse struct {
	ID             uint64 `json:"id"`
	OrganizationID uint64 `json:"organization_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	DaysRemaining  int    `json:"days_remaining"`
	CreatedAt      string `json:"created_at"`
}
