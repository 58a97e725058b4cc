package leavepolicy

type CreateLeavePolicyRequest struct {
	OrganizationID uint64 `json:"organization_id" binding:"required"`
	LeaveType      string `json:"leave_type" binding:"required,max=100"`
	MaxDays        *int   `json:"max_days" binding:"required,min=0"`
}

type LeavePolicyResponse struct {
	ID             uint64 `json:"id"`
	OrganizationID uint64 `json:"organization_id"`
	LeaveType      string `json:"leave_type"`
	MaxDays        int    `json:"max_days"`
	CreatedAt      string `json:"created_at"`
}
