package leave

type CreateLeaveRequest struct {
	UserID    uint64 `json:"user_id" binding:"required"`
	PolicyID  uint64 `json:"policy_id" binding:"required"`
	LeaveType string `json:"leave_type" binding:"required,max=100"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type AdjudicateLeaveRequest struct {
	Status     string  `json:"status" binding:"required"`
	ApproverID *uint64 `json:"approver_id"`
}

type LeaveRequestResponse struct {
	ID         uint64  `json:"id"`
	UserID     uint64  `json:"user_id"`
	PolicyID   uint64  `json:"policy_id"`
	LeaveType  string  `json:"leave_type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Status     Status  `json:"status"`
	ApproverID *uint64 `json:"approver_id"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}
