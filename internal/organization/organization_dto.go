package organization

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type OrganizationResponse struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}
