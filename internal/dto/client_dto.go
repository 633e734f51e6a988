package dto

type CreateClientReq struct {
	Name    string `json:"name" binding:"required"`
	Company string `json:"company"`
	Email   string `json:"email" binding:"omitempty,email"`
	Notes   string `json:"notes"`
}
