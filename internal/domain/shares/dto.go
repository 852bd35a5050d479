package shares

type ShareRequest struct {
	FileID      string `json:"fileId" validate:"required"`
	TargetEmail string `json:"targetEmail" validate:"required,email"`
	Role        string `json:"role" validate:"omitempty,oneof=viewer editor"`
}
