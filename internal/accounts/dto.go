package accounts

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type CreateAccountRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role" validate:"required"`
	PersonID *string `json:"person_id,omitempty"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

type LinkPersonRequest struct {
	PersonID string `json:"person_id" validate:"required"`
}
