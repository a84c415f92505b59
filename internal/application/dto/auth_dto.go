package dto

import "time"

// LoginRequest entrada para login del operador de caja.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OperatorResponse salida de un operador (sin password).
type OperatorResponse struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     string    `json:"email"`
	BranchID  string    `json:"branch_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse salida con token JWT y el operador autenticado.
type LoginResponse struct {
	Token    string           `json:"token"`
	Operator OperatorResponse `json:"operator"`
}

// RegisterOperatorRequest alta de un operador de caja.
type RegisterOperatorRequest struct {
	Nombre   string `json:"nombre" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	BranchID string `json:"branch_id" validate:"required"`
}
