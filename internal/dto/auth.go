package dto

import "time"

// LoginRequest represents the login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userID"`
	Roles     []string  `json:"roles"`
}

// CreateUserRequest is used by the admin CLI to provision users.
type CreateUserRequest struct {
	Email    string   `validate:"required,email"`
	Name     string   `validate:"required,max=200"`
	Password string   `validate:"required,min=8"`
	Roles    []string `validate:"dive,oneof=ANGGOTA EMPLOYEE DIVISI_SIMPAN_PINJAM KETUA SHOPKEEPER PAYROLL"`
}
