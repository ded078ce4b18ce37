package models

import (
	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleCustomer      Role = "Customer"
	RoleAdministrator Role = "Administrator"
)

type Session struct {
	Token string `json:"token"`
	Role  Role   `json:"userType"`
}

func (s *Session) IsAdministrator() bool {
	return s != nil && s.Role == RoleAdministrator
}

// for registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	UserType Role   `json:"userType" validate:"required,oneof=Customer Administrator"`
}

// for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// for login response
type LoginResponse struct {
	Token    string `json:"token"`
	UserType Role   `json:"userType"`
}

// Claims are read from the session token for display only; the client never
// verifies the signature.
type Claims struct {
	jwt.RegisteredClaims
}
