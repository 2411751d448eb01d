package models

import "time"

// LoginRequest carries the operator credentials checked against
// ADMIN_USERNAME and ADMIN_PASSWORD_HASH.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
