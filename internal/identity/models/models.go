// Package models holds account types for employees and HR staff.
package models

import (
	"strings"
	"time"

	id "onboard/pkg/domain"
	schema "onboard/pkg/validation"
)

// User is an account. IsHR grants the review routes.
type User struct {
	ID           id.UserID
	Email        string
	PasswordHash []byte
	IsHR         bool
	CreatedAt    time.Time
}

// Credentials is the body of both register and login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (c *Credentials) Normalize() {
	c.Email = NormalizeEmail(c.Email)
}

func (c *Credentials) Validate() error {
	return schema.Validate(c)
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	UserID      string `json:"user_id"`
	IsHR        bool   `json:"is_hr"`
}

// UserResponse is returned by registration.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsHR      bool      `json:"isHr"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToUserResponse(u *User) *UserResponse {
	return &UserResponse{ID: u.ID.String(), Email: u.Email, IsHR: u.IsHR, CreatedAt: u.CreatedAt}
}
