package dto

import "time"

type UserDTO struct {
	Id        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"omitempty,max=50"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	Password string `json:"password"`
}

// LoginRequest accepts either a username or an email in Username.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identifier prefers the username field, falling back to email.
func (r *LoginRequest) Identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

type ProfileResponse struct {
	User UserDTO `json:"user"`
}

type UpdateProfileRequest struct {
	Email string `json:"email" validate:"omitempty,email,max=100"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}
