package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest describes sign-up payload.
type RegisterRequest struct {
	Phone          string `json:"phone" binding:"required,phone"`
	Password       string `json:"password" binding:"required,min=4,max=20"`
	Name           string `json:"name" binding:"required"`
	Surname        string `json:"surname" binding:"required"`
	Email          string `json:"email" binding:"omitempty,email"`
	SelectedFilial string `json:"selectedFilial" binding:"required"`
	ReferrerID     *int64 `json:"referrerId" binding:"omitempty,gt=0"`
	Agreed         bool   `json:"agreed"`
}

// LoginRequest describes phone/password payload.
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=4,max=20"`
}

// TokenResponse carries an issued auth token.
type TokenResponse struct {
	Token string `json:"token"`
}

// SessionResponse is a refreshed token with the user it belongs to.
type SessionResponse struct {
	Token string          `json:"token"`
	User  ProfileResponse `json:"user"`
}

// ProfileResponse describes the authenticated user.
type ProfileResponse struct {
	ID                      int64            `json:"id"`
	Phone                   string           `json:"phone"`
	Name                    string           `json:"name"`
	Surname                 string           `json:"surname"`
	Email                   string           `json:"email,omitempty"`
	Role                    string           `json:"role"`
	SelectedFilial          string           `json:"selectedFilial"`
	PersonalID              int64            `json:"personalId"`
	PersonalRate            *decimal.Decimal `json:"personalRate,omitempty"`
	ReferralBonusPercentage *decimal.Decimal `json:"referralBonusPercentage,omitempty"`
	Bonuses                 decimal.Decimal  `json:"bonuses"`
	ReferrerID              *int64           `json:"referrerId,omitempty"`
	CreatedAt               time.Time        `json:"createdAt"`
}

// MessageResponse is the body of errors and informational replies.
type MessageResponse struct {
	Message string `json:"message"`
}
