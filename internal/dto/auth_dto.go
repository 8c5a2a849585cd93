package dto

import (
	"time"

	"github.com/nextgenbank/onboarding-api/internal/model"
)

type RegisterInput struct {
	Email            string  `json:"email" binding:"required,email"`
	Password         string  `json:"password" binding:"required,min=8"`
	FirstName        string  `json:"first_name" binding:"required,max=30"`
	MiddleName       *string `json:"middle_name" binding:"omitempty,max=30"`
	LastName         string  `json:"last_name" binding:"required,max=30"`
	IDNo             int64   `json:"id_no" binding:"required,min=1"`
	SecurityQuestion string  `json:"security_question" binding:"required,oneof=maiden_name favorite_color birth_city childhood_friend"`
	SecurityAnswer   string  `json:"security_answer" binding:"required,max=30"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyOTPInput struct {
	OTP string `json:"otp" binding:"required,len=6"`
}

// TokenPair carries freshly minted session tokens. They travel to the client
// as cookies only, never in a response body.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type LoginResponse struct {
	Success string `json:"success"`
	Email   string `json:"email"`
}

type RegisteredUser struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}
