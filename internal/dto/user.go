package dto

import (
	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
)

// CreateUserRequest defines the payload for creating a user.
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,e164"`
}

// UserResponse is the API representation of a user.
type UserResponse struct {
	UserID      string `json:"userID"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	IsVerified  bool   `json:"isVerified"`
}

// UserSummaryResponse aggregates a user's position across their accounts.
type UserSummaryResponse struct {
	UserID       string          `json:"userID"`
	FullName     string          `json:"fullName"`
	TotalSavings decimal.Decimal `json:"totalSavings"`
	TotalLoans   decimal.Decimal `json:"totalLoans"`
}

// ToUserResponse converts a domain User to its API representation.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:      u.UserID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName(),
		PhoneNumber: u.PhoneNumber,
		IsVerified:  u.IsVerified,
	}
}
