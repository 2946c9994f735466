package model

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated user.
// There is NO global role field on purpose: a user's role only exists in the
// context of a market or kandang and is always resolved from membership state.
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username" validate:"required,min=3,max=50"`
	Name         string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Password     string `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	Avatar       string `gorm:"type:text" json:"avatar,omitempty"`
	PhoneNumber  string `gorm:"type:varchar(20)" json:"phone_number,omitempty"`
	TokenVersion string `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Name:        u.Name,
		Avatar:      u.Avatar,
		PhoneNumber: u.PhoneNumber,
	}
}
