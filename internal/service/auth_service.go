package service

import (
	"errors"

	"github.com/notbx57/peternakantelur/internal/apperror"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"
	"github.com/notbx57/peternakantelur/pkg/jwt"
	"github.com/notbx57/peternakantelur/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Avatar      *string `json:"avatar"`
	PhoneNumber *string `json:"phone_number"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type TokenValidationResponse struct {
	User model.UserResponse `json:"user"`
}

type AuthService interface {
	Register(req *RegisterRequest) (*LoginResponse, error)
	Login(identifier, password string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error)
	ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// Register creates a new user. Users carry no global role: whatever they can
// do is resolved per market/kandang later.
func (s *authService) Register(req *RegisterRequest) (*LoginResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("field '%s' failed on '%s'", errs[0].FailedField, errs[0].Tag)
	}

	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, apperror.Conflict("email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, apperror.Conflict("username is already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Email:        req.Email,
		Username:     req.Username,
		Name:         req.Name,
		TokenVersion: uuid.New().String(),
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.Username, user.Name, user.TokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

// Login accepts either an email or a username as identifier.
func (s *authService) Login(identifier, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(identifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.userRepo.FindByUsername(identifier)
	}
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Single Session: rotate the token version so earlier tokens die
	newTokenVersion := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(user.ID, newTokenVersion); err != nil {
		return nil, errors.New("failed to update session")
	}
	user.TokenVersion = newTokenVersion

	token, err := jwt.GenerateToken(user.ID, user.Email, user.Username, user.Name, newTokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, jwt.ErrInvalidToken
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, jwt.ErrInvalidToken
	}

	return &TokenValidationResponse{User: user.ToResponse()}, nil
}

func (s *authService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}

	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if len(newPassword) < 6 {
		return apperror.Validation("new password must be at least 6 characters")
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(userID, user.Password)
}
