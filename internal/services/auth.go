package services

import (
	"errors"
	"time"

	"github.com/claridoc/backend/internal/config"
	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/internal/utils"
	"github.com/claridoc/backend/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{
		db:        db,
		jwtConfig: jwtCfg,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	ExpireAt time.Time    `json:"expire_at"`
}

// Register creates a local account. Email addresses are stored
// normalized so invitation matching is case-insensitive.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	email := NormalizeEmail(req.Email)

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		Name:         req.Name,
		IsActive:     true,
		// Verification flow is handled by the outer product; accounts
		// created here are treated as verified for invitation accepts.
		EmailVerified: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewValidation("email already registered")
		}
		return nil, err
	}

	return &user, nil
}

// Login authenticates a user and returns a JWT token
func (s *AuthService) Login(req *LoginRequest) (*LoginResult, error) {
	email := NormalizeEmail(req.Email)

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAuthRequired("invalid email or password")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, response.NewAuthRequired("account is disabled")
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, response.NewAuthRequired("invalid email or password")
	}

	expireHours := s.jwtConfig.ExpireHour
	if expireHours <= 0 {
		expireHours = 24
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.EmailVerified, expireHours)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Save(&user)

	return &LoginResult{
		Token:    token,
		User:     &user,
		ExpireAt: now.Add(time.Duration(expireHours) * time.Hour),
	}, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return response.NewNotFound("user not found")
	}

	if !utils.CheckPassword(req.OldPassword, user.PasswordHash) {
		return response.NewValidation("incorrect old password")
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashed
	return s.db.Save(&user).Error
}

// CreateAdminIfNotExists seeds a platform operator account on first boot
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	s.db.Model(&models.User{}).Where("is_admin = ?", true).Count(&count)

	if count == 0 {
		hashed, err := utils.HashPassword("admin")
		if err != nil {
			return err
		}

		admin := models.User{
			Email:         "admin@claridoc.local",
			PasswordHash:  hashed,
			Name:          "Administrator",
			IsAdmin:       true,
			IsActive:      true,
			EmailVerified: true,
		}

		return s.db.Create(&admin).Error
	}

	return nil
}
