package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-collector/models"
	"github.com/vnkhanh/survey-collector/utils"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Register tạo tài khoản mới; username trùng -> ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(&req).OrNil(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate kiểm tra username/password.
func (s *AuthService) Authenticate(ctx context.Context, req LoginRequest) (*models.User, error) {
	if err := validateStruct(&req).OrNil(); err != nil {
		return nil, err
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AuthService) IssueTokens(user *models.User) (*utils.TokenPair, error) {
	return utils.GenerateTokenPair(strconv.FormatUint(uint64(user.ID), 10))
}

// Refresh đổi refresh token lấy access token mới.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	user, err := s.userFromToken(ctx, refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return utils.GenerateToken(strconv.FormatUint(uint64(user.ID), 10), utils.TokenTypeAccess)
}

// UserFromAccessToken dùng cho middleware xác thực.
func (s *AuthService) UserFromAccessToken(ctx context.Context, accessToken string) (*models.User, error) {
	return s.userFromToken(ctx, accessToken, utils.TokenTypeAccess)
}

func (s *AuthService) userFromToken(ctx context.Context, raw, tokenType string) (*models.User, error) {
	claims, err := utils.VerifyToken(raw, tokenType)
	if err != nil {
		return nil, ErrInvalidToken
	}
	// UserID trong claims là string -> parse ra uint để tìm theo primary key
	uid, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil || uid == 0 {
		return nil, ErrInvalidToken
	}
	user, err := s.GetUser(ctx, uint(uid))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}
