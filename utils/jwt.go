package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	AccessTokenTTL  = 60 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("token không hợp lệ")

type JWTClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func secretFor(tokenType string) ([]byte, error) {
	key := os.Getenv("JWT_SECRET") // Đọc tại thời điểm gọi
	if tokenType == TokenTypeRefresh {
		if rk := os.Getenv("JWT_REFRESH_SECRET"); rk != "" {
			key = rk
		}
	}
	if key == "" {
		return nil, errors.New("JWT_SECRET không được thiết lập")
	}
	return []byte(key), nil
}

// GenerateToken tạo JWT loại access hoặc refresh cho userID.
func GenerateToken(userID string, tokenType string) (string, error) {
	key, err := secretFor(tokenType)
	if err != nil {
		return "", err
	}

	ttl := AccessTokenTTL
	if tokenType == TokenTypeRefresh {
		ttl = RefreshTokenTTL
	}
	now := time.Now()
	claims := JWTClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

func GenerateTokenPair(userID string) (*TokenPair, error) {
	access, err := GenerateToken(userID, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := GenerateToken(userID, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// VerifyToken xác minh JWT và kiểm tra đúng loại token.
func VerifyToken(tokenStr string, tokenType string) (*JWTClaims, error) {
	key, err := secretFor(tokenType)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenStr, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
