// internal/auth/service.go
// Package auth 负责工作人员登录与令牌校验。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotelac/internal/config"
	"hotelac/internal/db"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidToken    = errors.New("invalid token")
)

// Claims JWT 载荷
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Identity string `json:"identity"`
}

// Service 认证服务
type Service struct {
	users      *db.UserRepository
	signingKey []byte
	tokenTTL   time.Duration
}

func NewService(cfg *config.Config, users *db.UserRepository) *Service {
	return &Service{
		users:      users,
		signingKey: []byte(cfg.Auth.SigningKey),
		tokenTTL:   cfg.Auth.TokenTTL,
	}
}

// Login 校验账号密码并签发令牌
func (s *Service) Login(username, password string) (token, identity string, err error) {
	u, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return "", "", ErrUserNotFound
		}
		return "", "", err
	}
	if u.Password != password {
		return "", "", ErrInvalidPassword
	}

	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: u.Username,
		Identity: u.Identity,
	})
	signed, err := t.SignedString(s.signingKey)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, u.Identity, nil
}

// ParseToken 解析令牌并返回载荷
func (s *Service) ParseToken(accessToken string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
