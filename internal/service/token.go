// Package service 令牌服务
package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 令牌相关错误
var (
	ErrInvalidToken     = errors.New("无效的令牌")
	ErrTokenExpired     = errors.New("令牌已过期")
	ErrInvalidSignature = errors.New("签名验证失败")
	ErrInvalidIssuer    = errors.New("无效的签发者")
)

// TokenClaims JWT 声明
// 令牌由统一认证中心签发，本服务只做验签和解析
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID      string `json:"uid,omitempty"`
	Username    string `json:"username,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
	Type        string `json:"type,omitempty"` // access, refresh
}

// TokenService 令牌服务接口
type TokenService interface {
	// ValidateToken 验证令牌并返回声明
	ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error)
	// IssueToken 使用共享密钥签发令牌（测试和运维工具使用）
	IssueToken(ctx context.Context, claims *TokenClaims) (string, error)
}

// tokenService 令牌服务实现
// 与认证中心约定 HS256 共享密钥
type tokenService struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// TokenServiceConfig 令牌服务配置
type TokenServiceConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

// NewTokenService 创建令牌服务
func NewTokenService(cfg *TokenServiceConfig) TokenService {
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = 2 * time.Hour
	}
	return &tokenService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		expiry: expiry,
	}
}

// ValidateToken 验证令牌
func (s *tokenService) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// 验证签发者
	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, ErrInvalidIssuer
	}

	return claims, nil
}

// IssueToken 使用共享密钥签发访问令牌
func (s *tokenService) IssueToken(ctx context.Context, claims *TokenClaims) (string, error) {
	now := time.Now()
	claims.Issuer = s.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.expiry))
	if claims.Type == "" {
		claims.Type = "access"
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
