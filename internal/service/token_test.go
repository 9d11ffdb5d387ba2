package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestTokenService() TokenService {
	return NewTokenService(&TokenServiceConfig{
		Secret: "test-shared-secret",
		Issuer: "unified-auth-center",
		Expiry: time.Hour,
	})
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := newTestTokenService()
	ctx := context.Background()

	tokenString, err := svc.IssueToken(ctx, &TokenClaims{
		UserID:      "u1",
		Username:    "zhangsan",
		IsSuperuser: true,
	})
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}

	claims, err := svc.ValidateToken(ctx, tokenString)
	if err != nil {
		t.Fatalf("验证令牌失败: %v", err)
	}
	if claims.UserID != "u1" {
		t.Errorf("期望 UserID 为 u1, 实际 %s", claims.UserID)
	}
	if claims.Username != "zhangsan" {
		t.Errorf("期望 Username 为 zhangsan, 实际 %s", claims.Username)
	}
	if !claims.IsSuperuser {
		t.Error("期望超级管理员标记为 true")
	}
	if claims.Type != "access" {
		t.Errorf("期望令牌类型为 access, 实际 %s", claims.Type)
	}
}

func TestTokenService_InvalidToken(t *testing.T) {
	svc := newTestTokenService()
	ctx := context.Background()

	if _, err := svc.ValidateToken(ctx, "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("期望无效令牌错误, 实际 %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc := newTestTokenService()
	other := NewTokenService(&TokenServiceConfig{
		Secret: "different-secret",
		Issuer: "unified-auth-center",
		Expiry: time.Hour,
	})
	ctx := context.Background()

	tokenString, err := other.IssueToken(ctx, &TokenClaims{UserID: "u1"})
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}

	if _, err := svc.ValidateToken(ctx, tokenString); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("密钥不匹配应返回无效令牌, 实际 %v", err)
	}
}

func TestTokenService_WrongIssuer(t *testing.T) {
	svc := newTestTokenService()
	other := NewTokenService(&TokenServiceConfig{
		Secret: "test-shared-secret",
		Issuer: "someone-else",
		Expiry: time.Hour,
	})
	ctx := context.Background()

	tokenString, err := other.IssueToken(ctx, &TokenClaims{UserID: "u1"})
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}

	if _, err := svc.ValidateToken(ctx, tokenString); !errors.Is(err, ErrInvalidIssuer) {
		t.Errorf("签发者不匹配应返回对应错误, 实际 %v", err)
	}
}

func TestTokenService_ExpiredToken(t *testing.T) {
	ctx := context.Background()

	// 手工构造一个已过期的令牌
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "unified-auth-center",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: "u1",
		Type:   "access",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte("test-shared-secret"))
	if err != nil {
		t.Fatalf("构造令牌失败: %v", err)
	}

	svc := newTestTokenService()
	if _, err := svc.ValidateToken(ctx, tokenString); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望令牌过期错误, 实际 %v", err)
	}
}
