package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/appware-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestLogger 测试日志中间件
func TestLogger(t *testing.T) {
	router := gin.New()
	router.Use(Logger())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// 发送请求
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 验证响应
	if w.Code != http.StatusOK {
		t.Errorf("期望状态码 200, 实际 %d", w.Code)
	}

	// 验证 X-Request-ID 头
	requestID := w.Header().Get("X-Request-ID")
	if requestID == "" {
		t.Error("期望 X-Request-ID 头存在")
	}
}

// TestLoggerWithRequestID 测试日志中间件使用已有的请求 ID
func TestLoggerWithRequestID(t *testing.T) {
	router := gin.New()
	router.Use(Logger())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// 发送带有 X-Request-ID 的请求
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "custom-request-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 验证响应中的 X-Request-ID 与请求中的一致
	requestID := w.Header().Get("X-Request-ID")
	if requestID != "custom-request-id" {
		t.Errorf("期望 X-Request-ID 为 custom-request-id, 实际 %s", requestID)
	}
}

// TestRecovery 测试恢复中间件
func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Logger()) // Recovery 依赖 Logger 设置的 request_id
	router.Use(Recovery())
	router.GET("/panic", func(c *gin.Context) {
		panic("测试 panic")
	})

	// 发送请求
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 验证返回 500 状态码
	if w.Code != http.StatusInternalServerError {
		t.Errorf("期望状态码 500, 实际 %d", w.Code)
	}
}

// TestCORS 测试 CORS 中间件
func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 验证 CORS 头
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("期望回显 Origin, 实际 %s", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

// TestCORSPreflight 测试 CORS 预检请求
func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS())

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("预检请求期望状态码 204, 实际 %d", w.Code)
	}
}

// 认证中间件测试辅助
func newAuthTestRouter(tokenService service.TokenService) *gin.Engine {
	router := gin.New()
	router.GET("/protected", JWTAuth(tokenService), func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			c.String(http.StatusInternalServerError, "missing caller")
			return
		}
		c.String(http.StatusOK, caller.ID)
	})
	router.GET("/admin", JWTAuth(tokenService), RequireSuperuser(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func newTestTokenService() service.TokenService {
	return service.NewTokenService(&service.TokenServiceConfig{
		Secret: "middleware-test-secret",
		Issuer: "unified-auth-center",
		Expiry: time.Hour,
	})
}

// TestJWTAuth 测试认证中间件
func TestJWTAuth(t *testing.T) {
	tokenService := newTestTokenService()
	router := newAuthTestRouter(tokenService)

	// 无令牌
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("无令牌期望 401, 实际 %d", w.Code)
	}

	// 格式错误
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("格式错误期望 401, 实际 %d", w.Code)
	}

	// 有效令牌
	token, err := tokenService.IssueToken(context.Background(), &service.TokenClaims{
		UserID:   "u1",
		Username: "zhangsan",
	})
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("有效令牌期望 200, 实际 %d", w.Code)
	}
	if w.Body.String() != "u1" {
		t.Errorf("期望上下文中的调用者为 u1, 实际 %s", w.Body.String())
	}
}

// TestRequireSuperuser 测试超级管理员检查中间件
func TestRequireSuperuser(t *testing.T) {
	tokenService := newTestTokenService()
	router := newAuthTestRouter(tokenService)

	// 普通用户
	token, err := tokenService.IssueToken(context.Background(), &service.TokenClaims{UserID: "u1"})
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("普通用户期望 403, 实际 %d", w.Code)
	}

	// 超级管理员
	adminToken, err := tokenService.IssueToken(context.Background(), &service.TokenClaims{
		UserID:      "root",
		IsSuperuser: true,
	})
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("超级管理员期望 200, 实际 %d", w.Code)
	}
}
