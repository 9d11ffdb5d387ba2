// Package middleware 中间件
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/appware-backend/internal/model"
	"github.com/pu-ac-cn/appware-backend/internal/service"
	"github.com/pu-ac-cn/appware-backend/pkg/response"
)

// JWTAuth JWT 认证中间件
// 验证认证中心签发的访问令牌，将调用者身份写入请求上下文
func JWTAuth(tokenService service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从 Authorization 头获取令牌
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithMsg(c, response.CodeInvalidToken, "未提供认证令牌")
			c.Abort()
			return
		}

		// 检查 Bearer 前缀
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithMsg(c, response.CodeInvalidToken, "认证令牌格式错误")
			c.Abort()
			return
		}

		// 验证令牌
		claims, err := tokenService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			switch err {
			case service.ErrTokenExpired:
				response.ErrorWithMsg(c, response.CodeInvalidToken, "令牌已过期")
			case service.ErrInvalidToken:
				response.Error(c, response.CodeInvalidToken)
			default:
				response.ErrorWithMsg(c, response.CodeInvalidToken, "认证失败")
			}
			c.Abort()
			return
		}

		// 检查令牌类型
		if claims.Type != "access" {
			response.ErrorWithMsg(c, response.CodeInvalidToken, "无效的令牌类型")
			c.Abort()
			return
		}

		// 将调用者身份存入上下文
		c.Set("caller", &model.Caller{
			ID:          claims.UserID,
			Username:    claims.Username,
			IsSuperuser: claims.IsSuperuser,
		})

		c.Next()
	}
}

// GetCaller 从请求上下文取出调用者身份
// 只能在 JWTAuth 之后的处理器中调用
func GetCaller(c *gin.Context) (*model.Caller, bool) {
	v, exists := c.Get("caller")
	if !exists {
		return nil, false
	}
	caller, ok := v.(*model.Caller)
	return caller, ok
}
