package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/appware-backend/pkg/response"
)

// RequireSuperuser 超级管理员检查中间件
// 仅允许超级管理员访问，用于管理端路由
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			response.Error(c, response.CodeInvalidToken)
			c.Abort()
			return
		}

		if !caller.IsSuperuser {
			response.ErrorWithMsg(c, response.CodeForbidden, "仅超级管理员可访问")
			c.Abort()
			return
		}

		c.Next()
	}
}
