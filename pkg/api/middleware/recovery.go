package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/stevelan1995/wave-engine/pkg/api/dto"
)

// Recovery panic恢复中间件
// 任务执行中的panic由引擎就地捕获，这里兜底API层自身的panic
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("❌ [API panic] %s %s, 原因=%v\n%s",
					c.Request.Method, c.Request.URL.Path, err, debug.Stack())

				c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
					500,
					"服务内部错误",
				))
				c.Abort()
			}
		}()
		c.Next()
	}
}
