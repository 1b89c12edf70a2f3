package api

import (
	"github.com/gin-gonic/gin"

	"github.com/stevelan1995/wave-engine/pkg/api/handler"
	"github.com/stevelan1995/wave-engine/pkg/api/middleware"
	"github.com/stevelan1995/wave-engine/pkg/service"
)

// SetupRouter 设置路由
func SetupRouter(svc *service.Service, version string) *gin.Engine {
	// 设置gin模式
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 全局中间件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	// 创建handlers
	runHandler := handler.NewRunHandler(svc)
	progressHandler := handler.NewProgressHandler(svc.Bus())
	healthHandler := handler.NewHealthHandler(version)

	// 健康检查路由（不带前缀）
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		runs := v1.Group("/runs")
		{
			runs.POST("", runHandler.Submit)
			runs.GET("", runHandler.List)
			runs.GET("/:id", runHandler.Get)
			runs.GET("/:id/tasks", runHandler.Tasks)
			runs.GET("/:id/progress", progressHandler.Stream)
		}

		v1.GET("/handlers", runHandler.Handlers)
		v1.GET("/progress/ws", progressHandler.Stream)
	}

	return router
}
