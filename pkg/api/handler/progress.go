package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/stevelan1995/wave-engine/pkg/api/dto"
	"github.com/stevelan1995/wave-engine/pkg/core/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 浏览器端监控页面可能跨域访问
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressHandler 任务进度推送处理器
// 通过WebSocket将任务状态事件实时推送给客户端
type ProgressHandler struct {
	bus *events.Bus
}

// NewProgressHandler 创建ProgressHandler
func NewProgressHandler(bus *events.Bus) *ProgressHandler {
	return &ProgressHandler{bus: bus}
}

// Stream 建立WebSocket连接并推送任务状态事件
// GET /api/v1/progress/ws        - 推送全部运行的事件
// GET /api/v1/runs/:id/progress  - 只推送指定运行的事件
func (h *ProgressHandler) Stream(c *gin.Context) {
	if h.bus == nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(503, "事件总线未配置"))
		return
	}

	// 路径带:id时按RunID过滤
	runID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ [进度推送] WebSocket升级失败: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	eventCh, err := h.bus.SubscribeStatus(ctx)
	if err != nil {
		log.Printf("⚠️ [进度推送] 订阅事件失败: %v", err)
		return
	}

	// 读协程只用于感知客户端断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			if runID != "" && event.RunID != runID {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("⚠️ [进度推送] 写入失败，关闭连接: %v", err)
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}
