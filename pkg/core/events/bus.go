package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/stevelan1995/wave-engine/pkg/core/engine"
)

// TopicTaskStatus 任务状态事件主题（对外导出）
const TopicTaskStatus = "task.status"

// Bus 任务状态事件总线（对外导出）
// 基于进程内Pub/Sub，引擎发布任务状态事件，API层（WebSocket推送等）订阅
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewBus 创建事件总线（对外导出）
func NewBus(debug bool) *Bus {
	logger := watermill.NewStdLogger(debug, false)
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		logger,
	)
	return &Bus{pubsub: pubsub, logger: logger}
}

// PublishStatus 发布任务状态事件（对外导出）
func (b *Bus) PublishStatus(event *engine.TaskStatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("run_id", event.RunID)
	msg.Metadata.Set("task_id", event.TaskID)
	msg.Metadata.Set("status", event.Status)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339Nano))

	if err := b.pubsub.Publish(TopicTaskStatus, msg); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}
	return nil
}

// SubscribeStatus 订阅任务状态事件（对外导出）
// 返回的channel在ctx取消后关闭
func (b *Bus) SubscribeStatus(ctx context.Context) (<-chan *engine.TaskStatusEvent, error) {
	messages, err := b.pubsub.Subscribe(ctx, TopicTaskStatus)
	if err != nil {
		return nil, fmt.Errorf("订阅事件失败: %w", err)
	}

	out := make(chan *engine.TaskStatusEvent, 64)
	go func() {
		defer close(out)
		for msg := range messages {
			var event engine.TaskStatusEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				// 反序列化失败的消息直接确认丢弃
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case out <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Sink 返回可注入引擎的状态回调（对外导出）
func (b *Bus) Sink() engine.StatusSink {
	return func(event *engine.TaskStatusEvent) {
		// 发布失败只影响观测，不影响执行
		_ = b.PublishStatus(event)
	}
}

// Close 关闭事件总线（对外导出）
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
