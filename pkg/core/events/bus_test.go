package events

import (
	"context"
	"testing"
	"time"

	"github.com/stevelan1995/wave-engine/pkg/core/engine"
	"github.com/stevelan1995/wave-engine/pkg/core/task"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus(false)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.SubscribeStatus(ctx)
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}

	sent := &engine.TaskStatusEvent{
		RunID:     "run-1",
		TaskID:    "t1",
		Status:    task.StatusSuccess,
		Duration:  100 * time.Millisecond,
		Timestamp: time.Now(),
	}
	if err := bus.PublishStatus(sent); err != nil {
		t.Fatalf("发布失败: %v", err)
	}

	select {
	case got := <-events:
		if got.TaskID != "t1" || got.Status != task.StatusSuccess || got.RunID != "run-1" {
			t.Errorf("事件内容错误: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("等待事件超时")
	}
}

func TestBus_Sink(t *testing.T) {
	bus := NewBus(false)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.SubscribeStatus(ctx)
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}

	sink := bus.Sink()
	sink(&engine.TaskStatusEvent{RunID: "run-2", TaskID: "t2", Status: task.StatusFailed})

	select {
	case got := <-events:
		if got.TaskID != "t2" || got.Status != task.StatusFailed {
			t.Errorf("事件内容错误: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("等待事件超时")
	}
}
