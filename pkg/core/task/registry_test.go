package task

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestContext() *Context {
	return NewContext(context.Background(), "test-run", nil)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	err := r.RegisterFunc("noop", func(ctx *Context, desc *Descriptor[Params]) (interface{}, error) {
		return nil, nil
	}, "什么都不做")
	if err != nil {
		t.Fatalf("注册处理器失败: %v", err)
	}

	if r.Get("noop") == nil {
		t.Fatal("注册后应该能查到处理器")
	}
	if r.Get("ghost") != nil {
		t.Fatal("未注册的处理器应该返回nil")
	}

	// 重复注册应该失败
	err = r.RegisterFunc("noop", func(ctx *Context, desc *Descriptor[Params]) (interface{}, error) {
		return nil, nil
	}, "")
	if err == nil {
		t.Fatal("重复注册应该返回错误，但未返回")
	}

	metas := r.List()
	if len(metas) != 1 || metas[0].Name != "noop" {
		t.Errorf("处理器列表错误: %+v", metas)
	}
}

func TestRegistry_Dispatch(t *testing.T) {
	r := NewRegistry()
	if err := RegisterDefaults(r); err != nil {
		t.Fatalf("注册内置处理器失败: %v", err)
	}

	uow := r.Dispatch()

	// 正常分发
	output, err := uow.Execute(newTestContext(), &Descriptor[Params]{
		ID:      "t1",
		Payload: Params{"handler": "echo", "message": "hello"},
	})
	if err != nil {
		t.Fatalf("分发执行失败: %v", err)
	}
	if output != "hello" {
		t.Errorf("echo结果错误，期望: hello, 实际: %v", output)
	}

	// 未指定处理器
	_, err = uow.Execute(newTestContext(), &Descriptor[Params]{ID: "t2", Payload: Params{}})
	if err == nil {
		t.Fatal("未指定处理器应该返回错误")
	}

	// 处理器不存在
	_, err = uow.Execute(newTestContext(), &Descriptor[Params]{
		ID:      "t3",
		Payload: Params{"handler": "ghost"},
	})
	if err == nil {
		t.Fatal("处理器不存在应该返回错误")
	}
}

func TestEchoHandler_Artifact(t *testing.T) {
	ctx := newTestContext()

	_, err := EchoHandler(ctx, &Descriptor[Params]{
		ID:      "t1",
		Payload: Params{"message": "data", "artifact_key": "echo.out"},
	})
	if err != nil {
		t.Fatalf("echo执行失败: %v", err)
	}

	val, ok := ctx.Artifacts.Get("echo.out")
	if !ok || val != "data" {
		t.Errorf("产物存储内容错误，期望: data, 实际: %v", val)
	}
}

func TestDelayHandler(t *testing.T) {
	start := time.Now()
	_, err := DelayHandler(newTestContext(), &Descriptor[Params]{
		ID:      "t1",
		Payload: Params{"duration": "50ms"},
	})
	if err != nil {
		t.Fatalf("delay执行失败: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("delay时长不足，期望: >=50ms, 实际: %v", elapsed)
	}

	// 缺少duration参数
	_, err = DelayHandler(newTestContext(), &Descriptor[Params]{ID: "t2", Payload: Params{}})
	if err == nil {
		t.Fatal("缺少duration参数应该返回错误")
	}
}

func TestHTTPFetchHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>测试页面</title></head><body><p class="item">甲</p><p class="item">乙</p></body></html>`))
	}))
	defer server.Close()

	ctx := newTestContext()
	output, err := HTTPFetchHandler(ctx, &Descriptor[Params]{
		ID: "t1",
		Payload: Params{
			"url":          server.URL,
			"selector":     "p.item",
			"artifact_key": "fetch.out",
		},
	})
	if err != nil {
		t.Fatalf("http_fetch执行失败: %v", err)
	}

	texts, ok := output.([]string)
	if !ok || len(texts) != 2 || texts[0] != "甲" || texts[1] != "乙" {
		t.Errorf("抓取结果错误: %v", output)
	}

	if _, ok := ctx.Artifacts.Get("fetch.out"); !ok {
		t.Error("抓取结果应该写入产物存储")
	}

	// 缺少url参数
	_, err = HTTPFetchHandler(newTestContext(), &Descriptor[Params]{ID: "t2", Payload: Params{}})
	if err == nil {
		t.Fatal("缺少url参数应该返回错误")
	}
}

func TestParams(t *testing.T) {
	p := Params{
		"str":   "hello",
		"num":   3,
		"float": 2.0,
		"flag":  true,
		"ms":    500,
	}

	if p.GetString("str") != "hello" {
		t.Errorf("GetString错误: %s", p.GetString("str"))
	}
	if p.GetString("missing") != "" {
		t.Error("缺失key的GetString应该返回空字符串")
	}

	if n, err := p.GetInt("num"); err != nil || n != 3 {
		t.Errorf("GetInt错误: %d, %v", n, err)
	}
	if n, err := p.GetInt("float"); err != nil || n != 2 {
		t.Errorf("GetInt浮点转换错误: %d, %v", n, err)
	}
	if _, err := p.GetInt("str"); err == nil {
		t.Error("非数字的GetInt应该返回错误")
	}

	if b, err := p.GetBool("flag"); err != nil || !b {
		t.Errorf("GetBool错误: %v, %v", b, err)
	}

	if d, err := p.GetDuration("ms"); err != nil || d != 500*time.Millisecond {
		t.Errorf("GetDuration数值转换错误: %v, %v", d, err)
	}

	if !p.Has("str") || p.Has("missing") {
		t.Error("Has判断错误")
	}
}
