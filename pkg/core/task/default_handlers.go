package task

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// RegisterDefaults 注册内置处理器（对外导出）
func RegisterDefaults(r *Registry) error {
	if err := r.RegisterFunc("echo", EchoHandler, "输出message参数并作为任务结果返回"); err != nil {
		return err
	}
	if err := r.RegisterFunc("delay", DelayHandler, "休眠duration参数指定的时长，用于演示并行调度"); err != nil {
		return err
	}
	if err := r.RegisterFunc("http_fetch", HTTPFetchHandler, "抓取url并用CSS选择器提取内容"); err != nil {
		return err
	}
	return nil
}

// EchoHandler 内置echo处理器（对外导出）
// 配置参数：
//   - message (string) - 要输出的内容
//   - artifact_key (string, 可选) - 结果写入产物存储的key
func EchoHandler(ctx *Context, desc *Descriptor[Params]) (interface{}, error) {
	message := desc.Payload.GetString("message")
	log.Printf("📢 [echo] TaskID=%s, message=%s", desc.ID, message)

	if key := desc.Payload.GetString("artifact_key"); key != "" {
		if err := ctx.Artifacts.Put(key, message, 0); err != nil {
			return nil, fmt.Errorf("写入产物失败: %w", err)
		}
	}
	return message, nil
}

// DelayHandler 内置delay处理器（对外导出）
// 配置参数：
//   - duration (string或毫秒数) - 休眠时长，如 "500ms"
func DelayHandler(ctx *Context, desc *Descriptor[Params]) (interface{}, error) {
	duration, err := desc.Payload.GetDuration("duration")
	if err != nil {
		return nil, err
	}

	select {
	case <-time.After(duration):
		return duration.String(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("休眠被中断: %w", ctx.Err())
	}
}

// HTTPFetchHandler 内置http_fetch处理器（对外导出）
// 抓取网页并用CSS选择器提取文本，结果可写入产物存储供下游任务使用
// 配置参数：
//   - url (string) - 要抓取的地址
//   - selector (string, 可选) - CSS选择器，为空时返回页面title
//   - artifact_key (string, 可选) - 结果写入产物存储的key
func HTTPFetchHandler(ctx *Context, desc *Descriptor[Params]) (interface{}, error) {
	url := desc.Payload.GetString("url")
	if url == "" {
		return nil, fmt.Errorf("任务 %s 缺少url参数", desc.ID)
	}

	req, err := http.NewRequestWithContext(ctx.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: url=%s, Error=%w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("请求返回非200状态码: url=%s, status=%d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	selector := desc.Payload.GetString("selector")
	if selector == "" {
		selector = "title"
	}

	texts := make([]string, 0)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, s.Text())
	})
	log.Printf("🌐 [http_fetch] TaskID=%s, url=%s, selector=%s, 命中=%d", desc.ID, url, selector, len(texts))

	if key := desc.Payload.GetString("artifact_key"); key != "" {
		if err := ctx.Artifacts.Put(key, texts, 0); err != nil {
			return nil, fmt.Errorf("写入产物失败: %w", err)
		}
	}
	return texts, nil
}
