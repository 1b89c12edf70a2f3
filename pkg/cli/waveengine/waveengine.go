package waveengine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/stevelan1995/wave-engine/pkg/api/dto"
	"github.com/stevelan1995/wave-engine/pkg/core/engine"
)

// WaveEngine HTTP API客户端
type WaveEngine struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建WaveEngine客户端
func New(baseURL string) *WaveEngine {
	return &WaveEngine{
		baseURL: baseURL,
		httpClient: &http.Client{
			// 计划是同步执行的，长计划需要较长的客户端超时
			Timeout: 10 * time.Minute,
		},
	}
}

// SubmitRun 提交计划并等待执行完成
func (w *WaveEngine) SubmitRun(yamlContent string) (*engine.Report, error) {
	req := dto.SubmitRunRequest{Content: yamlContent}
	var resp dto.APIResponse[engine.Report]
	if err := w.post("/api/v1/runs", req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("%s", resp.Message)
	}
	return &resp.Data, nil
}

// ListRuns 查询运行历史列表
func (w *WaveEngine) ListRuns(limit, offset int) (*dto.ListResponse[dto.RunSummary], error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	if offset > 0 {
		params.Set("offset", fmt.Sprintf("%d", offset))
	}

	path := "/api/v1/runs"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp dto.APIResponse[dto.ListResponse[dto.RunSummary]]
	if err := w.get(path, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("%s", resp.Message)
	}
	return &resp.Data, nil
}

// GetRun 查询运行记录详情
func (w *WaveEngine) GetRun(id string) (*dto.RunDetail, error) {
	var resp dto.APIResponse[dto.RunDetail]
	if err := w.get("/api/v1/runs/"+id, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("%s", resp.Message)
	}
	return &resp.Data, nil
}

// ListHandlers 查询已注册处理器列表
func (w *WaveEngine) ListHandlers() (*dto.ListResponse[dto.HandlerInfo], error) {
	var resp dto.APIResponse[dto.ListResponse[dto.HandlerInfo]]
	if err := w.get("/api/v1/handlers", &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("%s", resp.Message)
	}
	return &resp.Data, nil
}

// get 发送GET请求并解析响应
func (w *WaveEngine) get(path string, out interface{}) error {
	resp, err := w.httpClient.Get(w.baseURL + path)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()
	return w.decode(resp, out)
}

// post 发送POST请求并解析响应
func (w *WaveEngine) post(path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("序列化请求失败: %w", err)
	}

	resp, err := w.httpClient.Post(w.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()
	return w.decode(resp, out)
}

// decode 解析响应体
func (w *WaveEngine) decode(resp *http.Response, out interface{}) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解析响应失败 (HTTP %d): %w", resp.StatusCode, err)
	}
	return nil
}
