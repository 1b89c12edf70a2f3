package task

import (
	"fmt"
	"strconv"
	"time"
)

// Params 计划驱动任务的载荷类型（对外导出）
// 引擎对载荷泛型化处理；由YAML计划产生的任务统一使用本类型实例化
type Params map[string]interface{}

// GetString 获取字符串参数（对外导出）
func (p Params) GetString(key string) string {
	val, ok := p[key]
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", val)
}

// GetInt 获取整数参数（对外导出）
func (p Params) GetInt(key string) (int, error) {
	val, ok := p[key]
	if !ok || val == nil {
		return 0, fmt.Errorf("参数 %s 不存在", key)
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("参数 %s 无法转换为整数: %w", key, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("参数 %s 类型不是整数，当前类型: %T", key, val)
	}
}

// GetBool 获取布尔参数（对外导出）
func (p Params) GetBool(key string) (bool, error) {
	val, ok := p[key]
	if !ok || val == nil {
		return false, fmt.Errorf("参数 %s 不存在", key)
	}

	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		return v == "true" || v == "1" || v == "yes", nil
	default:
		return false, fmt.Errorf("参数 %s 类型不是布尔值，当前类型: %T", key, val)
	}
}

// GetDuration 获取时长参数（对外导出）
// 支持 "500ms"/"2s" 形式的字符串，或按毫秒解释的数值
func (p Params) GetDuration(key string) (time.Duration, error) {
	val, ok := p[key]
	if !ok || val == nil {
		return 0, fmt.Errorf("参数 %s 不存在", key)
	}

	switch v := val.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("参数 %s 无法转换为时长: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v) * time.Millisecond, nil
	default:
		return 0, fmt.Errorf("参数 %s 类型不是时长，当前类型: %T", key, val)
	}
}

// Has 检查参数是否存在（对外导出）
func (p Params) Has(key string) bool {
	_, exists := p[key]
	return exists
}
