package dto

// SubmitRunRequest 提交计划执行请求（YAML内容）
type SubmitRunRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListQueryRequest 通用列表查询请求
type ListQueryRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// GetDefaultLimit 获取默认limit
func (r *ListQueryRequest) GetDefaultLimit() int {
	if r.Limit <= 0 {
		return 20
	}
	return r.Limit
}
