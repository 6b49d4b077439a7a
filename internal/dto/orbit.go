package dto

// ── 分类模块 DTO ──

// CreateOrbitRequest 创建分类请求
type CreateOrbitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Order       int    `json:"order"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

// UpdateOrbitRequest 更新分类请求，未提供的字段保持不变
type UpdateOrbitRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Order       *int    `json:"order"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

// OrbitListRequest 分类列表查询参数
type OrbitListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=active inactive archived draft"`
	Search string `form:"q"`
}

// OrbitResponse 分类信息
type OrbitResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Order       int    `json:"order"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	IsActive    bool   `json:"is_active"`
	DisplayName string `json:"display_name"`
	TopicCount  int64  `json:"topic_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// OrbitBrief 分类简要信息
type OrbitBrief struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name"`
}
