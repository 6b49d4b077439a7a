package dto

// ── 参与者模块 DTO ──

// CreateParticipantRequest 创建参与者请求
type CreateParticipantRequest struct {
	Nickname  string `json:"nickname"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Position  string `json:"position"`
	Email     string `json:"email"`
	Bio       string `json:"bio"`
	IsActive  *bool  `json:"is_active"`
}

// UpdateParticipantRequest 更新参与者请求，未提供的字段保持不变
// Email 传空串表示清除
type UpdateParticipantRequest struct {
	Nickname  *string `json:"nickname"`
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Position  *string `json:"position"`
	Email     *string `json:"email"`
	Bio       *string `json:"bio"`
	IsActive  *bool   `json:"is_active"`
}

// ParticipantListRequest 参与者列表查询参数
type ParticipantListRequest struct {
	PaginationRequest
	Position string `form:"position"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Search   string `form:"q"`
}

// SelectableRequest 主题表单候选参与者查询参数
type SelectableRequest struct {
	Exclude string `form:"exclude"`
}

// ParticipantResponse 参与者信息
type ParticipantResponse struct {
	ID          string  `json:"id"`
	Nickname    string  `json:"nickname"`
	Firstname   string  `json:"firstname"`
	Lastname    string  `json:"lastname"`
	FullName    string  `json:"full_name"`
	DisplayName string  `json:"display_name"`
	Position    string  `json:"position"`
	Email       *string `json:"email"`
	IsActive    bool    `json:"is_active"`
	Bio         string  `json:"bio"`
	DateJoined  string  `json:"date_joined"`
	LastUpdated string  `json:"last_updated"`
}

// ParticipantBrief 参与者简要信息
type ParticipantBrief struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	DisplayName string `json:"display_name"`
}
