package dto

// ── 主题模块 DTO ──

// CreateTopicRequest 创建主题请求
type CreateTopicRequest struct {
	AboutID                string   `json:"about_id"`
	OrbitID                string   `json:"orbit_id"`
	Title                  string   `json:"title"`
	Description            string   `json:"description"`
	StudyingParticipantIDs []string `json:"studying_participant_ids"`
	BossIDs                []string `json:"boss_ids"`
	IsActive               *bool    `json:"is_active"`
}

// UpdateTopicRequest 更新主题请求，未提供的字段保持不变
// 名单字段提供时整体替换
type UpdateTopicRequest struct {
	AboutID                *string   `json:"about_id"`
	OrbitID                *string   `json:"orbit_id"`
	Title                  *string   `json:"title"`
	Description            *string   `json:"description"`
	StudyingParticipantIDs *[]string `json:"studying_participant_ids"`
	BossIDs                *[]string `json:"boss_ids"`
	IsActive               *bool     `json:"is_active"`
}

// TopicListRequest 主题列表查询参数
type TopicListRequest struct {
	PaginationRequest
	Orbit  string `form:"orbit"` // 分类 slug
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
	Search string `form:"q"`
}

// TopicResponse 主题信息
type TopicResponse struct {
	ID                        string             `json:"id"`
	Slug                      string             `json:"slug"`
	Title                     string             `json:"title"`
	Description               string             `json:"description"`
	IsActive                  bool               `json:"is_active"`
	About                     *ParticipantBrief  `json:"about,omitempty"`
	Orbit                     *OrbitBrief        `json:"orbit,omitempty"`
	StudyingParticipants      []ParticipantBrief `json:"studying_participants"`
	Bosses                    []ParticipantBrief `json:"bosses"`
	StudyingParticipantsCount int64              `json:"studying_participants_count"`
	BossesCount               int64              `json:"bosses_count"`
	QuestionCount             int64              `json:"question_count"`
	CreatedAt                 string             `json:"created_at"`
	UpdatedAt                 string             `json:"updated_at"`
}

// TopicDetailResponse 主题详情（含问题与答案）
type TopicDetailResponse struct {
	TopicResponse
	Questions []QuestionResponse `json:"questions"`
}
