package dto

// ── 问题与答案 DTO ──

// CreateQuestionRequest 新增问题请求
type CreateQuestionRequest struct {
	QuestionText string `json:"question_text"`
	Order        int    `json:"order"`
	IsActive     *bool  `json:"is_active"`
}

// UpdateQuestionRequest 更新问题请求
type UpdateQuestionRequest struct {
	QuestionText *string `json:"question_text"`
	Order        *int    `json:"order"`
	IsActive     *bool   `json:"is_active"`
}

// QuestionResponse 问题信息
type QuestionResponse struct {
	ID           string           `json:"id"`
	TopicID      string           `json:"topic_id"`
	QuestionText string           `json:"question_text"`
	ShortText    string           `json:"short_text"`
	Order        int              `json:"order"`
	IsActive     bool             `json:"is_active"`
	AnswerCount  int              `json:"answer_count"`
	Answers      []AnswerResponse `json:"answers"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}

// CreateAnswerRequest 新增答案请求，ParticipantID 为空表示管理员录入
type CreateAnswerRequest struct {
	AnswerText    string  `json:"answer_text"`
	ParticipantID *string `json:"participant_id"`
	IsCorrect     bool    `json:"is_correct"`
	Order         int     `json:"order"`
}

// UpdateAnswerRequest 更新答案请求
// ParticipantID 传空串表示改为管理员录入
type UpdateAnswerRequest struct {
	AnswerText    *string `json:"answer_text"`
	ParticipantID *string `json:"participant_id"`
	IsCorrect     *bool   `json:"is_correct"`
	Order         *int    `json:"order"`
}

// AnswerResponse 答案信息
type AnswerResponse struct {
	ID               string  `json:"id"`
	QuestionID       string  `json:"question_id"`
	AnswerText       string  `json:"answer_text"`
	ParticipantID    *string `json:"participant_id"`
	AnsweredBy       string  `json:"answered_by"`
	IsAdminGenerated bool    `json:"is_admin_generated"`
	IsCorrect        bool    `json:"is_correct"`
	Order            int     `json:"order"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}
