package model

// Question 问题，对应表 questions
type Question struct {
	QuestionID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"question_id"`
	TopicID      string `gorm:"type:uuid;not null"                             json:"topic_id"`
	QuestionText string `gorm:"type:text;not null"                             json:"question_text"`
	Order        int    `gorm:"column:sort_order;not null"                     json:"order"`
	IsActive     bool   `gorm:"not null"                                       json:"is_active"`
	Timestamps

	Answers []Answer `gorm:"foreignKey:QuestionID;references:QuestionID" json:"answers,omitempty"`
}

// TableName 指定表名
func (Question) TableName() string { return "questions" }

// Answer 答案，对应表 answers
// ParticipantID 为空表示由管理员录入
type Answer struct {
	AnswerID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"answer_id"`
	QuestionID    string  `gorm:"type:uuid;not null"                             json:"question_id"`
	ParticipantID *string `gorm:"type:uuid"                                      json:"participant_id"`
	AnswerText    string  `gorm:"type:text;not null"                             json:"answer_text"`
	IsCorrect     bool    `gorm:"not null"                                       json:"is_correct"`
	Order         int     `gorm:"column:sort_order;not null"                     json:"order"`
	Timestamps

	Participant *Participant `gorm:"foreignKey:ParticipantID;references:ParticipantID" json:"participant,omitempty"`
}

// TableName 指定表名
func (Answer) TableName() string { return "answers" }

// AdminLabel 无作者答案的展示名
const AdminLabel = "Admin"

// IsAdminGenerated 是否为管理员录入
func (a *Answer) IsAdminGenerated() bool { return a.ParticipantID == nil }

// AnsweredBy 作者昵称，无作者时为 Admin
func (a *Answer) AnsweredBy() string {
	if a.Participant != nil {
		return a.Participant.Nickname
	}
	return AdminLabel
}
