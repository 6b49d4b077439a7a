package model

import (
	"strings"
	"time"
)

// Position 参与者职位
type Position string

const (
	PositionDeveloper  Position = "developer"
	PositionDesigner   Position = "designer"
	PositionManager    Position = "manager"
	PositionAnalyst    Position = "analyst"
	PositionResearcher Position = "researcher"
	PositionStudent    Position = "student"
	PositionProfessor  Position = "professor"
	PositionOther      Position = "other"
)

// Valid 是否为合法职位
func (p Position) Valid() bool {
	switch p {
	case PositionDeveloper, PositionDesigner, PositionManager, PositionAnalyst,
		PositionResearcher, PositionStudent, PositionProfessor, PositionOther:
		return true
	}
	return false
}

// Participant 参与者档案，对应表 participants
type Participant struct {
	ParticipantID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"participant_id"`
	Nickname      string    `gorm:"type:varchar(120);not null"                     json:"nickname"`
	Firstname     string    `gorm:"type:varchar(120);not null"                     json:"firstname"`
	Lastname      string    `gorm:"type:varchar(120);not null"                     json:"lastname"`
	Position      Position  `gorm:"type:varchar(20);not null"                      json:"position"`
	Email         *string   `gorm:"type:varchar(254)"                              json:"email"`
	IsActive      bool      `gorm:"not null"                                       json:"is_active"`
	Bio           string    `gorm:"type:varchar(500);not null"                     json:"bio"`
	DateJoined    time.Time `gorm:"not null;autoCreateTime"                        json:"date_joined"`
	LastUpdated   time.Time `gorm:"not null;autoUpdateTime"                        json:"last_updated"`
}

// TableName 指定表名
func (Participant) TableName() string { return "participants" }

// FullName 名与姓拼接
func (p *Participant) FullName() string {
	return strings.TrimSpace(p.Firstname + " " + p.Lastname)
}

// DisplayName 有全名时展示全名，否则展示昵称
func (p *Participant) DisplayName() string {
	if name := p.FullName(); name != "" {
		return name
	}
	return p.Nickname
}
