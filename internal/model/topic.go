package model

// Topic 主题，对应表 topics
type Topic struct {
	TopicID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"topic_id"`
	AboutID     string `gorm:"type:uuid;not null"                             json:"about_id"`
	OrbitID     string `gorm:"type:uuid;not null"                             json:"orbit_id"`
	Title       string `gorm:"type:varchar(100);not null"                     json:"title"`
	Description string `gorm:"type:text;not null"                             json:"description"`
	Slug        string `gorm:"type:varchar(105);not null"                     json:"slug"`
	IsActive    bool   `gorm:"not null"                                       json:"is_active"`
	Timestamps

	// 关联（写入由 repository 显式维护）
	About                *Participant  `gorm:"foreignKey:AboutID;references:ParticipantID"                                                   json:"about,omitempty"`
	Orbit                *Orbit        `gorm:"foreignKey:OrbitID;references:OrbitID"                                                         json:"orbit,omitempty"`
	StudyingParticipants []Participant `gorm:"many2many:topic_studying_participants;joinForeignKey:TopicID;joinReferences:ParticipantID"      json:"studying_participants,omitempty"`
	Bosses               []Participant `gorm:"many2many:topic_bosses;joinForeignKey:TopicID;joinReferences:ParticipantID"                     json:"bosses,omitempty"`
	Questions            []Question    `gorm:"foreignKey:TopicID;references:TopicID"                                                         json:"questions,omitempty"`
}

// TableName 指定表名
func (Topic) TableName() string { return "topics" }

// TopicStudyingParticipant 主题学习者关联，对应表 topic_studying_participants
type TopicStudyingParticipant struct {
	TopicID       string `gorm:"type:uuid;primaryKey"`
	ParticipantID string `gorm:"type:uuid;primaryKey"`
}

// TableName 指定表名
func (TopicStudyingParticipant) TableName() string { return "topic_studying_participants" }

// TopicBoss 主题负责人关联，对应表 topic_bosses
type TopicBoss struct {
	TopicID       string `gorm:"type:uuid;primaryKey"`
	ParticipantID string `gorm:"type:uuid;primaryKey"`
}

// TableName 指定表名
func (TopicBoss) TableName() string { return "topic_bosses" }
