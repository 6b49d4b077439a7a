package model

import "time"

// Master 操作员账户，对应表 masters
type Master struct {
	MasterID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"master_id"`
	Username     string     `gorm:"type:varchar(100);not null"                     json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	IsActive     bool       `gorm:"not null"                                       json:"is_active"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime"                        json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// TableName 指定表名
func (Master) TableName() string { return "masters" }
