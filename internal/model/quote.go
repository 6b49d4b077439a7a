package model

import "time"

// Quote 仪表盘语录，对应表 quotes
type Quote struct {
	QuoteID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"quote_id"`
	Quote     string    `gorm:"type:text;not null"                             json:"quote"`
	Author    string    `gorm:"type:varchar(200);not null"                     json:"author"`
	IsActive  bool      `gorm:"not null"                                       json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"                        json:"created_at"`
}

// TableName 指定表名
func (Quote) TableName() string { return "quotes" }
