package model

// OrbitStatus 分类状态
type OrbitStatus string

const (
	OrbitStatusActive   OrbitStatus = "active"
	OrbitStatusInactive OrbitStatus = "inactive"
	OrbitStatusArchived OrbitStatus = "archived"
	OrbitStatusDraft    OrbitStatus = "draft"
)

// Valid 是否为合法状态
func (s OrbitStatus) Valid() bool {
	switch s {
	case OrbitStatusActive, OrbitStatusInactive, OrbitStatusArchived, OrbitStatusDraft:
		return true
	}
	return false
}

// Label 状态展示名
func (s OrbitStatus) Label() string {
	switch s {
	case OrbitStatusActive:
		return "Active"
	case OrbitStatusInactive:
		return "Inactive"
	case OrbitStatusArchived:
		return "Archived"
	case OrbitStatusDraft:
		return "Draft"
	}
	return string(s)
}

// DefaultOrbitColor 默认颜色
const DefaultOrbitColor = "#3B82F6"

// Orbit 分类，对应表 orbits
type Orbit struct {
	OrbitID     string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"orbit_id"`
	Name        string      `gorm:"type:varchar(100);not null"                     json:"name"`
	Slug        string      `gorm:"type:varchar(110);not null"                     json:"slug"`
	Description string      `gorm:"type:varchar(500);not null"                     json:"description"`
	Status      OrbitStatus `gorm:"type:varchar(20);not null"                      json:"status"`
	Order       int         `gorm:"column:sort_order;not null"                     json:"order"`
	Color       string      `gorm:"type:varchar(7);not null"                       json:"color"`
	Icon        string      `gorm:"type:varchar(50);not null"                      json:"icon"`
	Timestamps
}

// TableName 指定表名
func (Orbit) TableName() string { return "orbits" }

// IsActive 是否为启用状态
func (o *Orbit) IsActive() bool { return o.Status == OrbitStatusActive }

// DisplayName 非启用状态时附带状态标签
func (o *Orbit) DisplayName() string {
	if o.IsActive() {
		return o.Name
	}
	return o.Name + " (" + o.Status.Label() + ")"
}
