package vehicle

import "time"

// 车辆状态：只有 active 车辆可以被订单发运选中。
const (
	StatusActive      = "active"
	StatusMaintenance = "maintenance"
	StatusRetired     = "retired"
)

// 车型
const (
	TypeVan   = "van"
	TypeTruck = "truck"
)

// Vehicle 是 transport_vehicles 表的 GORM 模型。
type Vehicle struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Type            string    `gorm:"size:16;not null" json:"type"` // van / truck
	Name            string    `gorm:"size:64;not null" json:"name"`
	LicensePlate    string    `gorm:"uniqueIndex;size:32;not null" json:"license_plate"`
	Capacity        int       `gorm:"not null;default:0" json:"capacity"`
	Status          string    `gorm:"size:16;not null" json:"status"` // active / maintenance / retired
	AssignedAgentID *int64    `gorm:"index" json:"assigned_agent_id,omitempty"`
	Notes           string    `gorm:"size:255" json:"notes,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive 是否可参与发运。
func (v *Vehicle) IsActive() bool {
	return v.Status == StatusActive
}

// ValidStatus 校验车辆状态取值。
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

// ValidType 校验车型取值。
func ValidType(t string) bool {
	return t == TypeVan || t == TypeTruck
}
