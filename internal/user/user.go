package user

import (
	"strings"
	"time"

	"github.com/mistamayor/berrymart-v1/internal/rbac"
)

// User 是 users 表的 GORM 模型。口令只存盐 + 哈希，不落明文。
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string     `gorm:"size:128" json:"email"`
	PasswordHash string     `gorm:"size:128;not null" json:"-"`
	PasswordSalt string     `gorm:"size:64;not null" json:"-"`
	Role         string     `gorm:"size:32;not null" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	FirstName    string     `gorm:"size:64" json:"first_name"`
	LastName     string     `gorm:"size:64" json:"last_name"`
	Department   string     `gorm:"size:64" json:"department"`
	Phone        string     `gorm:"size:32" json:"phone"`
	ManagerID    *int64     `gorm:"index" json:"manager_id,omitempty"`
	VehicleID    *int64     `gorm:"index" json:"vehicle_id,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// FullName 姓名拼接（订单创建人/审批人快照用）。
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RoleValue 解析持久化的角色字符串。
func (u *User) RoleValue() (rbac.Role, bool) {
	return rbac.ParseRole(u.Role)
}
