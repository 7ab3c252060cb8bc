package rbac

import "strings"

// Role 系统内的固定角色枚举（持久化为字符串）。
type Role string

const (
	RoleAdmin         Role = "Admin"
	RoleManagement    Role = "Management"
	RoleAccounts      Role = "Accounts"
	RoleManager       Role = "Manager"
	RoleSales         Role = "Sales"
	RoleInventory     Role = "Inventory"
	RoleDeliveryAgent Role = "DeliveryAgent"
)

// allRoles 用于 ParseRole / Valid 的查表。
var allRoles = map[Role]struct{}{
	RoleAdmin:         {},
	RoleManagement:    {},
	RoleAccounts:      {},
	RoleManager:       {},
	RoleSales:         {},
	RoleInventory:     {},
	RoleDeliveryAgent: {},
}

// 各业务动作的角色要求（Admin / Management 天然放行，不必列出也能通过）。
var (
	OrderCreateRoles   = []Role{RoleAdmin, RoleManager, RoleSales}
	OrderApproveRoles  = []Role{RoleAdmin, RoleManager}
	OrderDispatchRoles = []Role{RoleAdmin, RoleManager, RoleInventory}
	CustomerWriteRoles = []Role{RoleAdmin, RoleManagement, RoleManager}
	ProductWriteRoles  = []Role{RoleAdmin, RoleManager, RoleInventory}
	VehicleWriteRoles  = []Role{RoleAdmin, RoleManagement, RoleManager}
	UserManageRoles    = []Role{RoleAdmin}
)

// ParseRole 解析角色字符串（大小写敏感，未知角色返回 false）。
func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimSpace(s))
	_, ok := allRoles[r]
	return r, ok
}

// Valid 判断是否是合法角色。
func (r Role) Valid() bool {
	_, ok := allRoles[r]
	return ok
}

// HasPermission 判断 role 是否满足 required 集合：
// - Admin / Management 拥有全部权限（与 required 无关）
// - 其余角色要求出现在 required 中
// 纯查表，不做任何 I/O，失败只会表现为返回 false。
func HasPermission(role Role, required ...Role) bool {
	if !role.Valid() {
		return false
	}
	if role == RoleAdmin || role == RoleManagement {
		return true
	}
	for _, r := range required {
		if role == r {
			return true
		}
	}
	return false
}
