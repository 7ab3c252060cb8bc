package customer

import "time"

// 客户类型取值（决定商品取哪一档售价）。
const (
	TypeRetail     = "retail"
	TypeWholesale  = "wholesale"
	TypeOpenMarket = "open_market"
)

// Address 客户收货地址，一个客户可有多条，其中恰好一条为默认。
type Address struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64  `gorm:"index;not null" json:"customer_id"`
	Address    string `gorm:"size:255;not null" json:"address"`
	City       string `gorm:"size:64" json:"city"`
	State      string `gorm:"size:64" json:"state"`
	PostalCode string `gorm:"size:16" json:"postal_code"`
	Country    string `gorm:"size:64" json:"country"`
	IsDefault  bool   `gorm:"not null;default:false" json:"is_default"`
}

// Customer 客户档案 GORM 模型。
type Customer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:128" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Type      string    `gorm:"size:16;not null" json:"type"` // retail / wholesale / open_market
	Addresses []Address `gorm:"foreignKey:CustomerID" json:"addresses"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// 修改审计（最近一次）
	LastModifiedAt      *time.Time `json:"last_modified_at,omitempty"`
	LastModifiedBy      string     `gorm:"size:64" json:"last_modified_by,omitempty"`
	LastModifiedChanges string     `gorm:"size:512" json:"last_modified_changes,omitempty"`
}

// DefaultAddress 返回默认收货地址；没有标记默认时退回第一条。
func (c *Customer) DefaultAddress() *Address {
	for i := range c.Addresses {
		if c.Addresses[i].IsDefault {
			return &c.Addresses[i]
		}
	}
	if len(c.Addresses) > 0 {
		return &c.Addresses[0]
	}
	return nil
}

// AddressByID 按 id 查找该客户名下的地址。
func (c *Customer) AddressByID(id int64) *Address {
	for i := range c.Addresses {
		if c.Addresses[i].ID == id {
			return &c.Addresses[i]
		}
	}
	return nil
}

// ValidType 校验客户类型取值。
func ValidType(t string) bool {
	switch t {
	case TypeRetail, TypeWholesale, TypeOpenMarket:
		return true
	}
	return false
}
