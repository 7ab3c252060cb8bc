package order

import "time"

// Status 订单状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending    Status = "pending"    // 待审批
	StatusApproved   Status = "approved"   // 已审批，待发运
	StatusRejected   Status = "rejected"   // 已驳回（终态）
	StatusDispatched Status = "dispatched" // 已发运，在途
	StatusDelivered  Status = "delivered"  // 已送达（终态）
)

// Order 销售订单 GORM 模型。
// 客户名/类型与收货地址在下单时做快照，之后修改客户档案不影响已有订单；
// total_amount（单位：分）在创建时一次算定，之后不再重算。
type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// 客户快照
	CustomerID      int64  `gorm:"index;not null" json:"customer_id"`
	CustomerName    string `gorm:"size:128;not null" json:"customer_name"`
	CustomerType    string `gorm:"size:16;not null" json:"customer_type"`
	ShipToAddressID int64  `gorm:"not null" json:"ship_to_address_id"`
	ShipToAddress   string `gorm:"size:512;not null" json:"ship_to_address"`

	TotalAmount int64  `gorm:"not null" json:"total_amount"`
	Status      Status `gorm:"type:varchar(16);index;not null" json:"status"`
	Notes       string `gorm:"size:512" json:"notes,omitempty"` // 下单备注；驳回时覆盖为驳回原因

	// 创建人快照
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	CreatedBy     int64     `gorm:"index;not null" json:"created_by"`
	CreatedByName string    `gorm:"size:128" json:"created_by_name"`

	// 各阶段生命周期字段，随状态流转恰好写入一次
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	ApprovedBy          string     `gorm:"size:128" json:"approved_by,omitempty"`
	DispatchedAt        *time.Time `json:"dispatched_at,omitempty"`
	DispatchedBy        string     `gorm:"size:128" json:"dispatched_by,omitempty"`
	DispatchedVehicleID *int64     `gorm:"index" json:"dispatched_vehicle_id,omitempty"`
	TrackingNumber      string     `gorm:"size:64" json:"tracking_number,omitempty"`
	DeliveredAt         *time.Time `json:"delivered_at,omitempty"`
	PODImage            string     `gorm:"size:255" json:"pod_image,omitempty"`
	DeliveryNotes       string     `gorm:"size:512" json:"delivery_notes,omitempty"`
}

// OrderItem 订单明细，随订单一并创建，创建后不再修改。
// unit_price 是下单时按客户类型解析出的快照价（单位：分）。
type OrderItem struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64  `gorm:"index;not null" json:"order_id"`
	ProductID   int64  `gorm:"index;not null" json:"product_id"`
	ProductName string `gorm:"size:128;not null" json:"product_name"`
	Quantity    int    `gorm:"not null" json:"quantity"`
	UnitPrice   int64  `gorm:"not null" json:"unit_price"`
	TotalPrice  int64  `gorm:"not null" json:"total_price"`
}

// Terminal 是否处于终态（delivered / rejected 不再流转）。
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusRejected
}

// ValidStatus 校验状态取值（列表过滤参数用）。
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusDispatched, StatusDelivered:
		return true
	}
	return false
}
