package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mistamayor/berrymart-v1/internal/customer"
	"github.com/mistamayor/berrymart-v1/internal/pricing"
	"github.com/mistamayor/berrymart-v1/internal/product"
	"github.com/mistamayor/berrymart-v1/internal/rbac"
	"github.com/mistamayor/berrymart-v1/internal/vehicle"
)

// ErrPermissionDenied 操作者角色不满足动作的角色要求。
// 路由层已有同样的门控，这里是纵深防御。
var ErrPermissionDenied = errors.New("permission denied")

// Actor 执行操作的用户（从鉴权上下文带入）。
type Actor struct {
	UserID int64
	Name   string
	Role   rbac.Role
}

// Service 封装订单领域的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	orders    *Repo
	customers *customer.Repo
	products  *product.Repo
	vehicles  *vehicle.Repo
}

func NewService(orders *Repo, customers *customer.Repo, products *product.Repo, vehicles *vehicle.Repo) *Service {
	return &Service{
		orders:    orders,
		customers: customers,
		products:  products,
		vehicles:  vehicles,
	}
}

// LineInput 下单购物车里的一行。
type LineInput struct {
	ProductID int64
	Quantity  int
}

// CreateOrderInput 创建订单的入参。
// ShipToAddressID 为 0 时取客户默认地址。
type CreateOrderInput struct {
	CustomerID      int64
	ShipToAddressID int64
	Items           []LineInput
	Notes           string
}

// ListOrdersFilter 查询条件。
type ListOrdersFilter struct {
	Status Status
	Offset int
	Limit  int
}

// CreateOrder 创建订单：
// - 客户名/类型、收货地址做快照
// - 单价按客户类型解析一次并写入明细
// - total_amount = Σ(quantity × unit_price)，之后不再重算
func (s *Service) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (*Order, error) {
	if s == nil || s.orders == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if !rbac.HasPermission(actor.Role, rbac.OrderCreateRoles...) {
		return nil, ErrPermissionDenied
	}
	if in.CustomerID <= 0 {
		return nil, fmt.Errorf("customer_id required")
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("at least one line item required")
	}

	c, err := s.customers.FindByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	var addr *customer.Address
	if in.ShipToAddressID > 0 {
		addr = c.AddressByID(in.ShipToAddressID)
		if addr == nil {
			return nil, fmt.Errorf("address %d does not belong to customer %d", in.ShipToAddressID, c.ID)
		}
	} else {
		addr = c.DefaultAddress()
		if addr == nil {
			return nil, fmt.Errorf("customer %d has no shipping address", c.ID)
		}
	}

	items := make([]OrderItem, 0, len(in.Items))
	var total int64
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive for product %d", line.ProductID)
		}
		p, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		unit := pricing.Resolve(p.PricePoints(), c.Type)
		lineTotal := unit * int64(line.Quantity)
		items = append(items, OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   unit,
			TotalPrice:  lineTotal,
		})
		total += lineTotal
	}

	o := &Order{
		CustomerID:      c.ID,
		CustomerName:    c.Name,
		CustomerType:    c.Type,
		ShipToAddressID: addr.ID,
		ShipToAddress:   formatAddress(addr),
		TotalAmount:     total,
		Status:          StatusPending,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedBy:       actor.UserID,
		CreatedByName:   strings.TrimSpace(actor.Name),
	}

	if err := s.orders.Create(ctx, o, items); err != nil {
		return nil, err
	}
	return o, nil
}

// Approve 审批通过（pending -> approved）。
func (s *Service) Approve(ctx context.Context, actor Actor, orderID int64, comment string) (*Order, error) {
	if !rbac.HasPermission(actor.Role, rbac.OrderApproveRoles...) {
		return nil, ErrPermissionDenied
	}
	return s.transition(ctx, orderID, func(o *Order) error {
		return ApplyApprove(o, actor.Name, comment, time.Now())
	})
}

// Reject 审批驳回（pending -> rejected，终态）。
func (s *Service) Reject(ctx context.Context, actor Actor, orderID int64, reason string) (*Order, error) {
	if !rbac.HasPermission(actor.Role, rbac.OrderApproveRoles...) {
		return nil, ErrPermissionDenied
	}
	return s.transition(ctx, orderID, func(o *Order) error {
		return ApplyReject(o, reason, time.Now())
	})
}

// Dispatch 发运（approved -> dispatched）。车辆必须存在且为 active。
func (s *Service) Dispatch(ctx context.Context, actor Actor, orderID int64, trackingNumber string, vehicleID int64) (*Order, error) {
	if !rbac.HasPermission(actor.Role, rbac.OrderDispatchRoles...) {
		return nil, ErrPermissionDenied
	}
	if vehicleID <= 0 {
		return nil, fmt.Errorf("vehicle required")
	}
	v, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsActive() {
		return nil, fmt.Errorf("vehicle %d is not active (status=%s)", v.ID, v.Status)
	}
	return s.transition(ctx, orderID, func(o *Order) error {
		return ApplyDispatch(o, actor.Name, trackingNumber, v.ID, time.Now())
	})
}

// Deliver 送达（dispatched -> delivered，终态）。POD 凭证必填。
func (s *Service) Deliver(ctx context.Context, actor Actor, orderID int64, podImage, deliveryNotes string) (*Order, error) {
	if !rbac.HasPermission(actor.Role, rbac.OrderDispatchRoles...) {
		return nil, ErrPermissionDenied
	}
	return s.transition(ctx, orderID, func(o *Order) error {
		return ApplyDeliver(o, podImage, deliveryNotes, time.Now())
	})
}

// transition 读订单 -> 应用状态变更 -> 回写。
// apply 失败时不落库，订单保持原样。
func (s *Service) transition(ctx context.Context, orderID int64, apply func(*Order) error) (*Order, error) {
	if s == nil || s.orders == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if orderID <= 0 {
		return nil, fmt.Errorf("order_id required")
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := apply(o); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*Order, []OrderItem, error) {
	if s == nil || s.orders == nil {
		return nil, nil, fmt.Errorf("service not initialized")
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.orders.ItemsByOrderID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return o, items, nil
}

func (s *Service) ListOrders(ctx context.Context, f ListOrdersFilter) ([]Order, int64, error) {
	if s == nil || s.orders == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, fmt.Errorf("unknown status: %s", f.Status)
	}
	return s.orders.List(ctx, f.Status, f.Offset, f.Limit)
}

func (s *Service) StatusCounts(ctx context.Context) (map[Status]int64, error) {
	if s == nil || s.orders == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.orders.CountByStatus(ctx)
}

// formatAddress 收货地址快照的拼接格式与下单界面保持一致。
func formatAddress(a *customer.Address) string {
	parts := []string{a.Address, a.City, a.State, strings.TrimSpace(a.Country + " " + a.PostalCode)}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
