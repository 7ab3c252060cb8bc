package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mistamayor/berrymart-v1/internal/customer"
	"github.com/mistamayor/berrymart-v1/internal/product"
	"github.com/mistamayor/berrymart-v1/internal/rbac"
	"github.com/mistamayor/berrymart-v1/internal/vehicle"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customer.Customer{}, &customer.Address{},
		&product.Product{}, &vehicle.Vehicle{},
		&Order{}, &OrderItem{},
	))
	svc := NewService(
		NewRepo(db),
		customer.NewRepo(db),
		product.NewRepo(db),
		vehicle.NewRepo(db),
	)
	return svc, db
}

func seedFixtures(t *testing.T, db *gorm.DB) (customerID, productID, vehicleID int64) {
	t.Helper()
	c := &customer.Customer{
		Name: "Acme Wholesale",
		Type: customer.TypeWholesale,
		Addresses: []customer.Address{
			{Address: "12 Dock Road", City: "Lagos", Country: "Nigeria", IsDefault: true},
			{Address: "3 Market Lane", City: "Ibadan", Country: "Nigeria"},
		},
	}
	require.NoError(t, db.Create(c).Error)

	p := &product.Product{
		Name:            "Berry Crate",
		SKU:             "BC-001",
		RetailPrice:     1200,
		WholesalePrice:  900,
		OpenMarketPrice: 1000,
		StockQuantity:   50,
	}
	require.NoError(t, db.Create(p).Error)

	v := &vehicle.Vehicle{
		Type:         vehicle.TypeVan,
		Name:         "Van 1",
		LicensePlate: "KJA-100",
		Status:       vehicle.StatusActive,
	}
	require.NoError(t, db.Create(v).Error)
	return c.ID, p.ID, v.ID
}

var (
	salesActor   = Actor{UserID: 2, Name: "John Sales", Role: rbac.RoleSales}
	managerActor = Actor{UserID: 3, Name: "Mary Manager", Role: rbac.RoleManager}
	agentActor   = Actor{UserID: 4, Name: "Dave Agent", Role: rbac.RoleDeliveryAgent}
)

func createTestOrder(t *testing.T, svc *Service, customerID, productID int64) *Order {
	t.Helper()
	o, err := svc.CreateOrder(context.Background(), salesActor, CreateOrderInput{
		CustomerID: customerID,
		Items:      []LineInput{{ProductID: productID, Quantity: 2}},
	})
	require.NoError(t, err)
	return o
}

func TestCreateOrderWholesalePricing(t *testing.T) {
	svc, db := newTestService(t)
	customerID, productID, _ := seedFixtures(t, db)

	o := createTestOrder(t, svc, customerID, productID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(1800), o.TotalAmount) // 900 × 2，按 wholesale 档
	assert.Equal(t, "Acme Wholesale", o.CustomerName)
	assert.Equal(t, customer.TypeWholesale, o.CustomerType)
	assert.Contains(t, o.ShipToAddress, "12 Dock Road") // 默认地址
	assert.Equal(t, "John Sales", o.CreatedByName)

	items, err := svc.orders.ItemsByOrderID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(900), items[0].UnitPrice)
	assert.Equal(t, "Berry Crate", items[0].ProductName)
}

func TestCreateOrderExplicitAddress(t *testing.T) {
	svc, db := newTestService(t)
	customerID, productID, _ := seedFixtures(t, db)

	var c customer.Customer
	require.NoError(t, db.Preload("Addresses").First(&c, customerID).Error)
	second := c.Addresses[1]

	o, err := svc.CreateOrder(context.Background(), salesActor, CreateOrderInput{
		CustomerID:      customerID,
		ShipToAddressID: second.ID,
		Items:           []LineInput{{ProductID: productID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, o.ShipToAddressID)
	assert.Contains(t, o.ShipToAddress, "3 Market Lane")

	// 不属于该客户的地址 id 要拒绝
	_, err = svc.CreateOrder(context.Background(), salesActor, CreateOrderInput{
		CustomerID:      customerID,
		ShipToAddressID: 9999,
		Items:           []LineInput{{ProductID: productID, Quantity: 1}},
	})
	assert.Error(t, err)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, db := newTestService(t)
	customerID, productID, _ := seedFixtures(t, db)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, salesActor, CreateOrderInput{CustomerID: customerID})
	assert.Error(t, err, "空购物车")

	_, err = svc.CreateOrder(ctx, salesActor, CreateOrderInput{
		CustomerID: customerID,
		Items:      []LineInput{{ProductID: productID, Quantity: 0}},
	})
	assert.Error(t, err, "数量必须为正")

	_, err = svc.CreateOrder(ctx, salesActor, CreateOrderInput{
		CustomerID: 404,
		Items:      []LineInput{{ProductID: productID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.CreateOrder(ctx, agentActor, CreateOrderInput{
		CustomerID: customerID,
		Items:      []LineInput{{ProductID: productID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrPermissionDenied, "配送员不能下单")
}

func TestTotalAmountImmuneToPriceEdits(t *testing.T) {
	svc, db := newTestService(t)
	customerID, productID, _ := seedFixtures(t, db)
	o := createTestOrder(t, svc, customerID, productID)

	// 改价后已建订单金额不变
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", productID).
		Update("wholesale_price", 5000).Error)

	got, _, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), got.TotalAmount)
}

func TestApproveAndDoubleApprove(t *testing.T) {
	svc, db := newTestService(t)
	customerID, productID, _ := seedFixtures(t, db)
	o := createTestOrder(t, svc, customerID, productID)
	ctx := context.Background()

	got, err := svc.Approve(ctx, managerActor, o.ID, "ok to ship")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.Equal(t, "Mary Manager", got.ApprovedBy)
	require.NotNil(t, got.ApprovedAt)

	_, err = svc.Approve(ctx, managerActor, o.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition, "重复审批要失败")

	_, err = svc.Approve(ctx, salesActor, o.ID, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, db := newTestService(t)
	customerID, productID, _ := seedFixtures(t, db)
	o := createTestOrder(t, svc, customerID, productID)
	ctx := context.Background()

	_, err := svc.Reject(ctx, managerActor, o.ID, "  ")
	assert.Error(t, err)

	got, _, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status, "校验失败时订单不应被改动")

	got, err = svc.Reject(ctx, managerActor, o.ID, "customer cancelled")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)

	_, err = svc.Dispatch(ctx, managerActor, o.ID, "TRK-1", 1)
	assert.ErrorIs(t, err, ErrInvalidTransition, "终态不可再流转")
}

func TestDispatchRules(t *testing.T) {
	svc, db := newTestService(t)
	customerID, productID, vehicleID := seedFixtures(t, db)
	o := createTestOrder(t, svc, customerID, productID)
	ctx := context.Background()

	// 未审批先发运
	_, err := svc.Dispatch(ctx, managerActor, o.ID, "TRK-100", vehicleID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Approve(ctx, managerActor, o.ID, "")
	require.NoError(t, err)

	_, err = svc.Dispatch(ctx, managerActor, o.ID, "TRK-100", 0)
	assert.Error(t, err, "必须指定车辆")

	// 非 active 车辆
	mv := &vehicle.Vehicle{Type: vehicle.TypeTruck, Name: "Truck 9", LicensePlate: "KJA-900", Status: vehicle.StatusMaintenance}
	require.NoError(t, db.Create(mv).Error)
	_, err = svc.Dispatch(ctx, managerActor, o.ID, "TRK-100", mv.ID)
	assert.Error(t, err)

	got, err := svc.Dispatch(ctx, managerActor, o.ID, "TRK-100", vehicleID)
	require.NoError(t, err)
	assert.Equal(t, StatusDispatched, got.Status)
	assert.Equal(t, "TRK-100", got.TrackingNumber)
	require.NotNil(t, got.DispatchedVehicleID)
	assert.Equal(t, vehicleID, *got.DispatchedVehicleID)
}

func TestDeliverKeepsTrackingNumber(t *testing.T) {
	svc, db := newTestService(t)
	customerID, productID, vehicleID := seedFixtures(t, db)
	o := createTestOrder(t, svc, customerID, productID)
	ctx := context.Background()

	_, err := svc.Approve(ctx, managerActor, o.ID, "")
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, managerActor, o.ID, "TRK-7", vehicleID)
	require.NoError(t, err)

	_, err = svc.Deliver(ctx, managerActor, o.ID, "", "left at gate")
	assert.Error(t, err, "POD 凭证必填")

	got, err := svc.Deliver(ctx, managerActor, o.ID, "pod/7.jpg", "left at gate")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, got.Status)
	assert.Equal(t, "TRK-7", got.TrackingNumber)
	require.NotNil(t, got.DeliveredAt)

	_, err = svc.Deliver(ctx, managerActor, o.ID, "pod/7.jpg", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestListAndStatusCounts(t *testing.T) {
	svc, db := newTestService(t)
	customerID, productID, _ := seedFixtures(t, db)
	ctx := context.Background()

	o1 := createTestOrder(t, svc, customerID, productID)
	createTestOrder(t, svc, customerID, productID)
	_, err := svc.Approve(ctx, managerActor, o1.ID, "")
	require.NoError(t, err)

	all, total, err := svc.ListOrders(ctx, ListOrdersFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	pending, total, err := svc.ListOrders(ctx, ListOrdersFilter{Status: StatusPending, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.NotEqual(t, o1.ID, pending[0].ID)

	_, _, err = svc.ListOrders(ctx, ListOrdersFilter{Status: Status("shipped")})
	assert.Error(t, err)

	counts, err := svc.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[StatusPending])
	assert.Equal(t, int64(1), counts[StatusApproved])
	assert.Equal(t, int64(0), counts[StatusRejected])
}

func TestErrorsAreNotFoundAware(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Approve(context.Background(), managerActor, 404, "")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
