package seed

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mistamayor/berrymart-v1/internal/common/logger"
	"github.com/mistamayor/berrymart-v1/internal/customer"
	"github.com/mistamayor/berrymart-v1/internal/product"
	"github.com/mistamayor/berrymart-v1/internal/rbac"
	"github.com/mistamayor/berrymart-v1/internal/user"
	"github.com/mistamayor/berrymart-v1/internal/vehicle"
)

// Seeder 一组演示数据的写入器。
type Seeder struct {
	Name string
	Run  func(ctx context.Context, db *gorm.DB) error
}

var seeders = []Seeder{
	{Name: "users", Run: seedUsers},
	{Name: "customers", Run: seedCustomers},
	{Name: "products", Run: seedProducts},
	{Name: "vehicles", Run: seedVehicles},
}

// RunDemo 在空库上写入演示数据；users 表非空则整体跳过，
// 保证重启不会重复写入。
func RunDemo(ctx context.Context, db *gorm.DB, log logger.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&user.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed precheck: %w", err)
	}
	if count > 0 {
		log.Debug("seed: users table not empty, skipping demo data")
		return nil
	}

	for _, s := range seeders {
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name, err)
		}
		log.Infof("seed: %s done", s.Name)
	}
	return nil
}

// 演示账号（口令仅供本地联调）。
func seedUsers(ctx context.Context, db *gorm.DB) error {
	svc := user.NewService(user.NewRepo(db))
	demo := []user.CreateUserInput{
		{Username: "Admin", Password: "password", Role: string(rbac.RoleAdmin), FirstName: "System", LastName: "Admin", Department: "IT"},
		{Username: "john_sales", Password: "password123", Role: string(rbac.RoleSales), FirstName: "John", LastName: "Sales", Department: "Sales"},
		{Username: "mary_manager", Password: "manager123", Role: string(rbac.RoleManager), FirstName: "Mary", LastName: "Manager", Department: "Operations"},
		{Username: "dave_agent", Password: "agentpass", Role: string(rbac.RoleDeliveryAgent), FirstName: "Dave", LastName: "Agent", Department: "Logistics"},
	}
	for _, in := range demo {
		if _, err := svc.Create(ctx, in); err != nil {
			return err
		}
	}
	return nil
}

func seedCustomers(ctx context.Context, db *gorm.DB) error {
	demo := []customer.Customer{
		{
			Name: "Shoprite Lekki", Email: "orders@shoprite-lekki.example", Phone: "+234-801-000-0001",
			Type: customer.TypeWholesale,
			Addresses: []customer.Address{
				{Address: "Admiralty Way 12", City: "Lagos", State: "Lagos", Country: "Nigeria", IsDefault: true},
			},
		},
		{
			Name: "Mama Nkechi Stores", Email: "nkechi@stores.example", Phone: "+234-801-000-0002",
			Type: customer.TypeRetail,
			Addresses: []customer.Address{
				{Address: "Balogun Market Stall 45", City: "Lagos", State: "Lagos", Country: "Nigeria", IsDefault: true},
				{Address: "3 Herbert Macaulay Way", City: "Yaba", State: "Lagos", Country: "Nigeria"},
			},
		},
		{
			Name: "Mile 12 Traders Co-op", Email: "coop@mile12.example", Phone: "+234-801-000-0003",
			Type: customer.TypeOpenMarket,
			Addresses: []customer.Address{
				{Address: "Mile 12 Market Block C", City: "Lagos", State: "Lagos", Country: "Nigeria", IsDefault: true},
			},
		},
	}
	for i := range demo {
		if err := db.WithContext(ctx).Create(&demo[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedProducts(ctx context.Context, db *gorm.DB) error {
	demo := []product.Product{
		{Name: "Strawberry Crate 5kg", SKU: "BER-STR-5", Description: "Fresh strawberries, 5kg crate",
			BasePrice: 100000, RetailPrice: 120000, WholesalePrice: 90000, OpenMarketPrice: 100000, StockQuantity: 120},
		{Name: "Blueberry Tray 2kg", SKU: "BER-BLU-2", Description: "Blueberries, 2kg tray",
			BasePrice: 80000, RetailPrice: 95000, WholesalePrice: 72000, OpenMarketPrice: 85000, StockQuantity: 200},
		{Name: "Mixed Berry Box 1kg", SKU: "BER-MIX-1", Description: "Mixed berries, 1kg gift box",
			BasePrice: 45000, RetailPrice: 60000, WholesalePrice: 40000, OpenMarketPrice: 50000, StockQuantity: 80},
	}
	for i := range demo {
		if err := db.WithContext(ctx).Create(&demo[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedVehicles(ctx context.Context, db *gorm.DB) error {
	// dave_agent 挂到第一辆车上
	var agent user.User
	if err := db.WithContext(ctx).Where("username = ?", "dave_agent").First(&agent).Error; err != nil {
		return err
	}

	demo := []vehicle.Vehicle{
		{Type: vehicle.TypeVan, Name: "Cold Van 1", LicensePlate: "KJA-101-XA", Capacity: 800,
			Status: vehicle.StatusActive, AssignedAgentID: &agent.ID},
		{Type: vehicle.TypeTruck, Name: "Reefer Truck 1", LicensePlate: "KJA-202-XB", Capacity: 5000,
			Status: vehicle.StatusActive},
	}
	for i := range demo {
		if err := db.WithContext(ctx).Create(&demo[i]).Error; err != nil {
			return err
		}
	}
	return db.WithContext(ctx).Model(&user.User{}).
		Where("id = ?", agent.ID).Update("vehicle_id", demo[0].ID).Error
}
