package vehicle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mistamayor/berrymart-v1/internal/rbac"
	"github.com/mistamayor/berrymart-v1/internal/user"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Vehicle{}, &user.User{}))
	return NewService(NewRepo(db), user.NewRepo(db)), db
}

func TestCreateVehicleDefaultsAndValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, CreateVehicleInput{Type: TypeVan, Name: "Van 1", LicensePlate: "KJA-100"})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, v.Status, "缺省状态为 active")

	_, err = svc.Create(ctx, CreateVehicleInput{Type: "bicycle", Name: "X", LicensePlate: "KJA-101"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, CreateVehicleInput{Type: TypeTruck, Name: "T"})
	assert.Error(t, err, "车牌必填")
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, CreateVehicleInput{Type: TypeVan, Name: "Van 1", LicensePlate: "KJA-100"})
	require.NoError(t, err)

	v, err = svc.UpdateStatus(ctx, v.ID, StatusMaintenance)
	require.NoError(t, err)
	assert.False(t, v.IsActive())

	_, err = svc.UpdateStatus(ctx, v.ID, "parked")
	assert.Error(t, err)
}

func TestAssignAgentWritesBothSides(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	userSvc := user.NewService(user.NewRepo(db))
	agent, err := userSvc.Create(ctx, user.CreateUserInput{
		Username: "dave_agent", Password: "agentpass", Role: string(rbac.RoleDeliveryAgent),
	})
	require.NoError(t, err)
	sales, err := userSvc.Create(ctx, user.CreateUserInput{
		Username: "john_sales", Password: "password123", Role: string(rbac.RoleSales),
	})
	require.NoError(t, err)

	v, err := svc.Create(ctx, CreateVehicleInput{Type: TypeVan, Name: "Van 1", LicensePlate: "KJA-100"})
	require.NoError(t, err)

	// 非配送员不能被指派
	_, err = svc.AssignAgent(ctx, v.ID, sales.ID)
	assert.Error(t, err)

	v, err = svc.AssignAgent(ctx, v.ID, agent.ID)
	require.NoError(t, err)
	require.NotNil(t, v.AssignedAgentID)
	assert.Equal(t, agent.ID, *v.AssignedAgentID)

	got, err := userSvc.Get(ctx, agent.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VehicleID)
	assert.Equal(t, v.ID, *got.VehicleID)
}
