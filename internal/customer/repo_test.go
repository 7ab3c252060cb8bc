package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) (*Repo, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Customer{}, &Address{}))
	return NewRepo(db), db
}

func TestUpdateReplacesAddresses(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	c := &Customer{
		Name: "Acme Wholesale",
		Type: TypeWholesale,
		Addresses: []Address{
			{Address: "12 Dock Road", City: "Lagos", IsDefault: true},
			{Address: "3 Market Lane", City: "Ibadan"},
		},
	}
	require.NoError(t, repo.Create(ctx, c))

	// 整体换成一条新地址（编辑界面提交的就是全量列表）
	c.Addresses = []Address{
		{CustomerID: c.ID, Address: "7 Harbour View", City: "Lagos", IsDefault: true},
	}
	ensureSingleDefault(c.Addresses)
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Addresses, 1, "旧地址行必须被清掉")

	var defaults int
	for _, a := range got.Addresses {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults, "默认地址恰好一条")

	def := got.DefaultAddress()
	require.NotNil(t, def)
	assert.Equal(t, "7 Harbour View", def.Address, "下单解析到的是新默认地址")

	// 库里不残留孤儿行
	var rows int64
	require.NoError(t, db.Model(&Address{}).Where("customer_id = ?", c.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestUpdateKeepsMultipleAddressesSingleDefault(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	c := &Customer{
		Name: "Mama Nkechi Stores",
		Type: TypeRetail,
		Addresses: []Address{
			{Address: "Balogun Market Stall 45", City: "Lagos", IsDefault: true},
		},
	}
	require.NoError(t, repo.Create(ctx, c))

	// 两条都标默认时只保留第一条标记
	c.Addresses = []Address{
		{CustomerID: c.ID, Address: "Balogun Market Stall 45", City: "Lagos", IsDefault: true},
		{CustomerID: c.ID, Address: "3 Herbert Macaulay Way", City: "Yaba", IsDefault: true},
	}
	ensureSingleDefault(c.Addresses)
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Addresses, 2)

	var defaults int
	for _, a := range got.Addresses {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}
