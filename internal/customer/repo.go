package customer

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, c *Customer) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	// 地址随客户一并写入（gorm association）
	return db.Create(c).Error
}

// Update 整体覆盖客户及其地址列表。
// 地址是全量替换：先删旧行再写新行，避免留下孤儿地址
// （孤儿里的默认标记会抢走后续下单的默认地址解析）。
func (r *Repo) Update(ctx context.Context, c *Customer) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", c.ID).Delete(&Address{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(c).Error
	})
}

func (r *Repo) FindByID(ctx context.Context, id int64) (*Customer, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Customer
	if err := db.Preload("Addresses").Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) List(ctx context.Context, offset, limit int) ([]Customer, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := db.Model(&Customer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []Customer
	if err := db.Preload("Addresses").Order("created_at DESC").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var total int64
	err := db.Model(&Customer{}).Count(&total).Error
	return total, err
}
