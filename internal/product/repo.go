package product

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

func (r *Repo) Create(ctx context.Context, p *Product) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(p).Error
}

func (r *Repo) Update(ctx context.Context, p *Product) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(p).Error
}

func (r *Repo) FindByID(ctx context.Context, id int64) (*Product, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var p Product
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context, offset, limit int) ([]Product, int64, error) {
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
	if err := db.Model(&Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []Product
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// AdjustStock 对库存做增量修正（盘点/入库用），结果不允许为负。
func (r *Repo) AdjustStock(ctx context.Context, id int64, delta int) (*Product, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}

	var p Product
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	next := p.StockQuantity + delta
	if next < 0 {
		return nil, fmt.Errorf("stock cannot go negative: %d%+d", p.StockQuantity, delta)
	}
	p.StockQuantity = next
	if err := db.Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
