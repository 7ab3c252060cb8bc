package product

import (
	"time"

	"github.com/mistamayor/berrymart-v1/internal/pricing"
)

// Product 商品 GORM 模型。价格统一为分；库存只做台账，下单不扣减。
type Product struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"size:128;not null" json:"name"`
	Description     string    `gorm:"size:512" json:"description"`
	SKU             string    `gorm:"uniqueIndex;size:64;not null" json:"sku"`
	BasePrice       int64     `gorm:"not null;default:0" json:"base_price"`
	RetailPrice     int64     `gorm:"not null;default:0" json:"retail_price"`
	WholesalePrice  int64     `gorm:"not null;default:0" json:"wholesale_price"`
	OpenMarketPrice int64     `gorm:"not null;default:0" json:"open_market_price"`
	StockQuantity   int       `gorm:"not null;default:0" json:"stock_quantity"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PricePoints 取出三档售价，供定价解析使用。
func (p *Product) PricePoints() pricing.PricePoints {
	return pricing.PricePoints{
		Retail:     p.RetailPrice,
		Wholesale:  p.WholesalePrice,
		OpenMarket: p.OpenMarketPrice,
	}
}
