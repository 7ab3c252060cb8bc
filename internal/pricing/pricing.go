package pricing

// 客户类型枚举（与客户档案的 type 字段保持一致）。
const (
	CustomerTypeRetail     = "retail"
	CustomerTypeWholesale  = "wholesale"
	CustomerTypeOpenMarket = "open_market"
)

// PricePoints 商品的三档售价（单位：分）。
type PricePoints struct {
	Retail     int64
	Wholesale  int64
	OpenMarket int64
}

// Resolve 按客户类型取对应档位的售价；未知类型兜底为零售价。
// 仅在下单加购时解析一次，解析结果写入订单明细后不再跟随商品价格变动。
func Resolve(pp PricePoints, customerType string) int64 {
	switch customerType {
	case CustomerTypeRetail:
		return pp.Retail
	case CustomerTypeWholesale:
		return pp.Wholesale
	case CustomerTypeOpenMarket:
		return pp.OpenMarket
	default:
		return pp.Retail
	}
}
