package product

import (
	"errors"
	"net/http"
	"strconv"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/mistamayor/berrymart-v1/internal/common/server"
	"github.com/mistamayor/berrymart-v1/internal/rbac"
	"gorm.io/gorm"
)

type Handler struct {
	repo *Repo
	v    *validatorv10.Validate
}

func NewHandler(repo *Repo, v *validatorv10.Validate) *Handler {
	return &Handler{repo: repo, v: v}
}

// RegisterRoutes 挂载商品目录路由；写操作要求 Admin/Manager/Inventory。
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/products", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/products", server.RequireRoles(rbac.ProductWriteRoles...)(h.Create)).Methods(http.MethodPost)
	r.HandleFunc("/api/products/{id:[0-9]+}", server.RequireRoles(rbac.ProductWriteRoles...)(h.Update)).Methods(http.MethodPut)
	r.HandleFunc("/api/products/{id:[0-9]+}/stock", server.RequireRoles(rbac.ProductWriteRoles...)(h.AdjustStock)).Methods(http.MethodPost)
}

type productRequest struct {
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description"`
	SKU             string `json:"sku" validate:"required"`
	BasePrice       int64  `json:"base_price" validate:"gte=0"`
	RetailPrice     int64  `json:"retail_price" validate:"gte=0"`
	WholesalePrice  int64  `json:"wholesale_price" validate:"gte=0"`
	OpenMarketPrice int64  `json:"open_market_price" validate:"gte=0"`
	StockQuantity   int    `json:"stock_quantity" validate:"gte=0"`
}

type adjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := server.Pagination(r)
	products, total, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    total,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	p, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "product not found")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	p := &Product{
		Name:            req.Name,
		Description:     req.Description,
		SKU:             req.SKU,
		BasePrice:       req.BasePrice,
		RetailPrice:     req.RetailPrice,
		WholesalePrice:  req.WholesalePrice,
		OpenMarketPrice: req.OpenMarketPrice,
		StockQuantity:   req.StockQuantity,
	}
	if err := h.repo.Create(r.Context(), p); err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var req productRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	p, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "product not found")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// 改价只影响后续订单；已生成的订单明细保留下单时的快照价
	p.Name = req.Name
	p.Description = req.Description
	p.SKU = req.SKU
	p.BasePrice = req.BasePrice
	p.RetailPrice = req.RetailPrice
	p.WholesalePrice = req.WholesalePrice
	p.OpenMarketPrice = req.OpenMarketPrice
	p.StockQuantity = req.StockQuantity

	if err := h.repo.Update(r.Context(), p); err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var req adjustStockRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	p, err := h.repo.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "product not found")
			return
		}
		server.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, p)
}
