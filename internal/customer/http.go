package customer

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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

// RegisterRoutes 挂载客户档案路由；写操作要求 Admin/Management/Manager。
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/customers", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/customers/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/customers", server.RequireRoles(rbac.CustomerWriteRoles...)(h.Create)).Methods(http.MethodPost)
	r.HandleFunc("/api/customers/{id:[0-9]+}", server.RequireRoles(rbac.CustomerWriteRoles...)(h.Update)).Methods(http.MethodPut)
}

type addressRequest struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"is_default"`
}

type createCustomerRequest struct {
	Name      string           `json:"name" validate:"required"`
	Email     string           `json:"email" validate:"omitempty,email"`
	Phone     string           `json:"phone"`
	Type      string           `json:"type" validate:"required,oneof=retail wholesale open_market"`
	Addresses []addressRequest `json:"addresses" validate:"required,min=1,dive"`
}

type updateCustomerRequest struct {
	createCustomerRequest
	Changes string `json:"changes" validate:"required"` // 审计：本次修改说明
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := server.Pagination(r)
	customers, total, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"customers": customers,
		"total":     total,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	c, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "customer not found")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	c := &Customer{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Type:      req.Type,
		Addresses: toAddresses(req.Addresses),
	}
	ensureSingleDefault(c.Addresses)

	if err := h.repo.Create(r.Context(), c); err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var req updateCustomerRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	c, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "customer not found")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ai, _ := server.AuthFromContext(r.Context())
	now := time.Now()

	c.Name = req.Name
	c.Email = req.Email
	c.Phone = req.Phone
	c.Type = req.Type
	c.Addresses = toAddresses(req.Addresses)
	for i := range c.Addresses {
		c.Addresses[i].CustomerID = c.ID
	}
	ensureSingleDefault(c.Addresses)
	c.LastModifiedAt = &now
	c.LastModifiedBy = ai.DisplayName()
	c.LastModifiedChanges = req.Changes

	if err := h.repo.Update(r.Context(), c); err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, c)
}

func toAddresses(in []addressRequest) []Address {
	out := make([]Address, 0, len(in))
	for _, a := range in {
		out = append(out, Address{
			Address:    a.Address,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			IsDefault:  a.IsDefault,
		})
	}
	return out
}

// ensureSingleDefault 保证恰好一条默认地址：一条都没标记时取第一条，
// 标记多条时只保留第一条标记。
func ensureSingleDefault(addrs []Address) {
	if len(addrs) == 0 {
		return
	}
	seen := false
	for i := range addrs {
		if addrs[i].IsDefault {
			if seen {
				addrs[i].IsDefault = false
			}
			seen = true
		}
	}
	if !seen {
		addrs[0].IsDefault = true
	}
}

