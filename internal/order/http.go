package order

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
	svc *Service
	v   *validatorv10.Validate
}

func NewHandler(svc *Service, v *validatorv10.Validate) *Handler {
	return &Handler{svc: svc, v: v}
}

// RegisterRoutes 挂载订单路由。查询对所有已登录角色开放，
// 创建/审批/发运分别按动作角色门控（服务层还会再校验一次）。
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/orders", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/stats", h.Stats).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/orders", server.RequireRoles(rbac.OrderCreateRoles...)(h.Create)).Methods(http.MethodPost)
	r.HandleFunc("/api/orders/{id:[0-9]+}/approve", server.RequireRoles(rbac.OrderApproveRoles...)(h.Approve)).Methods(http.MethodPost)
	r.HandleFunc("/api/orders/{id:[0-9]+}/reject", server.RequireRoles(rbac.OrderApproveRoles...)(h.Reject)).Methods(http.MethodPost)
	r.HandleFunc("/api/orders/{id:[0-9]+}/dispatch", server.RequireRoles(rbac.OrderDispatchRoles...)(h.Dispatch)).Methods(http.MethodPost)
	r.HandleFunc("/api/orders/{id:[0-9]+}/deliver", server.RequireRoles(rbac.OrderDispatchRoles...)(h.Deliver)).Methods(http.MethodPost)
}

type orderLineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	CustomerID      int64              `json:"customer_id" validate:"required,gt=0"`
	ShipToAddressID int64              `json:"ship_to_address_id"`
	Items           []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	Notes           string             `json:"notes"`
}

type approveRequest struct {
	Comment string `json:"comment"`
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type dispatchRequest struct {
	VehicleID      int64  `json:"vehicle_id" validate:"required,gt=0"`
	TrackingNumber string `json:"tracking_number" validate:"required"`
}

type deliverRequest struct {
	PODImage      string `json:"pod_image" validate:"required"`
	DeliveryNotes string `json:"delivery_notes"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := server.Pagination(r)
	filter := ListOrdersFilter{
		Status: Status(r.URL.Query().Get("status")),
		Offset: offset,
		Limit:  limit,
	}
	orders, total, err := h.svc.ListOrders(r.Context(), filter)
	if err != nil {
		server.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.StatusCounts(r.Context())
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{"status_counts": counts})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	o, items, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"order": o,
		"items": items,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	in := CreateOrderInput{
		CustomerID:      req.CustomerID,
		ShipToAddressID: req.ShipToAddressID,
		Notes:           req.Notes,
	}
	for _, line := range req.Items {
		in.Items = append(in.Items, LineInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	o, err := h.svc.CreateOrder(r.Context(), actorFrom(r), in)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}
	h.applyTransition(w, r, func(id int64) (*Order, error) {
		return h.svc.Approve(r.Context(), actorFrom(r), id, req.Comment)
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}
	h.applyTransition(w, r, func(id int64) (*Order, error) {
		return h.svc.Reject(r.Context(), actorFrom(r), id, req.Reason)
	})
}

func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}
	h.applyTransition(w, r, func(id int64) (*Order, error) {
		return h.svc.Dispatch(r.Context(), actorFrom(r), id, req.TrackingNumber, req.VehicleID)
	})
}

func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	var req deliverRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}
	h.applyTransition(w, r, func(id int64) (*Order, error) {
		return h.svc.Deliver(r.Context(), actorFrom(r), id, req.PODImage, req.DeliveryNotes)
	})
}

func (h *Handler) applyTransition(w http.ResponseWriter, r *http.Request, fn func(id int64) (*Order, error)) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	o, err := fn(id)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, o)
}

// actorFrom 从鉴权上下文构造操作者。
// 署名用显示名，approved_by / dispatched_by 快照里落的是 "Mary Manager"
// 这样的全名而不是登录名。
func actorFrom(r *http.Request) Actor {
	ai, _ := server.AuthFromContext(r.Context())
	uid, _ := strconv.ParseInt(ai.UserID, 10, 64)
	return Actor{UserID: uid, Name: ai.DisplayName(), Role: ai.Role}
}

// writeOrderError 统一错误到状态码的映射：
// 记录不存在 -> 404、权限不足 -> 403、非法流转 -> 409、其余 -> 400。
func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		server.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrPermissionDenied):
		server.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		server.WriteError(w, http.StatusConflict, err.Error())
	default:
		server.WriteError(w, http.StatusBadRequest, err.Error())
	}
}
