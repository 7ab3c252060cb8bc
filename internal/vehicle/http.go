package vehicle

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

// RegisterRoutes 车辆路由；写操作要求 Admin/Management/Manager。
func (h *Handler) RegisterRoutes(r *mux.Router) {
	write := server.RequireRoles(rbac.VehicleWriteRoles...)
	r.HandleFunc("/api/vehicles", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles", write(h.Create)).Methods(http.MethodPost)
	r.HandleFunc("/api/vehicles/{id:[0-9]+}/status", write(h.UpdateStatus)).Methods(http.MethodPost)
	r.HandleFunc("/api/vehicles/{id:[0-9]+}/assign", write(h.AssignAgent)).Methods(http.MethodPost)
}

type createVehicleRequest struct {
	Type         string `json:"type" validate:"required,oneof=van truck"`
	Name         string `json:"name" validate:"required"`
	LicensePlate string `json:"license_plate" validate:"required"`
	Capacity     int    `json:"capacity" validate:"gte=0"`
	Status       string `json:"status" validate:"omitempty,oneof=active maintenance retired"`
	Notes        string `json:"notes"`
}

type updateVehicleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active maintenance retired"`
}

type assignAgentRequest struct {
	AgentID int64 `json:"agent_id" validate:"required,gt=0"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := server.Pagination(r)
	vehicles, total, err := h.svc.List(r.Context(), r.URL.Query().Get("status"), offset, limit)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"vehicles": vehicles,
		"total":    total,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	v, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createVehicleRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	v, err := h.svc.Create(r.Context(), CreateVehicleInput{
		Type:         req.Type,
		Name:         req.Name,
		LicensePlate: req.LicensePlate,
		Capacity:     req.Capacity,
		Status:       req.Status,
		Notes:        req.Notes,
	})
	if err != nil {
		server.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var req updateVehicleStatusRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	v, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		server.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) AssignAgent(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var req assignAgentRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	v, err := h.svc.AssignAgent(r.Context(), id, req.AgentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "vehicle or agent not found")
			return
		}
		server.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, v)
}
