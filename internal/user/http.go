package user

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

// RegisterRoutes 用户管理路由，仅 Admin（Management 天然放行）。
func (h *Handler) RegisterRoutes(r *mux.Router) {
	admin := server.RequireRoles(rbac.UserManageRoles...)
	r.HandleFunc("/api/users", admin(h.List)).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{id:[0-9]+}", admin(h.Get)).Methods(http.MethodGet)
	r.HandleFunc("/api/users", admin(h.Create)).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{id:[0-9]+}", admin(h.Update)).Methods(http.MethodPut)
	r.HandleFunc("/api/users/{id:[0-9]+}", admin(h.Delete)).Methods(http.MethodDelete)
}

type createUserRequest struct {
	Username   string `json:"username" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role" validate:"required"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	ManagerID  *int64 `json:"manager_id"`
}

type updateUserRequest struct {
	Email      string `json:"email" validate:"omitempty,email"`
	Password   string `json:"password" validate:"omitempty,min=6"`
	Role       string `json:"role"`
	IsActive   *bool  `json:"is_active"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	ManagerID  *int64 `json:"manager_id"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := server.Pagination(r)
	users, total, err := h.svc.List(r.Context(), offset, limit)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	u, err := h.svc.Create(r.Context(), CreateUserInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
		Phone:      req.Phone,
		ManagerID:  req.ManagerID,
	})
	if err != nil {
		server.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var req updateUserRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	u, err := h.svc.Update(r.Context(), id, UpdateUserInput{
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		IsActive:   req.IsActive,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
		Phone:      req.Phone,
		ManagerID:  req.ManagerID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		server.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
