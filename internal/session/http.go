package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/mistamayor/berrymart-v1/internal/common/auth"
	"github.com/mistamayor/berrymart-v1/internal/common/config"
	"github.com/mistamayor/berrymart-v1/internal/common/server"
	"github.com/mistamayor/berrymart-v1/internal/user"
)

// Handler 登录与会话查询。登录接口挂在免鉴权路径上，
// 用令牌桶限流挡口令爆破。
type Handler struct {
	users   *user.Service
	authCfg config.AuthConfig
	v       *validatorv10.Validate
	bucket  *server.TokenBucket
}

func NewHandler(users *user.Service, authCfg config.AuthConfig, v *validatorv10.Validate) *Handler {
	return &Handler{
		users:   users,
		authCfg: authCfg,
		v:       v,
		bucket:  server.NewTokenBucket(20, 10), // 峰值 20 次，每秒回填 10
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/login", server.RateLimit(h.bucket, h.Login)).Methods(http.MethodPost)
	r.HandleFunc("/api/me", h.Me).Methods(http.MethodGet)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := server.DecodeAndValidate(w, r, &req, h.v); err != nil {
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			server.WriteError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ttl := time.Duration(h.authCfg.TokenTTLMin) * time.Minute
	token, expiresAt, err := auth.GenerateAccessToken(h.authCfg, auth.Identity{
		Subject:  fmt.Sprintf("%d", u.ID),
		Username: u.Username,
		FullName: u.FullName(),
		Role:     u.Role,
	}, ttl)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	server.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    u.ID,
		Username:  u.Username,
		FullName:  u.FullName(),
		Role:      u.Role,
	})
}

// Me 返回当前令牌对应的身份信息。
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ai, ok := server.AuthFromContext(r.Context())
	if !ok {
		server.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":  ai.UserID,
		"username": ai.Username,
		"role":     ai.Role,
	})
}
