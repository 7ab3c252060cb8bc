package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mistamayor/berrymart-v1/internal/common/auth"
	"github.com/mistamayor/berrymart-v1/internal/common/config"
	"github.com/mistamayor/berrymart-v1/internal/user"
)

var testAuthCfg = config.AuthConfig{
	Enabled:     true,
	JWTSecret:   "session-test-secret",
	Issuer:      "berrymart",
	Audience:    "berrymart-api",
	TokenTTLMin: 60,
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}))

	svc := user.NewService(user.NewRepo(db))
	_, err = svc.Create(context.Background(), user.CreateUserInput{
		Username:  "mary_manager",
		Password:  "manager123",
		Role:      "Manager",
		FirstName: "Mary",
		LastName:  "Manager",
	})
	require.NoError(t, err)

	return NewHandler(svc, testAuthCfg, validatorv10.New())
}

func postLogin(t *testing.T, h *Handler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesToken(t *testing.T) {
	h := newTestHandler(t)
	w := postLogin(t, h, map[string]string{"username": "mary_manager", "password": "manager123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "mary_manager", resp.Username)
	assert.Equal(t, "Mary Manager", resp.FullName)
	assert.Equal(t, "Manager", resp.Role)
	require.NotEmpty(t, resp.Token)

	claims, err := auth.ParseAccessToken(testAuthCfg, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "mary_manager", claims.Username)
	assert.Equal(t, "Mary Manager", claims.FullName, "快照署名用的全名走 token")
	assert.Equal(t, "Manager", claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newTestHandler(t)

	w := postLogin(t, h, map[string]string{"username": "mary_manager", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postLogin(t, h, map[string]string{"username": "nobody", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 缺字段走参数校验
	w = postLogin(t, h, map[string]string{"username": "mary_manager"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
