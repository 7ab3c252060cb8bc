package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// WriteJSON 统一的 JSON 响应输出。
func WriteJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// WriteError 统一的错误响应结构：{"error": "..."}。
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, map[string]string{"error": message})
}

// Pagination 解析 page / page_size 查询参数为 offset / limit。
func Pagination(r *http.Request) (offset, limit int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}
	return (page - 1) * size, size
}
