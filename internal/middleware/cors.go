package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS 允许浏览器前端跨域访问API
var CORS = cors.Handler(cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	},
	AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	ExposedHeaders: []string{"X-Request-Id"},
	MaxAge:         300,
})
