package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSetupCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		origin         string
		expectedHeader string
	}{
		{"open by default", nil, "https://any.example.com", "*"},
		{"listed origin", []string{"https://album.example.com"}, "https://album.example.com", "https://album.example.com"},
		{"unlisted origin", []string{"https://album.example.com"}, "https://evil.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.Use(SetupCORS(tt.allowedOrigins))
			router.GET("/ping", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedHeader, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
