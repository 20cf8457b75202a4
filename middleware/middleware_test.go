package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

type fakeValidator map[string]uint

func (f fakeValidator) ValidateToken(token string) (uint, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return 0, errors.New("bad token")
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c)})
	})
	r.GET("/", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	r := newRouter(JWTAuth(fakeValidator{"valid": 42}))

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, `{"msg":"No token, authorization denied"}`},
		{"wrong scheme", "Basic valid", http.StatusUnauthorized, `{"msg":"No token, authorization denied"}`},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, `{"msg":"Token is not valid"}`},
		{"valid token", "Bearer valid", http.StatusOK, `{"id":42}`},
		{"lowercase scheme", "bearer valid", http.StatusOK, `{"id":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestRateLimitFailsOpenWithoutRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := newRouter(RateLimit(client, "auth", 1, time.Minute))
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitRejectsBadConfig(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	assert.Panics(t, func() { RateLimit(nil, "auth", 1, time.Minute) })
	assert.Panics(t, func() { RateLimit(client, "auth", 0, time.Minute) })
	assert.Panics(t, func() { RateLimit(client, "auth", 1, 0) })
}
