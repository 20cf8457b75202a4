package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CUknot/studymatch_backend/registry"
	"github.com/CUknot/studymatch_backend/repository"
	"github.com/CUknot/studymatch_backend/services"
	"github.com/CUknot/studymatch_backend/websocket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	reg := registry.New()
	hub := websocket.NewHub(reg)

	auth := services.NewAuthService(store.Users, "test-secret", time.Hour)
	users := services.NewUserService(store.Users, store.History, hub)
	rooms := services.NewRoomService(store, reg, hub, "https://meet.example.org/")
	notifications := services.NewNotificationService(store, rooms, hub)
	tasks := services.NewTaskService(store.Tasks)

	return &testAPI{router: NewRouter(Router{
		Auth:         NewAuthController(auth),
		User:         NewUserController(users),
		Room:         NewRoomController(rooms),
		Notification: NewNotificationController(notifications),
		Todo:         NewTodoController(tasks),
		Tokens:       auth,
		AllowOrigins: []string{"*"},
	})}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) signup(t *testing.T, name, email string) (string, uint) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": name, "email": email, "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func msgOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	decode(t, w, &body)
	return body.Msg
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "StudyMatch API is running...", w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/api/user/me", "/api/room/active", "/api/todo/display", "/api/notifications"} {
		w := api.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := api.do(t, http.MethodGet, "/api/user/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
