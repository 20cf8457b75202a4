package websocket

import (
	"context"
	"net/http"
	"strings"

	"github.com/CUknot/studymatch_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	ValidateToken(token string) (uint, error)
}

// UserLookup loads the connecting user for its subjects.
type UserLookup interface {
	Get(ctx context.Context, userID uint) (*models.User, error)
}

// RoomReconciler re-reads one room from the store and repairs the registry.
type RoomReconciler interface {
	Reconcile(ctx context.Context, roomID uint) error
}

// NotificationMarker flags a received notification as read.
type NotificationMarker interface {
	MarkRead(ctx context.Context, userID, notificationID uint) (*models.Notification, error)
}

// Handler upgrades authenticated requests and dispatches inbound events.
type Handler struct {
	hub           *Hub
	auth          TokenValidator
	users         UserLookup
	rooms         RoomReconciler
	notifications NotificationMarker
	upgrader      websocket.Upgrader
}

// NewHandler builds the /ws handler. An origin list containing "*" accepts
// any origin.
func NewHandler(hub *Hub, auth TokenValidator, users UserLookup, rooms RoomReconciler, notifications NotificationMarker, origins []string) *Handler {
	return &Handler{
		hub:           hub,
		auth:          auth,
		users:         users,
		rooms:         rooms,
		notifications: notifications,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(origins),
		},
	}
}

func checkOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// HandleConnection godoc
// @Summary Open the real-time channel
// @Description Upgrades to a websocket. The token comes from the token query parameter or the Authorization header.
// @Tags realtime
// @Param token query string false "JWT"
// @Success 101
// @Failure 401 {object} map[string]string
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "No token, authorization denied"})
		return
	}

	userID, err := h.auth.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Websocket upgrade failed")
		return
	}

	client := newClient(h.hub, h, conn, userID, append([]string{}, user.Subjects...))
	h.hub.addClient(client)

	go client.readPump()
	go client.writePump()
}
