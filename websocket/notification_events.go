package websocket

import (
	"context"
	"errors"

	"github.com/CUknot/studymatch_backend/services"
	"github.com/sirupsen/logrus"
)

type notificationPayload struct {
	NotificationID flexID `json:"notificationId"`
}

// markNotificationRead flags the notification as read; the service tells
// the sender.
func (h *Handler) markNotificationRead(ctx context.Context, c *Client, notificationID uint) {
	if _, err := h.notifications.MarkRead(ctx, c.userID, notificationID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":         c.userID,
			"notification_id": notificationID,
		}).Debug("Mark notification read failed")
		if errors.Is(err, services.ErrNotificationNotFound) {
			h.sendError(c, err.Error())
			return
		}
		h.sendError(c, "Server error")
	}
}
