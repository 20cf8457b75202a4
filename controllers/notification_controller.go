package controllers

import (
	"net/http"

	"github.com/CUknot/studymatch_backend/middleware"
	"github.com/CUknot/studymatch_backend/models"
	"github.com/CUknot/studymatch_backend/services"
	"github.com/gin-gonic/gin"
)

type SendNotificationInput struct {
	ReceiverID uint `json:"receiverId" binding:"required" example:"2"`
	RoomID     uint `json:"roomId" binding:"required" example:"5"`
}

type JoinRequestInput struct {
	RoomID uint `json:"roomId" binding:"required" example:"5"`
}

type AcceptResponse struct {
	Msg  string           `json:"msg" example:"Request accepted"`
	Room *models.RoomView `json:"room"`
}

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// SendNotification godoc
// @Summary Send a join request to a user
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body SendNotificationInput true "Receiver and room"
// @Success 201 {object} models.NotificationView
// @Failure 400 {object} ErrorResponse "Request already sent"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /api/notifications [post]
func (nc *NotificationController) SendNotification(c *gin.Context) {
	var input SendNotificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Receiver and room are required")
		return
	}

	n, err := nc.notifications.Send(c.Request.Context(), middleware.UserID(c), input.ReceiverID, input.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// SendJoinRequest godoc
// @Summary Ask a room's host to let the caller in
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body JoinRequestInput true "Room"
// @Success 201 {object} models.NotificationView
// @Failure 400 {object} ErrorResponse "Request already sent"
// @Failure 404 {object} ErrorResponse "Room not found"
// @Router /api/notifications/send [post]
func (nc *NotificationController) SendJoinRequest(c *gin.Context) {
	var input JoinRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Room is required")
		return
	}

	n, err := nc.notifications.RequestJoin(c.Request.Context(), middleware.UserID(c), input.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// GetNotifications godoc
// @Summary Pending requests addressed to the caller
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.NotificationView
// @Router /api/notifications [get]
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	list, err := nc.notifications.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// MarkAsRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse "Notification not found"
// @Router /api/notifications/{id}/read [patch]
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		badRequest(c, "Invalid notification id")
		return
	}
	if _, err := nc.notifications.MarkRead(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Msg: "Notification marked as read"})
}

// AcceptJoinRequest godoc
// @Summary Accept a join request
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} AcceptResponse
// @Failure 400 {object} ErrorResponse "Request already handled"
// @Failure 403 {object} ErrorResponse "Not authorized"
// @Failure 404 {object} ErrorResponse "Notification not found"
// @Router /api/notifications/{id}/accept [post]
func (nc *NotificationController) AcceptJoinRequest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		badRequest(c, "Invalid notification id")
		return
	}
	room, err := nc.notifications.Accept(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AcceptResponse{Msg: "Request accepted", Room: room})
}

// RejectJoinRequest godoc
// @Summary Reject a join request
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Request already handled"
// @Failure 403 {object} ErrorResponse "Not authorized"
// @Failure 404 {object} ErrorResponse "Notification not found"
// @Router /api/notifications/{id}/reject [post]
func (nc *NotificationController) RejectJoinRequest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		badRequest(c, "Invalid notification id")
		return
	}
	if err := nc.notifications.Reject(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Msg: "Request rejected"})
}
