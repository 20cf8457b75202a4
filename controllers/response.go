package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/CUknot/studymatch_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Msg string `json:"msg" example:"Room not found"`
}

// MessageResponse is the body of requests that only acknowledge.
type MessageResponse struct {
	Msg string `json:"msg" example:"Room deleted"`
}

var errorStatus = map[error]int{
	services.ErrUserExists:            http.StatusBadRequest,
	services.ErrInvalidCredentials:    http.StatusBadRequest,
	services.ErrNameRequired:          http.StatusBadRequest,
	services.ErrRoomInactive:          http.StatusBadRequest,
	services.ErrRoomFieldsRequired:    http.StatusBadRequest,
	services.ErrInvalidRoomType:       http.StatusBadRequest,
	services.ErrSubjectQueryRequired:  http.StatusBadRequest,
	services.ErrAlreadyInRoom:         http.StatusBadRequest,
	services.ErrRequestAlreadySent:    http.StatusBadRequest,
	services.ErrRequestAlreadyHandled: http.StatusBadRequest,
	services.ErrTitleRequired:         http.StatusBadRequest,

	services.ErrOnlyHostCanDelete: http.StatusForbidden,
	services.ErrNotAuthorized:     http.StatusForbidden,

	services.ErrUserNotFound:         http.StatusNotFound,
	services.ErrRoomNotFound:         http.StatusNotFound,
	services.ErrNotificationNotFound: http.StatusNotFound,
	services.ErrTaskNotFound:         http.StatusNotFound,
}

// respondError maps service errors to a status and {msg}. Unknown errors
// are logged and reported as a generic server error.
func respondError(c *gin.Context, err error) {
	for sentinel, status := range errorStatus {
		if errors.Is(err, sentinel) {
			c.JSON(status, ErrorResponse{Msg: sentinel.Error()})
			return
		}
	}
	logrus.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Msg: "Server error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Msg: msg})
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
