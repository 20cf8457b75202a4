package controllers

import (
	"net/http"

	"github.com/CUknot/studymatch_backend/middleware"
	"github.com/CUknot/studymatch_backend/models"
	"github.com/CUknot/studymatch_backend/services"
	"github.com/gin-gonic/gin"
)

type CreateRoomInput struct {
	Type     string `json:"type" example:"group"`
	Subject  string `json:"subject" example:"Algebra"`
	RoomName string `json:"roomName" example:"Exam prep"`
}

type MyRoomsResponse struct {
	Success bool              `json:"success"`
	Rooms   []models.RoomView `json:"rooms"`
}

type RoomController struct {
	rooms *services.RoomService
}

func NewRoomController(rooms *services.RoomService) *RoomController {
	return &RoomController{rooms: rooms}
}

// CreateRoom godoc
// @Summary Create a study room
// @Description The caller becomes host and sole participant; a meeting link is generated
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body CreateRoomInput true "Room details"
// @Success 201 {object} models.RoomView
// @Failure 400 {object} ErrorResponse "Type, subject and room name are required"
// @Failure 500 {object} ErrorResponse "Server error"
// @Router /api/room/create [post]
func (rc *RoomController) CreateRoom(c *gin.Context) {
	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, services.ErrRoomFieldsRequired)
		return
	}

	room, err := rc.rooms.Create(c.Request.Context(), middleware.UserID(c), services.CreateRoomInput{
		Type:     input.Type,
		Subject:  input.Subject,
		RoomName: input.RoomName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// GetActiveRooms godoc
// @Summary Active rooms of other users
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.RoomView
// @Router /api/room/active [get]
func (rc *RoomController) GetActiveRooms(c *gin.Context) {
	rooms, err := rc.rooms.ListActive(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetMyRooms godoc
// @Summary Active rooms the caller hosts or joined
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MyRoomsResponse
// @Router /api/room/my [get]
func (rc *RoomController) GetMyRooms(c *gin.Context) {
	rooms, err := rc.rooms.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MyRoomsResponse{Success: true, Rooms: rooms})
}

// GetSuggestedRooms godoc
// @Summary Rooms matching the caller's subjects
// @Description Subject must equal one of the caller's subjects, ignoring case
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.RoomView
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /api/room/suggested [get]
func (rc *RoomController) GetSuggestedRooms(c *gin.Context) {
	rooms, err := rc.rooms.Suggested(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// SearchRooms godoc
// @Summary Search active rooms by subject
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param subject query string true "Substring of the subject, case-insensitive"
// @Success 200 {array} models.RoomView
// @Failure 400 {object} ErrorResponse "Subject query is required"
// @Router /api/room/search [get]
func (rc *RoomController) SearchRooms(c *gin.Context) {
	rooms, err := rc.rooms.Search(c.Request.Context(), c.Query("subject"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoom godoc
// @Summary Get a room by id
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} models.RoomView
// @Failure 404 {object} ErrorResponse "Room not found"
// @Router /api/room/{id} [get]
func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		badRequest(c, "Invalid room id")
		return
	}
	room, err := rc.rooms.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// JoinRoom godoc
// @Summary Join a room
// @Description Joining a room twice returns it unchanged
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} models.RoomView
// @Failure 400 {object} ErrorResponse "Room is no longer active"
// @Failure 404 {object} ErrorResponse "Room not found"
// @Router /api/room/join/{id} [put]
func (rc *RoomController) JoinRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		badRequest(c, "Invalid room id")
		return
	}
	room, err := rc.rooms.Join(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// LeaveRoom godoc
// @Summary Leave a room
// @Description The last participant leaving closes the room; a leaving host hands over to the next participant
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} models.RoomView
// @Failure 404 {object} ErrorResponse "Room not found"
// @Router /api/room/leave/{id} [put]
func (rc *RoomController) LeaveRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		badRequest(c, "Invalid room id")
		return
	}
	room, closed, err := rc.rooms.Leave(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if closed {
		c.JSON(http.StatusOK, MessageResponse{Msg: "Room closed (no participants)"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom godoc
// @Summary Delete a room
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse "Only host can delete room"
// @Failure 404 {object} ErrorResponse "Room not found"
// @Router /api/room/delete/{id} [delete]
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		badRequest(c, "Invalid room id")
		return
	}
	if err := rc.rooms.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Msg: "Room deleted"})
}
