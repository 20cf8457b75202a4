package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/CUknot/studymatch_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRoom(t *testing.T, api *testAPI, token, subject string) models.RoomView {
	t.Helper()
	w := api.do(t, http.MethodPost, "/api/room/create", token, gin.H{"type": "group", "subject": subject, "roomName": subject + " room"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var room models.RoomView
	decode(t, w, &room)
	return room
}

func TestRoomLifecycle(t *testing.T) {
	api := newTestAPI(t)
	hostToken, hostID := api.signup(t, "Host", "host@example.com")
	guestToken, guestID := api.signup(t, "Guest", "guest@example.com")

	room := createRoom(t, api, hostToken, "Physics")
	assert.Equal(t, hostID, room.Host.ID)
	assert.NotEmpty(t, room.MeetLink)

	w := api.do(t, http.MethodGet, "/api/room/active", guestToken, nil)
	var active []models.RoomView
	decode(t, w, &active)
	require.Len(t, active, 1)

	w = api.do(t, http.MethodPut, fmt.Sprintf("/api/room/join/%d", room.ID), guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var joined models.RoomView
	decode(t, w, &joined)
	require.Len(t, joined.Participants, 2)

	w = api.do(t, http.MethodGet, "/api/room/my", guestToken, nil)
	var mine MyRoomsResponse
	decode(t, w, &mine)
	assert.True(t, mine.Success)
	require.Len(t, mine.Rooms, 1)

	w = api.do(t, http.MethodDelete, fmt.Sprintf("/api/room/delete/%d", room.ID), guestToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Only host can delete room", msgOf(t, w))

	w = api.do(t, http.MethodPut, fmt.Sprintf("/api/room/leave/%d", room.ID), hostToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var left models.RoomView
	decode(t, w, &left)
	assert.Equal(t, guestID, left.Host.ID)

	w = api.do(t, http.MethodDelete, fmt.Sprintf("/api/room/delete/%d", room.ID), guestToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Room deleted", msgOf(t, w))

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/room/%d", room.ID), guestToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Room not found", msgOf(t, w))
}

func TestLeaveLastParticipant(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.signup(t, "Solo", "solo@example.com")
	room := createRoom(t, api, token, "Poetry")

	w := api.do(t, http.MethodPut, fmt.Sprintf("/api/room/leave/%d", room.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Room closed (no participants)", msgOf(t, w))

	w = api.do(t, http.MethodPut, fmt.Sprintf("/api/room/join/%d", room.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Room is no longer active", msgOf(t, w))

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/room/%d", room.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoomValidation(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.signup(t, "Host", "host@example.com")

	w := api.do(t, http.MethodPost, "/api/room/create", token, gin.H{"type": "group"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Type, subject and room name are required", msgOf(t, w))

	w = api.do(t, http.MethodGet, "/api/room/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Subject query is required", msgOf(t, w))

	w = api.do(t, http.MethodPut, "/api/room/join/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPut, "/api/room/join/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuggestedAndSearch(t *testing.T) {
	api := newTestAPI(t)
	u1Token, _ := api.signup(t, "U1", "u1@example.com")
	u2Token, _ := api.signup(t, "U2", "u2@example.com")

	w := api.do(t, http.MethodPut, "/api/user/profile", u1Token, gin.H{"subjects": []string{"algebra"}})
	require.Equal(t, http.StatusOK, w.Code)

	match := createRoom(t, api, u2Token, "Algebra")
	createRoom(t, api, u2Token, "Algebra II")
	createRoom(t, api, u1Token, "algebra")

	w = api.do(t, http.MethodGet, "/api/room/suggested", u1Token, nil)
	var suggested []models.RoomView
	decode(t, w, &suggested)
	require.Len(t, suggested, 1)
	assert.Equal(t, match.ID, suggested[0].ID)

	w = api.do(t, http.MethodGet, "/api/room/search?subject=ALGEBRA", u1Token, nil)
	var found []models.RoomView
	decode(t, w, &found)
	assert.Len(t, found, 3)
}
