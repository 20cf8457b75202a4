package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/CUknot/studymatch_backend/models"
	"github.com/CUknot/studymatch_backend/registry"
	"github.com/CUknot/studymatch_backend/repository"
	"github.com/CUknot/studymatch_backend/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockHub records what the services publish.
type mockHub struct {
	mock.Mock
}

func (m *mockHub) PublishRooms() {
	m.Called()
}

func (m *mockHub) SendToUser(userID uint, event string, payload interface{}) {
	m.Called(userID, event, payload)
}

func (m *mockHub) CloseRoom(roomID uint, message string) {
	m.Called(roomID, message)
}

func (m *mockHub) UpdateSubjects(userID uint, subjects []string) {
	m.Called(userID, subjects)
}

type fixture struct {
	ctx           context.Context
	store         *repository.Store
	registry      *registry.Registry
	hub           *mockHub
	auth          *services.AuthService
	users         *services.UserService
	rooms         *services.RoomService
	notifications *services.NotificationService
	tasks         *services.TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hub := new(mockHub)
	hub.On("PublishRooms").Return().Maybe()
	hub.On("SendToUser", mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	hub.On("CloseRoom", mock.Anything, mock.Anything).Return().Maybe()
	hub.On("UpdateSubjects", mock.Anything, mock.Anything).Return().Maybe()

	store := repository.NewMemoryStore()
	reg := registry.New()
	rooms := services.NewRoomService(store, reg, hub, "https://meet.example.org/")

	return &fixture{
		ctx:           context.Background(),
		store:         store,
		registry:      reg,
		hub:           hub,
		auth:          services.NewAuthService(store.Users, "test-secret", time.Hour),
		users:         services.NewUserService(store.Users, store.History, hub),
		rooms:         rooms,
		notifications: services.NewNotificationService(store, rooms, hub),
		tasks:         services.NewTaskService(store.Tasks),
	}
}

func (f *fixture) signup(t *testing.T, name, email string, subjects ...string) *models.User {
	t.Helper()
	_, user, err := f.auth.Signup(f.ctx, name, email, "password123")
	require.NoError(t, err)
	if len(subjects) > 0 {
		user, err = f.users.UpdateProfile(f.ctx, user.ID, services.ProfileUpdate{Subjects: &subjects})
		require.NoError(t, err)
	}
	return user
}

func (f *fixture) createRoom(t *testing.T, hostID uint, subject string) *models.RoomView {
	t.Helper()
	room, err := f.rooms.Create(f.ctx, hostID, services.CreateRoomInput{
		Type:     models.RoomTypeGroup,
		Subject:  subject,
		RoomName: subject + " session",
	})
	require.NoError(t, err)
	return room
}

func participantIDs(view *models.RoomView) []uint {
	ids := make([]uint, 0, len(view.Participants))
	for _, p := range view.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}
