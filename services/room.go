package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CUknot/studymatch_backend/models"
	"github.com/CUknot/studymatch_backend/registry"
	"github.com/CUknot/studymatch_backend/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	closedByHost    = "Host has closed the room"
	closedWhenEmpty = "Room closed (no participants)"
)

type CreateRoomInput struct {
	Type     string
	Subject  string
	RoomName string
}

// RoomService owns the room lifecycle and keeps the registry in step with
// the store. Store write and registry update are separate steps; the
// registry is a cache and is repaired by Reconcile or a restart.
//
// Concurrent join/leave calls on one room race: each reads the participant
// list, edits it and writes it back, so the last write wins.
type RoomService struct {
	rooms       repository.RoomRepository
	users       repository.UserRepository
	history     repository.HistoryRepository
	registry    *registry.Registry
	hub         Broadcaster
	meetBaseURL string
}

func NewRoomService(store *repository.Store, reg *registry.Registry, hub Broadcaster, meetBaseURL string) *RoomService {
	return &RoomService{
		rooms:       store.Rooms,
		users:       store.Users,
		history:     store.History,
		registry:    reg,
		hub:         hub,
		meetBaseURL: meetBaseURL,
	}
}

// LoadRegistry rebuilds the registry from the active rooms in the store.
func (s *RoomService) LoadRegistry(ctx context.Context) error {
	rooms, err := s.rooms.Find(ctx, repository.RoomFilter{Status: models.RoomStatusActive})
	if err != nil {
		return fmt.Errorf("load active rooms: %w", err)
	}
	s.registry.Replace(rooms)
	logrus.WithField("rooms", s.registry.Len()).Info("Room registry loaded")
	return nil
}

func (s *RoomService) Create(ctx context.Context, userID uint, in CreateRoomInput) (*models.RoomView, error) {
	in.Type = strings.TrimSpace(in.Type)
	in.Subject = strings.TrimSpace(in.Subject)
	in.RoomName = strings.TrimSpace(in.RoomName)
	if in.Type == "" || in.Subject == "" || in.RoomName == "" {
		return nil, ErrRoomFieldsRequired
	}
	if !models.ValidRoomType(in.Type) {
		return nil, ErrInvalidRoomType
	}

	room := &models.Room{
		HostID:       userID,
		Participants: []uint{userID},
		Type:         in.Type,
		Subject:      in.Subject,
		RoomName:     in.RoomName,
		Status:       models.RoomStatusActive,
		MeetLink:     s.newMeetLink(),
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	s.recordJoin(ctx, userID, room)
	s.registry.Sync(room)
	s.hub.PublishRooms()

	logrus.WithFields(logrus.Fields{"room_id": room.ID, "user_id": userID}).Info("Room created")
	return s.view(ctx, room, true)
}

// newMeetLink returns an opaque meeting reference for the external
// conferencing service.
func (s *RoomService) newMeetLink() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return s.meetBaseURL + "studymatch-" + id[:12]
}

// ListActive returns active rooms the caller neither hosts nor joined.
func (s *RoomService) ListActive(ctx context.Context, userID uint) ([]models.RoomView, error) {
	rooms, err := s.rooms.Find(ctx, repository.RoomFilter{Status: models.RoomStatusActive, ExcludeMember: userID})
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rooms, false)
}

// ListMine returns active rooms the caller hosts or joined.
func (s *RoomService) ListMine(ctx context.Context, userID uint) ([]models.RoomView, error) {
	rooms, err := s.rooms.Find(ctx, repository.RoomFilter{Status: models.RoomStatusActive, Member: userID})
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rooms, true)
}

// Suggested matches the caller's subjects against room subjects, whole
// string and ignoring case.
func (s *RoomService) Suggested(ctx context.Context, userID uint) ([]models.RoomView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Subjects are normalized on write; see UserService.UpdateProfile.
	if len(user.Subjects) == 0 {
		return []models.RoomView{}, nil
	}

	rooms, err := s.rooms.Find(ctx, repository.RoomFilter{
		Status:        models.RoomStatusActive,
		ExcludeMember: userID,
		SubjectIn:     user.Subjects,
	})
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rooms, false)
}

// Search matches subject as a substring, ignoring case.
func (s *RoomService) Search(ctx context.Context, subject string) ([]models.RoomView, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrSubjectQueryRequired
	}
	rooms, err := s.rooms.Find(ctx, repository.RoomFilter{Status: models.RoomStatusActive, SubjectContains: subject})
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rooms, false)
}

func (s *RoomService) Get(ctx context.Context, roomID uint) (*models.RoomView, error) {
	room, err := s.find(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, room, true)
}

// Join adds userID to the room. Joining twice is a no-op that returns the
// current state.
func (s *RoomService) Join(ctx context.Context, userID, roomID uint) (*models.RoomView, error) {
	room, err := s.find(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.HasParticipant(userID) {
		return s.view(ctx, room, false)
	}
	if !room.IsActive() {
		return nil, ErrRoomInactive
	}

	room.AddParticipant(userID)
	if err := s.rooms.Save(ctx, room); err != nil {
		return nil, err
	}

	s.recordJoin(ctx, userID, room)
	s.registry.Sync(room)
	s.hub.PublishRooms()

	logrus.WithFields(logrus.Fields{"room_id": room.ID, "user_id": userID}).Info("User joined room")
	return s.view(ctx, room, false)
}

// Leave removes userID. The last participant leaving closes the room and
// closed is reported true with a nil view. A departing host hands over to
// the first remaining participant.
func (s *RoomService) Leave(ctx context.Context, userID, roomID uint) (view *models.RoomView, closed bool, err error) {
	room, err := s.find(ctx, roomID)
	if err != nil {
		return nil, false, err
	}
	if !room.RemoveParticipant(userID) {
		view, err = s.view(ctx, room, false)
		return view, false, err
	}
	s.recordLeave(ctx, userID, room.ID)

	if len(room.Participants) == 0 {
		room.Status = models.RoomStatusInactive
		if err := s.rooms.Save(ctx, room); err != nil {
			return nil, false, err
		}
		s.retire(room.ID, closedWhenEmpty)
		logrus.WithField("room_id", room.ID).Info("Room closed after last participant left")
		return nil, true, nil
	}

	if room.HostID == userID {
		room.HostID = room.Participants[0]
		logrus.WithFields(logrus.Fields{"room_id": room.ID, "host_id": room.HostID}).Info("Room host reassigned")
	}
	if err := s.rooms.Save(ctx, room); err != nil {
		return nil, false, err
	}

	s.registry.Sync(room)
	s.hub.PublishRooms()

	view, err = s.view(ctx, room, false)
	return view, false, err
}

// Delete removes the room; only its current host may do so.
func (s *RoomService) Delete(ctx context.Context, userID, roomID uint) error {
	room, err := s.find(ctx, roomID)
	if err != nil {
		return err
	}
	if room.HostID != userID {
		return ErrOnlyHostCanDelete
	}

	if err := s.rooms.Delete(ctx, room.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	if err := s.history.CloseRoom(ctx, room.ID, time.Now()); err != nil {
		logrus.WithError(err).WithField("room_id", room.ID).Warn("Failed to close room history")
	}

	s.retire(room.ID, closedByHost)
	logrus.WithFields(logrus.Fields{"room_id": room.ID, "user_id": userID}).Info("Room deleted")
	return nil
}

// Reconcile re-reads one room from the store and repairs the registry:
// missing or inactive rooms are retired, active ones refreshed.
func (s *RoomService) Reconcile(ctx context.Context, roomID uint) error {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if room == nil || !room.IsActive() {
		s.retire(roomID, closedByHost)
		return nil
	}
	s.registry.Sync(room)
	s.hub.PublishRooms()
	return nil
}

// retire is the single exit of a room from the real-time layer, shared by
// delete, leave-to-empty and reconcile.
func (s *RoomService) retire(roomID uint, message string) {
	evicted := s.registry.Evict(roomID)
	s.hub.CloseRoom(roomID, message)
	if evicted {
		s.hub.PublishRooms()
	}
}

func (s *RoomService) find(ctx context.Context, roomID uint) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *RoomService) recordJoin(ctx context.Context, userID uint, room *models.Room) {
	if err := s.history.RecordJoin(ctx, userID, room.ID, room.Subject, time.Now()); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"room_id": room.ID, "user_id": userID}).Warn("Failed to record room join")
	}
}

func (s *RoomService) recordLeave(ctx context.Context, userID, roomID uint) {
	if err := s.history.RecordLeave(ctx, userID, roomID, time.Now()); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).Warn("Failed to record room leave")
	}
}

func (s *RoomService) view(ctx context.Context, room *models.Room, withEmail bool) (*models.RoomView, error) {
	views, err := s.views(ctx, []models.Room{*room}, withEmail)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views resolves host and participant references. Users that no longer
// exist are reported by id only.
func (s *RoomService) views(ctx context.Context, rooms []models.Room, withEmail bool) ([]models.RoomView, error) {
	seen := make(map[uint]bool)
	var ids []uint
	for _, r := range rooms {
		for _, id := range append([]uint{r.HostID}, r.Participants...) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.UserSummary, len(users))
	for i := range users {
		summary := users[i].Summary()
		if !withEmail {
			summary.Email = ""
		}
		byID[users[i].ID] = summary
	}
	summary := func(id uint) models.UserSummary {
		if u, ok := byID[id]; ok {
			return u
		}
		return models.UserSummary{ID: id}
	}

	out := make([]models.RoomView, 0, len(rooms))
	for _, r := range rooms {
		participants := make([]models.UserSummary, 0, len(r.Participants))
		for _, id := range r.Participants {
			participants = append(participants, summary(id))
		}
		out = append(out, models.RoomView{
			ID:           r.ID,
			Host:         summary(r.HostID),
			Participants: participants,
			Type:         r.Type,
			Subject:      r.Subject,
			RoomName:     r.RoomName,
			Status:       r.Status,
			MeetLink:     r.MeetLink,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return out, nil
}
