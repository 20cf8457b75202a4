package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/CUknot/studymatch_backend/models"
	"github.com/CUknot/studymatch_backend/repository"
	"github.com/sirupsen/logrus"
)

// RoomJoiner adds a user to a room; accepting a request goes through it so
// the registry and history stay in step.
type RoomJoiner interface {
	Join(ctx context.Context, userID, roomID uint) (*models.RoomView, error)
}

type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	rooms         repository.RoomRepository
	joiner        RoomJoiner
	hub           Broadcaster
}

func NewNotificationService(store *repository.Store, joiner RoomJoiner, hub Broadcaster) *NotificationService {
	return &NotificationService{
		notifications: store.Notifications,
		users:         store.Users,
		rooms:         store.Rooms,
		joiner:        joiner,
		hub:           hub,
	}
}

// RequestJoin asks the current host of roomID to let senderID in.
func (s *NotificationService) RequestJoin(ctx context.Context, senderID, roomID uint) (*models.NotificationView, error) {
	room, err := s.room(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.IsMember(senderID) {
		return nil, ErrAlreadyInRoom
	}
	sender, err := s.user(ctx, senderID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, sender, room.HostID, room, fmt.Sprintf("%s requested to join your room", sender.Name))
}

// Send creates a join request addressed to an explicit receiver.
func (s *NotificationService) Send(ctx context.Context, senderID, receiverID, roomID uint) (*models.NotificationView, error) {
	if _, err := s.user(ctx, receiverID); err != nil {
		return nil, err
	}
	room, err := s.room(ctx, roomID)
	if err != nil {
		return nil, err
	}
	sender, err := s.user(ctx, senderID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, sender, receiverID, room, fmt.Sprintf("%s wants to join your room", sender.Name))
}

func (s *NotificationService) create(ctx context.Context, sender *models.User, receiverID uint, room *models.Room, message string) (*models.NotificationView, error) {
	_, err := s.notifications.FindPending(ctx, sender.ID, receiverID, room.ID)
	switch {
	case err == nil:
		return nil, ErrRequestAlreadySent
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	n := &models.Notification{
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		RoomID:     room.ID,
		Type:       models.NotificationRoomRequest,
		Message:    message,
		Status:     models.NotificationPending,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		// lost a race with a concurrent request for the same triple
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRequestAlreadySent
		}
		return nil, err
	}

	view := buildNotificationView(n, sender.Summary(), roomSummary(room))
	s.hub.SendToUser(receiverID, EventNotificationNew, view)

	logrus.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"user_id":         sender.ID,
		"room_id":         room.ID,
	}).Info("Join request sent")
	return &view, nil
}

// List returns the pending requests addressed to userID, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.NotificationView, error) {
	list, err := s.notifications.ListPendingForReceiver(ctx, userID)
	if err != nil {
		return nil, err
	}

	senders := make(map[uint]bool)
	var senderIDs []uint
	for _, n := range list {
		if !senders[n.SenderID] {
			senders[n.SenderID] = true
			senderIDs = append(senderIDs, n.SenderID)
		}
	}
	users, err := s.users.FindByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.UserSummary, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].Summary()
	}

	rooms := make(map[uint]models.RoomSummary)
	views := make([]models.NotificationView, 0, len(list))
	for i := range list {
		n := &list[i]
		sender, ok := byID[n.SenderID]
		if !ok {
			sender = models.UserSummary{ID: n.SenderID}
		}
		rs, ok := rooms[n.RoomID]
		if !ok {
			rs = models.RoomSummary{ID: n.RoomID}
			if room, err := s.rooms.FindByID(ctx, n.RoomID); err == nil {
				rs = roomSummary(room)
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			rooms[n.RoomID] = rs
		}
		views = append(views, buildNotificationView(n, sender, rs))
	}
	return views, nil
}

// MarkRead flags a notification received by userID as read and tells the
// sender.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) (*models.Notification, error) {
	n, err := s.notifications.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if n.ReceiverID != userID {
		return nil, ErrNotificationNotFound
	}

	if !n.IsRead {
		n.IsRead = true
		if err := s.notifications.Save(ctx, n); err != nil {
			return nil, err
		}
	}
	s.hub.SendToUser(n.SenderID, EventNotificationRead, map[string]interface{}{"notificationId": n.ID})
	return n, nil
}

// Accept lets the sender into the room and closes the request.
func (s *NotificationService) Accept(ctx context.Context, userID, notificationID uint) (*models.RoomView, error) {
	n, err := s.pendingFor(ctx, userID, notificationID)
	if err != nil {
		return nil, err
	}

	room, err := s.joiner.Join(ctx, n.SenderID, n.RoomID)
	if err != nil {
		return nil, err
	}

	if err := s.resolve(ctx, n, models.NotificationAccepted); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *NotificationService) Reject(ctx context.Context, userID, notificationID uint) error {
	n, err := s.pendingFor(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	return s.resolve(ctx, n, models.NotificationRejected)
}

// pendingFor loads a notification the caller may transition. Receiver is
// checked before status.
func (s *NotificationService) pendingFor(ctx context.Context, userID, notificationID uint) (*models.Notification, error) {
	n, err := s.notifications.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if n.ReceiverID != userID {
		return nil, ErrNotAuthorized
	}
	if !n.IsPending() {
		return nil, ErrRequestAlreadyHandled
	}
	return n, nil
}

func (s *NotificationService) resolve(ctx context.Context, n *models.Notification, status string) error {
	n.Status = status
	if err := s.notifications.Save(ctx, n); err != nil {
		return err
	}

	s.hub.SendToUser(n.SenderID, EventNotificationUpdate, map[string]interface{}{
		"id":       n.ID,
		"status":   n.Status,
		"receiver": n.SenderID,
	})
	logrus.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"room_id":         n.RoomID,
		"status":          status,
	}).Info("Join request resolved")
	return nil
}

func (s *NotificationService) room(ctx context.Context, roomID uint) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *NotificationService) user(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func roomSummary(room *models.Room) models.RoomSummary {
	return models.RoomSummary{ID: room.ID, RoomName: room.RoomName, Subject: room.Subject}
}

func buildNotificationView(n *models.Notification, sender models.UserSummary, room models.RoomSummary) models.NotificationView {
	return models.NotificationView{
		ID:        n.ID,
		Sender:    sender,
		Receiver:  n.ReceiverID,
		Type:      n.Type,
		Room:      room,
		Message:   n.Message,
		IsRead:    n.IsRead,
		Status:    n.Status,
		CreatedAt: n.CreatedAt,
	}
}
