package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/CUknot/studymatch_backend/models"
)

// NewMemoryStore returns a process-local store. Records are copied on the way
// in and out so callers never share memory with the store.
func NewMemoryStore() *Store {
	m := &memoryDB{
		users:         make(map[uint]models.User),
		rooms:         make(map[uint]models.Room),
		notifications: make(map[uint]models.Notification),
		tasks:         make(map[uint]models.Task),
	}
	return &Store{
		Users:         &memUserRepo{m},
		Rooms:         &memRoomRepo{m},
		Notifications: &memNotificationRepo{m},
		Tasks:         &memTaskRepo{m},
		History:       &memHistoryRepo{m},
	}
}

type memoryDB struct {
	mu            sync.RWMutex
	nextID        uint
	users         map[uint]models.User
	rooms         map[uint]models.Room
	notifications map[uint]models.Notification
	tasks         map[uint]models.Task
	history       []models.RoomHistory
}

func (m *memoryDB) id() uint {
	m.nextID++
	return m.nextID
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

func cloneUser(u models.User) models.User {
	u.Subjects = cloneStrings(u.Subjects)
	u.Goals = cloneStrings(u.Goals)
	return u
}

func cloneRoom(r models.Room) models.Room {
	r.Participants = append([]uint{}, r.Participants...)
	return r
}

type memUserRepo struct{ m *memoryDB }

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	now := time.Now()
	user.ID = r.m.id()
	user.CreatedAt, user.UpdatedAt = now, now
	r.m.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, u := range r.m.users {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUserRepo) FindByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.m.users[id]; ok {
			users = append(users, cloneUser(u))
		}
	}
	return users, nil
}

func (r *memUserRepo) Save(_ context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.m.users[user.ID] = cloneUser(*user)
	return nil
}

type memRoomRepo struct{ m *memoryDB }

func (r *memRoomRepo) Create(_ context.Context, room *models.Room) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := time.Now()
	room.ID = r.m.id()
	room.CreatedAt, room.UpdatedAt = now, now
	if room.Status == "" {
		room.Status = models.RoomStatusActive
	}
	r.m.rooms[room.ID] = cloneRoom(*room)
	return nil
}

func (r *memRoomRepo) FindByID(_ context.Context, id uint) (*models.Room, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	room, ok := r.m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	room = cloneRoom(room)
	return &room, nil
}

func (r *memRoomRepo) Find(_ context.Context, f RoomFilter) ([]models.Room, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	rooms := []models.Room{}
	for _, room := range r.m.rooms {
		if f.Status != "" && room.Status != f.Status {
			continue
		}
		if f.Member != 0 && !room.IsMember(f.Member) {
			continue
		}
		if f.ExcludeMember != 0 && room.IsMember(f.ExcludeMember) {
			continue
		}
		if len(f.SubjectIn) > 0 && !models.SubjectMatchesAny(room.Subject, f.SubjectIn) {
			continue
		}
		if f.SubjectContains != "" && !models.SubjectContains(room.Subject, f.SubjectContains) {
			continue
		}
		rooms = append(rooms, cloneRoom(room))
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (r *memRoomRepo) Save(_ context.Context, room *models.Room) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.rooms[room.ID]; !ok {
		return ErrNotFound
	}
	room.UpdatedAt = time.Now()
	r.m.rooms[room.ID] = cloneRoom(*room)
	return nil
}

func (r *memRoomRepo) Delete(_ context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.rooms, id)
	return nil
}

type memNotificationRepo struct{ m *memoryDB }

func (r *memNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if n.Status == "" {
		n.Status = models.NotificationPending
	}
	if n.IsPending() {
		for _, other := range r.m.notifications {
			if other.IsPending() && other.SenderID == n.SenderID && other.ReceiverID == n.ReceiverID && other.RoomID == n.RoomID {
				return ErrDuplicate
			}
		}
	}
	now := time.Now()
	n.ID = r.m.id()
	n.CreatedAt, n.UpdatedAt = now, now
	r.m.notifications[n.ID] = *n
	return nil
}

func (r *memNotificationRepo) FindByID(_ context.Context, id uint) (*models.Notification, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	n, ok := r.m.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (r *memNotificationRepo) FindPending(_ context.Context, senderID, receiverID, roomID uint) (*models.Notification, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, n := range r.m.notifications {
		if n.SenderID == senderID && n.ReceiverID == receiverID && n.RoomID == roomID &&
			n.Type == models.NotificationRoomRequest && n.IsPending() {
			return &n, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memNotificationRepo) ListPendingForReceiver(_ context.Context, receiverID uint) ([]models.Notification, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	list := []models.Notification{}
	for _, n := range r.m.notifications {
		if n.ReceiverID == receiverID && n.IsPending() {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r *memNotificationRepo) Save(_ context.Context, n *models.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.notifications[n.ID]; !ok {
		return ErrNotFound
	}
	n.UpdatedAt = time.Now()
	r.m.notifications[n.ID] = *n
	return nil
}

type memTaskRepo struct{ m *memoryDB }

func (r *memTaskRepo) ListByUser(_ context.Context, userID uint) ([]models.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	tasks := []models.Task{}
	for _, t := range r.m.tasks {
		if t.UserID == userID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (r *memTaskRepo) Create(_ context.Context, task *models.Task) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := time.Now()
	task.ID = r.m.id()
	task.CreatedAt, task.UpdatedAt = now, now
	r.m.tasks[task.ID] = *task
	return nil
}

func (r *memTaskRepo) FindOwned(_ context.Context, id, userID uint) (*models.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	t, ok := r.m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *memTaskRepo) Save(_ context.Context, task *models.Task) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.tasks[task.ID]; !ok {
		return ErrNotFound
	}
	task.UpdatedAt = time.Now()
	r.m.tasks[task.ID] = *task
	return nil
}

func (r *memTaskRepo) DeleteOwned(_ context.Context, id, userID uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(r.m.tasks, id)
	return nil
}

type memHistoryRepo struct{ m *memoryDB }

func (r *memHistoryRepo) RecordJoin(_ context.Context, userID, roomID uint, subject string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.history = append(r.m.history, models.RoomHistory{
		ID: r.m.id(), UserID: userID, RoomID: roomID, Subject: subject, JoinedAt: at,
	})
	return nil
}

func (r *memHistoryRepo) RecordLeave(_ context.Context, userID, roomID uint, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range r.m.history {
		h := &r.m.history[i]
		if h.UserID == userID && h.RoomID == roomID && h.LeftAt == nil {
			left := at
			h.LeftAt = &left
			return nil
		}
	}
	return nil
}

func (r *memHistoryRepo) CloseRoom(_ context.Context, roomID uint, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range r.m.history {
		h := &r.m.history[i]
		if h.RoomID == roomID && h.LeftAt == nil {
			left := at
			h.LeftAt = &left
		}
	}
	return nil
}

func (r *memHistoryRepo) ListByUser(_ context.Context, userID uint) ([]models.RoomHistory, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	entries := []models.RoomHistory{}
	for i := len(r.m.history) - 1; i >= 0; i-- {
		if r.m.history[i].UserID == userID {
			entries = append(entries, r.m.history[i])
		}
	}
	return entries, nil
}
