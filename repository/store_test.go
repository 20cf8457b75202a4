package repository

import (
	"context"
	"testing"
	"time"

	"github.com/CUknot/studymatch_backend/database"
	"github.com/CUknot/studymatch_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteStore backs the gorm repositories with a private in-memory
// SQLite database migrated like production.
func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every new connection to :memory: opens an empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return NewGormStore(db)
}

// eachStore runs fn against every Store implementation.
func eachStore(t *testing.T, fn func(t *testing.T, store *Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("gorm", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
}

func seedRooms(t *testing.T, store *Store) (algebra, physics, closed *models.Room) {
	t.Helper()
	ctx := context.Background()
	algebra = &models.Room{HostID: 1, Participants: []uint{1, 2}, Type: models.RoomTypeGroup, Subject: "Algebra", RoomName: "a", Status: models.RoomStatusActive}
	physics = &models.Room{HostID: 3, Participants: []uint{3}, Type: models.RoomTypeSolo, Subject: "Quantum Physics", RoomName: "p", Status: models.RoomStatusActive}
	closed = &models.Room{HostID: 4, Participants: []uint{}, Type: models.RoomTypeSolo, Subject: "algebra", RoomName: "c", Status: models.RoomStatusInactive}
	for _, r := range []*models.Room{algebra, physics, closed} {
		require.NoError(t, store.Rooms.Create(ctx, r))
	}
	return algebra, physics, closed
}

func roomIDs(rooms []models.Room) []uint {
	out := []uint{}
	for _, r := range rooms {
		out = append(out, r.ID)
	}
	return out
}

func TestRoomFind(t *testing.T) {
	eachStore(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		algebra, physics, closed := seedRooms(t, store)

		active, err := store.Rooms.Find(ctx, RoomFilter{Status: models.RoomStatusActive})
		require.NoError(t, err)
		assert.Equal(t, []uint{algebra.ID, physics.ID}, roomIDs(active))

		mine, err := store.Rooms.Find(ctx, RoomFilter{Status: models.RoomStatusActive, Member: 2})
		require.NoError(t, err)
		assert.Equal(t, []uint{algebra.ID}, roomIDs(mine))
		assert.Equal(t, []uint{1, 2}, mine[0].Participants)

		hosted, err := store.Rooms.Find(ctx, RoomFilter{Member: 4})
		require.NoError(t, err)
		assert.Equal(t, []uint{closed.ID}, roomIDs(hosted))

		others, err := store.Rooms.Find(ctx, RoomFilter{Status: models.RoomStatusActive, ExcludeMember: 2})
		require.NoError(t, err)
		assert.Equal(t, []uint{physics.ID}, roomIDs(others))

		exact, err := store.Rooms.Find(ctx, RoomFilter{SubjectIn: []string{"ALGEBRA"}})
		require.NoError(t, err)
		assert.Equal(t, []uint{algebra.ID, closed.ID}, roomIDs(exact))

		sub, err := store.Rooms.Find(ctx, RoomFilter{Status: models.RoomStatusActive, SubjectContains: "physic"})
		require.NoError(t, err)
		assert.Equal(t, []uint{physics.ID}, roomIDs(sub))

		// LIKE wildcards in the query are literal
		none, err := store.Rooms.Find(ctx, RoomFilter{SubjectContains: "%"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestRoomSaveKeepsParticipantOrder(t *testing.T) {
	eachStore(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		room := &models.Room{HostID: 1, Participants: []uint{1, 2, 3}, Type: models.RoomTypeGroup, Subject: "Algebra", RoomName: "a", Status: models.RoomStatusActive}
		require.NoError(t, store.Rooms.Create(ctx, room))

		loaded, err := store.Rooms.FindByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{1, 2, 3}, loaded.Participants)

		// host leaves, the next participant in join order takes over
		require.True(t, loaded.RemoveParticipant(1))
		loaded.HostID = loaded.Participants[0]
		loaded.AddParticipant(1)
		require.NoError(t, store.Rooms.Save(ctx, loaded))

		again, err := store.Rooms.FindByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, uint(2), again.HostID)
		assert.Equal(t, []uint{2, 3, 1}, again.Participants)

		again.Participants = []uint{}
		again.Status = models.RoomStatusInactive
		require.NoError(t, store.Rooms.Save(ctx, again))

		emptied, err := store.Rooms.FindByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Empty(t, emptied.Participants)
		assert.False(t, emptied.IsActive())
	})
}

func TestRoomDelete(t *testing.T) {
	eachStore(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		algebra, physics, _ := seedRooms(t, store)

		require.NoError(t, store.Rooms.Delete(ctx, algebra.ID))
		_, err := store.Rooms.FindByID(ctx, algebra.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Rooms.Delete(ctx, algebra.ID), ErrNotFound)

		mine, err := store.Rooms.Find(ctx, RoomFilter{Member: 2})
		require.NoError(t, err)
		assert.Empty(t, mine)

		kept, err := store.Rooms.FindByID(ctx, physics.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{3}, kept.Participants)
	})
}

func TestUsers(t *testing.T) {
	eachStore(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		ann := &models.User{Name: "Ann", Email: "ann@example.com", Password: "x", Subjects: []string{"Algebra"}, Goals: []string{}}
		require.NoError(t, store.Users.Create(ctx, ann))

		err := store.Users.Create(ctx, &models.User{Name: "b", Email: "ann@example.com", Password: "x"})
		assert.ErrorIs(t, err, ErrDuplicate)

		found, err := store.Users.FindByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, ann.ID, found.ID)
		assert.Equal(t, []string{"Algebra"}, found.Subjects)

		_, err = store.Users.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Users.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)

		found.Subjects = []string{"Physics", "Chemistry"}
		require.NoError(t, store.Users.Save(ctx, found))

		users, err := store.Users.FindByIDs(ctx, []uint{ann.ID, 9999})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, []string{"Physics", "Chemistry"}, users[0].Subjects)
	})
}

func TestNotificationPendingTriple(t *testing.T) {
	eachStore(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		pending := func(sender, receiver, room uint) *models.Notification {
			return &models.Notification{
				SenderID: sender, ReceiverID: receiver, RoomID: room,
				Type: models.NotificationRoomRequest, Status: models.NotificationPending,
			}
		}

		first := pending(1, 2, 10)
		require.NoError(t, store.Notifications.Create(ctx, first))
		require.NoError(t, store.Notifications.Create(ctx, pending(1, 2, 11)))
		require.NoError(t, store.Notifications.Create(ctx, pending(3, 2, 10)))

		found, err := store.Notifications.FindPending(ctx, 1, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
		_, err = store.Notifications.FindPending(ctx, 2, 1, 10)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Notifications.FindPending(ctx, 1, 2, 12)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, store.Notifications.Create(ctx, pending(1, 2, 10)), ErrDuplicate)

		list, err := store.Notifications.ListPendingForReceiver(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, list, 3)
		for i := 1; i < len(list); i++ {
			assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt), "newest first")
		}

		found.Status = models.NotificationAccepted
		require.NoError(t, store.Notifications.Save(ctx, found))
		_, err = store.Notifications.FindPending(ctx, 1, 2, 10)
		assert.ErrorIs(t, err, ErrNotFound)

		// a handled request no longer blocks a new one
		require.NoError(t, store.Notifications.Create(ctx, pending(1, 2, 10)))

		reloaded, err := store.Notifications.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, models.NotificationAccepted, reloaded.Status)
	})
}

func TestTaskOwnership(t *testing.T) {
	eachStore(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		task := &models.Task{UserID: 1, Title: "read", DueDate: &due}
		require.NoError(t, store.Tasks.Create(ctx, task))
		require.NoError(t, store.Tasks.Create(ctx, &models.Task{UserID: 2, Title: "other"}))

		_, err := store.Tasks.FindOwned(ctx, task.ID, 2)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Tasks.DeleteOwned(ctx, task.ID, 2), ErrNotFound)

		owned, err := store.Tasks.FindOwned(ctx, task.ID, 1)
		require.NoError(t, err)
		require.NotNil(t, owned.DueDate)
		assert.True(t, owned.DueDate.Equal(due))

		owned.DueDate = nil
		owned.Completed = true
		require.NoError(t, store.Tasks.Save(ctx, owned))

		list, err := store.Tasks.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Nil(t, list[0].DueDate)
		assert.True(t, list[0].Completed)

		assert.NoError(t, store.Tasks.DeleteOwned(ctx, task.ID, 1))
		assert.ErrorIs(t, store.Tasks.DeleteOwned(ctx, task.ID, 1), ErrNotFound)

		list, err = store.Tasks.ListByUser(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestHistory(t *testing.T) {
	eachStore(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		now := time.Now().UTC()

		require.NoError(t, store.History.RecordJoin(ctx, 1, 10, "Algebra", now))
		require.NoError(t, store.History.RecordJoin(ctx, 2, 10, "Algebra", now))
		require.NoError(t, store.History.RecordJoin(ctx, 1, 11, "Physics", now.Add(time.Second)))
		require.NoError(t, store.History.RecordLeave(ctx, 1, 10, now.Add(time.Minute)))
		// no open entry: nothing to close
		require.NoError(t, store.History.RecordLeave(ctx, 3, 10, now))

		h1, err := store.History.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, h1, 2)
		assert.Equal(t, uint(11), h1[0].RoomID)
		assert.Nil(t, h1[0].LeftAt)
		require.NotNil(t, h1[1].LeftAt)

		require.NoError(t, store.History.CloseRoom(ctx, 10, now.Add(time.Hour)))
		h2, err := store.History.ListByUser(ctx, 2)
		require.NoError(t, err)
		require.Len(t, h2, 1)
		require.NotNil(t, h2[0].LeftAt)
		assert.WithinDuration(t, now.Add(time.Hour), *h2[0].LeftAt, time.Millisecond)

		h1, err = store.History.ListByUser(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, h1[0].LeftAt)
		assert.WithinDuration(t, now.Add(time.Minute), *h1[1].LeftAt, time.Millisecond)
	})
}
