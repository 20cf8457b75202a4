package registry

import (
	"testing"

	"github.com/CUknot/studymatch_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func room(id, host uint, subject string, participants ...uint) *models.Room {
	return &models.Room{
		ID:           id,
		HostID:       host,
		Participants: append([]uint{host}, participants...),
		Subject:      subject,
		Type:         models.RoomTypeGroup,
		RoomName:     subject + " room",
		Status:       models.RoomStatusActive,
	}
}

func TestSyncInsertsRefreshesAndEvicts(t *testing.T) {
	reg := New()
	r := room(1, 10, "Algebra")

	assert.True(t, reg.Sync(r))
	r.Participants = append(r.Participants, 11)
	assert.True(t, reg.Sync(r))

	e, ok := reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, []uint{10, 11}, e.Participants)
	assert.Equal(t, 1, reg.Len())

	r.Status = models.RoomStatusInactive
	assert.False(t, reg.Sync(r))
	_, ok = reg.Get(1)
	assert.False(t, ok)
}

func TestSnapshotKeepsInsertionOrder(t *testing.T) {
	reg := New()
	reg.Sync(room(3, 1, "a"))
	reg.Sync(room(1, 1, "b"))
	reg.Sync(room(2, 1, "c"))
	reg.Sync(room(1, 1, "b2"))

	assert.True(t, reg.Evict(3))
	assert.False(t, reg.Evict(3))

	snap := reg.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, uint(1), snap[0].RoomID)
	assert.Equal(t, "b2", snap[0].Subject)
	assert.Equal(t, uint(2), snap[1].RoomID)
}

func TestSnapshotIsACopy(t *testing.T) {
	reg := New()
	reg.Sync(room(1, 10, "Algebra"))

	snap := reg.Snapshot()
	snap[0].Participants[0] = 99

	e, _ := reg.Get(1)
	assert.Equal(t, []uint{10}, e.Participants)
}

func TestReplaceSkipsInactive(t *testing.T) {
	reg := New()
	reg.Sync(room(9, 1, "stale"))

	inactive := room(2, 1, "b")
	inactive.Status = models.RoomStatusInactive
	reg.Replace([]models.Room{*room(1, 1, "a"), *inactive})

	snap := reg.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, uint(1), snap[0].RoomID)
}

func TestSuggestedMatchesWholeSubjectIgnoringCase(t *testing.T) {
	reg := New()
	reg.Sync(room(1, 10, "Algebra"))
	reg.Sync(room(2, 10, "Algebra II"))
	reg.Sync(room(3, 20, "algebra", 30))

	got := reg.Suggested(40, []string{"ALGEBRA"})
	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].RoomID)
	assert.Equal(t, uint(3), got[1].RoomID)

	// participants never see their own rooms
	own := reg.Suggested(30, []string{"algebra"})
	require.Len(t, own, 1)
	assert.Equal(t, uint(1), own[0].RoomID)

	assert.Empty(t, reg.Suggested(40, []string{"Algebra 2"}))
	assert.Empty(t, reg.Suggested(40, nil))
}
