package services

// Events pushed to a single user's private channel.
const (
	EventNotificationNew    = "notification:new"
	EventNotificationUpdate = "notification:update"
	EventNotificationRead   = "notification:read"
)

// Broadcaster is the real-time side of the services. Delivery is at most
// once: a client that is not connected misses the event and catches up
// through the REST API.
type Broadcaster interface {
	// PublishRooms sends the active room list to every client and a freshly
	// computed suggestion list to each of them.
	PublishRooms()
	// SendToUser delivers an event to every connection of userID.
	SendToUser(userID uint, event string, payload interface{})
	// CloseRoom tells the room channel the room is gone and detaches its members.
	CloseRoom(roomID uint, message string)
	// UpdateSubjects refreshes the interests used for userID's suggestions.
	UpdateSubjects(userID uint, subjects []string)
}
