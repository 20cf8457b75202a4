package services

import "errors"

// Error texts double as the client-facing {msg} of the REST API.
var (
	ErrUserNotFound       = errors.New("User not found")
	ErrUserExists         = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrNameRequired       = errors.New("Name is required")

	ErrRoomNotFound          = errors.New("Room not found")
	ErrRoomInactive          = errors.New("Room is no longer active")
	ErrRoomFieldsRequired    = errors.New("Type, subject and room name are required")
	ErrInvalidRoomType       = errors.New("Room type must be solo or group")
	ErrOnlyHostCanDelete     = errors.New("Only host can delete room")
	ErrSubjectQueryRequired  = errors.New("Subject query is required")
	ErrAlreadyInRoom         = errors.New("You are already in this room")
	ErrNotificationNotFound  = errors.New("Notification not found")
	ErrRequestAlreadySent    = errors.New("Request already sent")
	ErrRequestAlreadyHandled = errors.New("Request already handled")
	ErrNotAuthorized         = errors.New("Not authorized")

	ErrTaskNotFound  = errors.New("Task not found")
	ErrTitleRequired = errors.New("Title is required")
)
