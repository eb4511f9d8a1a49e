package pkg

import "github.com/google/uuid"

// GenerateSessionID - allocates a fresh connection identity.
func GenerateSessionID() string {
	return uuid.NewString()
}

// GenerateRoomID - allocates a fresh room identity.
func GenerateRoomID() string {
	return "room_" + uuid.NewString()
}

// GenerateMatchID - allocates a fresh match identity.
func GenerateMatchID() string {
	return uuid.NewString()
}
