package pkg

import (
	"crypto/rand"
	"encoding/base64"
)

// Room codes leave out ambiguous characters (0/O, 1/I/L) so they
// survive being read aloud or typed from a phone.
const (
	roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
)

// GenerateRoomCode - generates a random 6-character room code.
func GenerateRoomCode() string {
	b := make([]byte, roomCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "error-generating-room-code"
	}

	for i := range b {
		b[i] = roomCodeAlphabet[int(b[i])%len(roomCodeAlphabet)]
	}

	return string(b)
}

// GenerateConnectionID - generates a new unique connection id.
func GenerateConnectionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "error-generating-connection-id"
	}

	return base64.RawURLEncoding.EncodeToString(b)
}
