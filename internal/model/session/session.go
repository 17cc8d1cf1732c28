package session

import (
	"time"

	"github.com/emmalund/plantwatch/backend/internal/model/weather"
)

// Speaker identifies who produced a transcript turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one transcript entry. The transcript is append-only; turns are
// never reordered or deleted.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Upload records the most recent successful image upload. DisplayName is the
// name the user types in chat to refer to the image; StorageKey is the full
// object-store key.
type Upload struct {
	DisplayName string `json:"displayName"`
	StorageKey  string `json:"storageKey"`
}

// Session is the complete state of one interactive dashboard connection.
// Location is always a registered name; Weather is the last completed fetch
// for the current location.
type Session struct {
	ID           string           `json:"id"`
	Location     string           `json:"location"`
	Weather      weather.Snapshot `json:"weather"`
	Transcript   []Turn           `json:"transcript"`
	LastUpload   *Upload          `json:"lastUpload,omitempty"`
	UploadFailed bool             `json:"uploadFailed,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}
