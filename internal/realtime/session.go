package realtime

import (
	"time"

	"github.com/google/uuid"
)

// Session is the identity verified at upgrade time. It is built once and never mutated.
type Session struct {
	ID          string
	UserID      uuid.UUID
	Email       string
	Token       string
	ConnectedAt time.Time
}
