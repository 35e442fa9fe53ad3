package i

import (
	"github.com/google/uuid"
)

// Authenticator issues guest identities and resolves tokens back to players.
type Authenticator interface {
	// Guest creates a new player identity and returns a signed token for it.
	Guest(name string) (uuid.UUID, string, error)

	// Authenticate validates token and returns the player it was issued to.
	Authenticate(token string) (uuid.UUID, string, error)
}
