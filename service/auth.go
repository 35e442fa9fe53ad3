package service

import (
	"errors"
	"strings"
	"time"

	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/google/uuid"
)

const maxNameLength = 32

var (
	ErrInvalidName  = errors.New("name must be 1 to 32 characters")
	ErrInvalidToken = errors.New("invalid token")
)

var _ i.Authenticator = &Auth{}

// Auth hands out guest identities. Players are not stored anywhere: the
// signed token is the identity.
type Auth struct {
	tokenizer i.Tokenizer
	ttl       time.Duration
}

// NewAuth creates a guest authenticator issuing tokens valid for ttl.
func NewAuth(tokenizer i.Tokenizer, ttl time.Duration) (*Auth, error) {
	if tokenizer == nil {
		return nil, errors.New("auth requires a tokenizer")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Auth{tokenizer: tokenizer, ttl: ttl}, nil
}

func (a *Auth) Guest(name string) (uuid.UUID, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return uuid.Nil, "", ErrInvalidName
	}

	playerID := uuid.New()
	token, err := a.tokenizer.Generate(map[string]interface{}{
		"playerID": playerID.String(),
		"name":     name,
	}, a.ttl)
	if err != nil {
		return uuid.Nil, "", err
	}

	return playerID, token, nil
}

func (a *Auth) Authenticate(token string) (uuid.UUID, string, error) {
	claims, err := a.tokenizer.Decode(token)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	rawID, ok := claims["playerID"].(string)
	if !ok {
		return uuid.Nil, "", ErrInvalidToken
	}
	playerID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	name, _ := claims["name"].(string)
	return playerID, name, nil
}
