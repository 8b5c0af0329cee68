package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"golang.org/x/oauth2"
)

// ErrNoToken means the owner has not authorized calendar access yet.
var ErrNoToken = errors.New("calendar: owner has not authorized access")

// TokenStore persists the calendar owner's OAuth2 token.
type TokenStore interface {
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, tok *oauth2.Token) error
}

const ownerTokenKey = "calendar:owner:token"

// RedisTokenStore keeps the token in Redis without expiry; the refresh token
// outlives the access token.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	data, err := s.client.Get(ctx, ownerTokenKey).Bytes()
	if err == redis.Nil {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("calendar: load token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("calendar: decode token: %w", err)
	}
	return &tok, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, ownerTokenKey, b, 0).Err()
}
