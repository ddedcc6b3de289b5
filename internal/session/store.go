package session

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Fixed storage keys. Lifetime is "until explicit logout or storage cleared";
// there is deliberately no TTL and no client-side expiry check.
const (
	TokenKey    = "cctv_token"
	RoleKey     = "cctv_role"
	UsernameKey = "cctv_username"
)

// Fallback values returned when a field is absent. One policy for every call
// site: role "normal", username "operator".
const (
	DefaultRole     = "normal"
	DefaultUsername = "operator"
)

// Store persists the operator session (token, role, username) in Redis. It is
// the only shared mutable state in the console: the gateway client reads the
// token on every outgoing request, and only login/logout write.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// SetSession writes all three fields as sequential SETs. There is no
// transaction and no rollback: a failure mid-write can leave the fields
// inconsistent. Accepted limitation, kept as-is.
func (s *Store) SetSession(ctx context.Context, token, role, username string) error {
	if err := s.client.Set(ctx, TokenKey, token, 0).Err(); err != nil {
		return err
	}
	if err := s.client.Set(ctx, RoleKey, role, 0).Err(); err != nil {
		return err
	}
	return s.client.Set(ctx, UsernameKey, username, 0).Err()
}

// ClearSession removes all three fields.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.client.Del(ctx, TokenKey, RoleKey, UsernameKey).Err()
}

// Token returns the stored token, or "" when no session exists. The empty
// string is meaningful: the gateway client omits the Authorization header
// rather than treating it as an error.
func (s *Store) Token(ctx context.Context) string {
	val, err := s.client.Get(ctx, TokenKey).Result()
	if err != nil {
		return ""
	}
	return val
}

// Role returns the stored role or DefaultRole.
func (s *Store) Role(ctx context.Context) string {
	val, err := s.client.Get(ctx, RoleKey).Result()
	if err != nil || val == "" {
		return DefaultRole
	}
	return val
}

// Username returns the stored username or DefaultUsername.
func (s *Store) Username(ctx context.Context) string {
	val, err := s.client.Get(ctx, UsernameKey).Result()
	if err != nil || val == "" {
		return DefaultUsername
	}
	return val
}

// Authenticated reports whether a token is present at this instant. This is a
// point-in-time check: a token invalidated server-side is not detected here,
// only at the next rejected backend request.
func (s *Store) Authenticated(ctx context.Context) bool {
	return s.Token(ctx) != ""
}
