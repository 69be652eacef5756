package client

import (
	"context"
	"errors"

	"propertypal/internal/store"

	"go.uber.org/zap"
)

const (
	AccessTokenKey  = "auth.accessToken"
	RefreshTokenKey = "auth.refreshToken"
)

// TokenStore keeps the bearer pair in a KV slot.
type TokenStore struct {
	kv     store.KV
	logger *zap.Logger
}

func NewTokenStore(kv store.KV, logger *zap.Logger) *TokenStore {
	return &TokenStore{kv: kv, logger: logger}
}

// AccessToken returns "" when no token is stored.
func (t *TokenStore) AccessToken(ctx context.Context) string {
	return t.get(ctx, AccessTokenKey)
}

// RefreshToken returns "" when no token is stored.
func (t *TokenStore) RefreshToken(ctx context.Context) string {
	return t.get(ctx, RefreshTokenKey)
}

// SetTokens stores the pair; an empty refresh token removes the stored one.
func (t *TokenStore) SetTokens(ctx context.Context, access, refresh string) error {
	if err := t.kv.Set(ctx, AccessTokenKey, access, 0); err != nil {
		return err
	}
	if refresh == "" {
		return t.kv.Delete(ctx, RefreshTokenKey)
	}
	return t.kv.Set(ctx, RefreshTokenKey, refresh, 0)
}

// Clear drops both tokens. Failures are logged only.
func (t *TokenStore) Clear(ctx context.Context) {
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if err := t.kv.Delete(ctx, key); err != nil {
			t.logger.Warn("Failed to clear token", zap.String("key", key), zap.Error(err))
		}
	}
}

func (t *TokenStore) get(ctx context.Context, key string) string {
	v, err := t.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			t.logger.Warn("Failed to read token", zap.String("key", key), zap.Error(err))
		}
		return ""
	}
	return v
}
