package userservice

import (
	"context"
	"errors"
	"fmt"
)

// CachedClient читает пользователей через кэш.
// Ошибки кэша не ломают запрос: клиент идёт напрямую в UserService.
type CachedClient struct {
	next  Getter
	cache Cache
	log   Logger
}

// NewCachedClient оборачивает источник пользователей кэшем
func NewCachedClient(next Getter, cache Cache, log Logger) *CachedClient {
	return &CachedClient{next: next, cache: cache, log: log}
}

// GetUser получает пользователя из кэша или из UserService
func (c *CachedClient) GetUser(ctx context.Context, userID int64) (*User, error) {
	key := cacheKey(userID)

	var cached User
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.log.Warn("UserService cache read failed for user_id=%d: %v", userID, err)
	}
	if found {
		return &cached, nil
	}

	user, err := c.next.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, user); err != nil {
		c.log.Warn("UserService cache write failed for user_id=%d: %v", userID, err)
	}

	return user, nil
}

// GetUserWithGracefulDegradation получает пользователя для подстановки имени.
// При недоступности UserService возвращает ErrServiceDegraded, ErrUserNotFound возвращается как есть.
func (c *CachedClient) GetUserWithGracefulDegradation(ctx context.Context, userID int64) (*User, error) {
	user, err := c.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}

		c.log.Error("UserService unavailable, applying graceful degradation for user_id=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: user_id=%d, error=%v", ErrServiceDegraded, userID, err)
	}

	return user, nil
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}
