package userservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/DrivingSchool-BookingService/pkg/logger"
)

func newTestServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		switch r.URL.Path {
		case "/internal/users/7":
			_ = json.NewEncoder(w).Encode(User{ID: 7, Name: "Ivan Petrov", Role: RoleInstructor})
		case "/internal/users/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetUser(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	client := NewClient(srv.URL, time.Second, logger.NewNop())

	user, err := client.GetUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrov", user.Name)
	assert.True(t, user.IsInstructor())

	_, err = client.GetUser(context.Background(), 8)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = client.GetUser(context.Background(), 500)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

type memoryCache struct {
	data    map[string][]byte
	failGet bool
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	if m.failGet {
		return false, errors.New("redis: connection refused")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func TestCachedClient_GetUser(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	store := &memoryCache{data: map[string][]byte{}}
	client := NewCachedClient(NewClient(srv.URL, time.Second, logger.NewNop()), store, logger.NewNop())

	for i := 0; i < 3; i++ {
		user, err := client.GetUser(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "Ivan Petrov", user.Name)
	}
	assert.Equal(t, 1, hits, "subsequent reads are served from cache")

	store.failGet = true
	_, err := client.GetUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, hits, "cache failure falls back to the service")
}

func TestCachedClient_GetUserWithGracefulDegradation(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	store := &memoryCache{data: map[string][]byte{}}
	client := NewCachedClient(NewClient(srv.URL, time.Second, logger.NewNop()), store, logger.NewNop())

	user, err := client.GetUserWithGracefulDegradation(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrov", user.Name)

	_, err = client.GetUserWithGracefulDegradation(context.Background(), 500)
	assert.ErrorIs(t, err, ErrServiceDegraded)

	_, err = client.GetUserWithGracefulDegradation(context.Background(), 8)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NotErrorIs(t, err, ErrServiceDegraded)
}
