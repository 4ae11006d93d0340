package courseservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetCourse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/internal/courses/3" {
			_ = json.NewEncoder(w).Encode(Course{ID: 3, Title: "Category B"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	course, err := client.GetCourse(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Category B", course.Title)

	_, err = client.GetCourse(context.Background(), 4)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := client.GetCourse(context.Background(), 3)
	assert.ErrorIs(t, err, ErrInternal)
}
