package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/logger"
)

func TestAuth(t *testing.T) {
	var got domain.Caller
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetCaller(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		userID     string
		role       string
		wantStatus int
	}{
		{name: "student", userID: "42", role: "student", wantStatus: http.StatusNoContent},
		{name: "role case insensitive", userID: "7", role: "Instructor", wantStatus: http.StatusNoContent},
		{name: "missing user", role: "admin", wantStatus: http.StatusUnauthorized},
		{name: "bad user", userID: "abc", role: "admin", wantStatus: http.StatusUnauthorized},
		{name: "unknown role", userID: "7", role: "owner", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			req.Header.Set(HeaderUserRole, tt.role)
			rec := httptest.NewRecorder()

			Auth(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "7")
	req.Header.Set(HeaderUserRole, "instructor")
	Auth(next).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, domain.Caller{UserID: 7, Role: domain.RoleInstructor}, got)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

type recordedRequest struct {
	method, path, status string
}

type fakeHTTPMetrics struct {
	requests []recordedRequest
}

func (f *fakeHTTPMetrics) ObserveHTTPRequest(method, path, status string, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{method, path, status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := &fakeHTTPMetrics{}
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m), Logging(logger.NewNop()))
	r.HandleFunc("/api/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/bookings/15", nil))

	require.Len(t, m.requests, 1)
	assert.Equal(t, recordedRequest{"GET", "/api/bookings/{id}", "404"}, m.requests[0])
}
