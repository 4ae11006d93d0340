package get_instructor_bookings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/logger"
)

type fakeService struct {
	allCalls  int
	dateCalls int
	date      time.Time
	err       error
}

func (f *fakeService) GetInstructorBookings(_ context.Context, instructorID int64) (*models.BookingListResponse, error) {
	f.allCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingListResponse{
		Bookings: []models.BookingResponse{{ID: 1, InstructorID: instructorID}, {ID: 2, InstructorID: instructorID}},
		Total:    2,
	}, nil
}

func (f *fakeService) GetInstructorBookingsForDate(_ context.Context, instructorID int64, date time.Time) (*models.BookingListResponse, error) {
	f.dateCalls++
	f.date = date
	return &models.BookingListResponse{
		Bookings: []models.BookingResponse{{ID: 3, InstructorID: instructorID, Date: date.Format("2006-01-02")}},
		Total:    1,
	}, nil
}

func doRequest(svc *fakeService, instructorID, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/instructor/"+instructorID+query, nil)
	req = mux.SetURLVars(req, map[string]string{"instructorId": instructorID})
	rec := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(rec, req)
	return rec
}

func TestHandle_AllBookings(t *testing.T) {
	svc := &fakeService{}

	rec := doRequest(svc, "7", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.allCalls)
	assert.Zero(t, svc.dateCalls)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"id":2`)
}

func TestHandle_ForDate(t *testing.T) {
	svc := &fakeService{}

	rec := doRequest(svc, "7", "?date=2025-06-02")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, svc.allCalls)
	assert.Equal(t, 1, svc.dateCalls)
	assert.Equal(t, "2025-06-02", svc.date.Format("2006-01-02"))
	assert.Contains(t, rec.Body.String(), `"date":"2025-06-02"`)
}

func TestHandle_BadInput(t *testing.T) {
	tests := []struct {
		name         string
		instructorID string
		query        string
	}{
		{name: "non-numeric id", instructorID: "abc"},
		{name: "zero id", instructorID: "0"},
		{name: "bad date", instructorID: "7", query: "?date=02.06.2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}

			rec := doRequest(svc, tt.instructorID, tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, svc.allCalls+svc.dateCalls)
		})
	}
}

func TestHandle_ServiceError(t *testing.T) {
	svc := &fakeService{err: errors.New("db down")}

	rec := doRequest(svc, "7", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
