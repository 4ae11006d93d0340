package get_upcoming

import (
	"context"
	"net/http"

	"github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidInstructorID = "некорректный ID инструктора"
	msgInvalidStudentID    = "некорректный ID студента"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleInstructor GET /api/bookings/instructor/{instructorId}/upcoming
func (h *Handler) HandleInstructor(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "instructorId", msgInvalidInstructorID, h.service.GetUpcomingForInstructor)
}

// HandleStudent GET /api/bookings/student/{studentId}/upcoming
func (h *Handler) HandleStudent(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "studentId", msgInvalidStudentID, h.service.GetUpcomingForStudent)
}

func (h *Handler) handle(
	w http.ResponseWriter,
	r *http.Request,
	param string,
	msgInvalidID string,
	fetch func(ctx context.Context, id int64) (*models.BookingListResponse, error),
) {
	id, err := handlers.PathInt64(r, param)
	if err != nil {
		h.logger.Warn("GET %s - Invalid %s: %v", r.URL.Path, param, err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	result, err := fetch(r.Context(), id)
	if err != nil {
		h.logger.Error("GET %s - Failed to get upcoming bookings: %s=%d, error=%v", r.URL.Path, param, id, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
