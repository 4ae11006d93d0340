package get_instructor_bookings

import (
	"net/http"

	"github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidInstructorID = "некорректный ID инструктора"
	msgInvalidDate         = "некорректная дата, ожидается YYYY-MM-DD"
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

// Handle GET /api/bookings/instructor/{instructorId}
// С параметром ?date=YYYY-MM-DD возвращает только активные занятия этого дня по времени начала.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	instructorID, err := handlers.PathInt64(r, "instructorId")
	if err != nil {
		h.logger.Warn("GET /bookings/instructor/{id} - Invalid instructor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidInstructorID)
		return
	}

	var result *models.BookingListResponse
	if raw := handlers.QueryString(r, "date"); raw != nil {
		date, parseErr := models.ParseDate(*raw)
		if parseErr != nil {
			h.logger.Warn("GET /bookings/instructor/{id} - Invalid date: %v", parseErr)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		result, err = h.service.GetInstructorBookingsForDate(r.Context(), instructorID, date)
	} else {
		result, err = h.service.GetInstructorBookings(r.Context(), instructorID)
	}
	if err != nil {
		h.logger.Error("GET /bookings/instructor/{id} - Failed to get bookings: instructor_id=%d, error=%v",
			instructorID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
