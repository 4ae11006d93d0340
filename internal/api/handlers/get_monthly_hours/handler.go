package get_monthly_hours

import (
	"net/http"

	"github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers"
)

const msgInvalidInstructorID = "некорректный ID инструктора"

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

// Handle GET /api/bookings/instructor/{instructorId}/monthly-hours
// Возвращает проведенные занятия инструктора за текущий месяц
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	instructorID, err := handlers.PathInt64(r, "instructorId")
	if err != nil {
		h.logger.Warn("GET /bookings/instructor/{id}/monthly-hours - Invalid instructor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidInstructorID)
		return
	}

	result, err := h.service.GetMonthlyHours(r.Context(), instructorID)
	if err != nil {
		h.logger.Error("GET /bookings/instructor/{id}/monthly-hours - Failed: instructor_id=%d, error=%v",
			instructorID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
