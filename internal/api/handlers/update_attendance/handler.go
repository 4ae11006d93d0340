package update_attendance

import (
	"errors"
	"net/http"

	"github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers"
	"github.com/m04kA/DrivingSchool-BookingService/internal/api/middleware"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingCaller      = "не удалось определить пользователя"
	msgInvalidAttendance  = "некорректное значение посещаемости, ожидается attended или not-attended"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "отметить посещаемость может только инструктор или администратор"
	msgNotAllowed         = "посещаемость можно отметить только для начатого занятия"
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

// Handle PATCH /api/bookings/{bookingId}/attendance
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/attendance - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingCaller)
		return
	}

	var req models.UpdateAttendanceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/attendance - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(&req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidAttendance)
		return
	}

	booking, err := h.service.UpdateAttendance(r.Context(), bookingID, caller, &req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrForbiddenUpdate):
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrAttendanceNotAllowed):
			handlers.RespondBadRequest(w, msgNotAllowed)

		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidAttendance)

		default:
			h.logger.Error("PATCH /bookings/{id}/attendance - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/attendance - Attendance updated: booking_id=%d, attendance=%s",
		bookingID, req.Attendance)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
