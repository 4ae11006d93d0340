package update_booking

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
	msgInvalidData        = "некорректные данные бронирования"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "недостаточно прав для изменения бронирования"
	msgIllegalTransition  = "недопустимая смена статуса"
	msgAttendance         = "посещаемость можно отметить только для начатого занятия"
	msgSlotConflict       = "новое время пересекается с другим занятием инструктора"
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

// Handle PUT /api/bookings/{bookingId}
// Студент может только отменить свое запланированное занятие
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PUT /bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingCaller)
		return
	}

	var req models.UpdateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /bookings/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("PUT /bookings/{id} - Validation failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidData)
		return
	}

	booking, err := h.service.UpdateByID(r.Context(), bookingID, caller, &req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrForbiddenUpdate):
			h.logger.Warn("PUT /bookings/{id} - Forbidden: booking_id=%d, user_id=%d, role=%s",
				bookingID, caller.UserID, caller.Role)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrIllegalTransition):
			handlers.RespondBadRequest(w, msgIllegalTransition)

		case errors.Is(err, bookings.ErrAttendanceNotAllowed):
			handlers.RespondBadRequest(w, msgAttendance)

		case errors.Is(err, bookings.ErrSlotConflict):
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("PUT /bookings/{id} - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("PUT /bookings/{id} - Failed to update booking: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /bookings/{id} - Booking updated: booking_id=%d, user_id=%d", bookingID, caller.UserID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
