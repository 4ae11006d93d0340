package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers"
	"github.com/m04kA/DrivingSchool-BookingService/internal/api/middleware"
	createBooking "github.com/m04kA/DrivingSchool-BookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени, ожидается HH:MM"
	msgInvalidData        = "некорректные данные бронирования"
	msgSlotConflict       = "выбранное время инструктора уже занято"
	msgBookingInPast      = "нельзя забронировать прошедшее время"
	msgInstructorNotFound = "инструктор не найден"
	msgNotInstructor      = "пользователь не является инструктором"
	msgStudentNotFound    = "студент не найден"
	msgCourseNotFound     = "курс не найден"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("POST /bookings - Validation failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidData)
		return
	}

	// Студент без явного studentId бронирует занятие для себя
	if caller, ok := middleware.GetCaller(r.Context()); ok && caller.IsStudent() && req.StudentID == nil {
		studentID := caller.UserID
		req.StudentID = &studentID
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /bookings - Slot conflict: instructor_id=%d, date=%s, time=%s",
				req.InstructorID, req.Date, req.Time)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, createBooking.ErrBookingInPast):
			handlers.RespondBadRequest(w, msgBookingInPast)

		case errors.Is(err, createBooking.ErrInstructorNotFound):
			handlers.RespondNotFound(w, msgInstructorNotFound)

		case errors.Is(err, createBooking.ErrNotInstructor):
			handlers.RespondBadRequest(w, msgNotInstructor)

		case errors.Is(err, createBooking.ErrStudentNotFound):
			handlers.RespondNotFound(w, msgStudentNotFound)

		case errors.Is(err, createBooking.ErrCourseNotFound):
			handlers.RespondNotFound(w, msgCourseNotFound)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: instructor_id=%d, error=%v",
				req.InstructorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, instructor_id=%d",
		result.Booking.ID, result.Booking.InstructorID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
