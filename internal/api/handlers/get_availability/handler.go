package get_availability

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers"
	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	checkAvailability "github.com/m04kA/DrivingSchool-BookingService/internal/usecase/check_availability"
)

const (
	msgInvalidInstructorID = "некорректный ID инструктора"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase AvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase AvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/bookings/availability/{instructorId}/{date}
// Возвращает занятия инструктора на дату и свободные слоты в рамках рабочих часов
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	instructorID, err := handlers.PathInt64(r, "instructorId")
	if err != nil {
		h.logger.Warn("GET /bookings/availability - Invalid instructor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidInstructorID)
		return
	}

	date, err := time.Parse(domain.DateFormat, mux.Vars(r)["date"])
	if err != nil {
		h.logger.Warn("GET /bookings/availability - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	summary, err := h.useCase.Summary(r.Context(), instructorID, date)
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInstructorID)

		default:
			h.logger.Error("GET /bookings/availability - Failed: instructor_id=%d, date=%s, error=%v",
				instructorID, date.Format(domain.DateFormat), err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomain(summary))
}
