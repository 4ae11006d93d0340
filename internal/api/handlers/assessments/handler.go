package assessments

import (
	"errors"
	"net/http"

	"github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers"
	"github.com/m04kA/DrivingSchool-BookingService/internal/api/middleware"
	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/assessments"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/assessments/models"
)

const (
	msgInvalidAssessmentID = "некорректный ID задания"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidParams       = "некорректные параметры фильтра"
	msgInvalidData         = "некорректные данные задания"
	msgMissingCaller       = "не удалось определить пользователя"
	msgNotFound            = "задание не найдено"
	msgStudentNotFound     = "студент не найден"
	msgForbidden           = "недостаточно прав для операции с заданием"
	msgIllegalStatus       = "операция недоступна в текущем статусе задания"
	msgInvalidScore        = "оценка должна быть в диапазоне от 0 до максимального балла"
	msgDeleted             = "задание удалено"
)

// Handler обработчики /api/assessments
type Handler struct {
	service AssessmentService
	logger  Logger
}

func NewHandler(service AssessmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/assessments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req models.CreateAssessmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.Info("POST /assessments - Assessment created: id=%d, student_id=%d", result.ID, result.StudentID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// List GET /api/assessments
// Query params: studentId, instructorId, courseId, status
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	req, err := toListRequest(r)
	if err != nil {
		h.logger.Warn("GET /assessments - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.List(r.Context(), caller, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Assessments)
}

// Get GET /api/assessments/{assessmentId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetByID(r.Context(), caller, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Update PUT /api/assessments/{assessmentId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var req models.UpdateAssessmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Update(r.Context(), caller, id, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Complete POST /api/assessments/{assessmentId}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	result, err := h.service.MarkCompleted(r.Context(), caller, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.Info("POST /assessments/{id}/complete - Assessment completed: id=%d, student_id=%d", id, caller.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Grade POST /api/assessments/{assessmentId}/grade
func (h *Handler) Grade(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var req models.GradeAssessmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Grade(r.Context(), caller, id, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.Info("POST /assessments/{id}/grade - Assessment graded: id=%d", id)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/assessments/{assessmentId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.Info("DELETE /assessments/{id} - Assessment deleted: id=%d", id)
	handlers.RespondMessage(w, http.StatusOK, msgDeleted)
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingCaller)
	}
	return caller, ok
}

func (h *Handler) callerAndID(w http.ResponseWriter, r *http.Request) (domain.Caller, int64, bool) {
	caller, ok := h.caller(w, r)
	if !ok {
		return caller, 0, false
	}

	id, err := handlers.PathInt64(r, "assessmentId")
	if err != nil {
		h.logger.Warn("%s %s - Invalid assessment ID: %v", r.Method, r.URL.Path, err)
		handlers.RespondBadRequest(w, msgInvalidAssessmentID)
		return caller, 0, false
	}

	return caller, id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := handlers.DecodeJSON(r, dst); err != nil {
		h.logger.Warn("%s %s - Invalid request body: %v", r.Method, r.URL.Path, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return false
	}

	if err := handlers.Validate(dst); err != nil {
		h.logger.Warn("%s %s - Validation failed: %v", r.Method, r.URL.Path, err)
		handlers.RespondBadRequest(w, msgInvalidData)
		return false
	}

	return true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, assessments.ErrAssessmentNotFound):
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, assessments.ErrStudentNotFound):
		handlers.RespondNotFound(w, msgStudentNotFound)

	case errors.Is(err, assessments.ErrForbidden):
		h.logger.Warn("%s %s - Forbidden", r.Method, r.URL.Path)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, assessments.ErrIllegalStatus):
		handlers.RespondBadRequest(w, msgIllegalStatus)

	case errors.Is(err, assessments.ErrInvalidScore):
		handlers.RespondBadRequest(w, msgInvalidScore)

	case errors.Is(err, assessments.ErrInvalidInput):
		handlers.RespondBadRequest(w, msgInvalidData)

	default:
		h.logger.Error("%s %s - Failed: %v", r.Method, r.URL.Path, err)
		handlers.RespondInternalError(w)
	}
}
