package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе задания
	ErrInvalidStatus = errors.New("invalid assessment status")

	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrInvalidField возвращается при некорректном значении поля
	ErrInvalidField = errors.New("invalid field value")
)

// Request модели

// CreateAssessmentRequest запрос на создание задания
type CreateAssessmentRequest struct {
	StudentID    int64    `json:"studentId" validate:"required,gt=0"`
	InstructorID *int64   `json:"instructorId,omitempty" validate:"omitempty,gt=0"` // по умолчанию вызывающий инструктор
	CourseID     *int64   `json:"courseId,omitempty" validate:"omitempty,gt=0"`
	Title        string   `json:"title" validate:"required,max=255"`
	DueDate      string   `json:"dueDate" validate:"required"` // "2025-06-10"
	MaxScore     *float64 `json:"maxScore,omitempty" validate:"omitempty,gt=0"`
	Feedback     *string  `json:"feedback,omitempty" validate:"omitempty,max=1000"`
}

// ListAssessmentsRequest фильтр списка заданий (query-параметры)
type ListAssessmentsRequest struct {
	StudentID    *int64
	InstructorID *int64
	CourseID     *int64
	Status       *string
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListAssessmentsRequest) ToDomainFilter() (domain.AssessmentsFilter, error) {
	filter := domain.AssessmentsFilter{
		StudentID:    r.StudentID,
		InstructorID: r.InstructorID,
		CourseID:     r.CourseID,
	}

	if r.Status != nil {
		status := domain.AssessmentStatus(*r.Status)
		if !status.IsValid() {
			return filter, fmt.Errorf("%w: %q", ErrInvalidStatus, *r.Status)
		}
		filter.Status = &status
	}

	return filter, nil
}

// UpdateAssessmentRequest частичное обновление задания. Статус и оценка здесь не меняются.
type UpdateAssessmentRequest struct {
	Title    *string  `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	DueDate  *string  `json:"dueDate,omitempty"`
	CourseID *int64   `json:"courseId,omitempty" validate:"omitempty,gt=0"`
	MaxScore *float64 `json:"maxScore,omitempty" validate:"omitempty,gt=0"`
	Feedback *string  `json:"feedback,omitempty" validate:"omitempty,max=1000"`
}

// ToDomainUpdate конвертирует request в domain обновление
func (r *UpdateAssessmentRequest) ToDomainUpdate() (*domain.AssessmentUpdate, error) {
	update := &domain.AssessmentUpdate{
		Title:    r.Title,
		CourseID: r.CourseID,
		MaxScore: r.MaxScore,
		Feedback: r.Feedback,
	}

	if r.DueDate != nil {
		due, err := ParseDate(*r.DueDate)
		if err != nil {
			return nil, err
		}
		update.DueDate = &due
	}

	if update.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidField)
	}

	return update, nil
}

// GradeAssessmentRequest запрос на выставление оценки
type GradeAssessmentRequest struct {
	Score    *float64 `json:"score" validate:"required"`
	MaxScore *float64 `json:"maxScore,omitempty" validate:"omitempty,gt=0"`
	Feedback *string  `json:"feedback,omitempty" validate:"omitempty,max=1000"`
}

// Response модели

// AssessmentResponse ответ с данными задания
type AssessmentResponse struct {
	ID             int64      `json:"id"`
	StudentID      int64      `json:"studentId"`
	InstructorID   int64      `json:"instructorId"`
	CourseID       *int64     `json:"courseId,omitempty"`
	Title          string     `json:"title"`
	DueDate        string     `json:"dueDate"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	Score          *float64   `json:"score,omitempty"`
	MaxScore       float64    `json:"maxScore"`
	Percentage     *float64   `json:"percentage,omitempty"`
	Status         string     `json:"status"`
	Feedback       *string    `json:"feedback,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AssessmentListResponse ответ со списком заданий
type AssessmentListResponse struct {
	Assessments []AssessmentResponse `json:"assessments"`
	Total       int                  `json:"total"`
}

// FromDomainAssessment конвертирует domain модель в DTO
func FromDomainAssessment(a *domain.Assessment) *AssessmentResponse {
	if a == nil {
		return nil
	}

	return &AssessmentResponse{
		ID:             a.ID,
		StudentID:      a.StudentID,
		InstructorID:   a.InstructorID,
		CourseID:       a.CourseID,
		Title:          a.Title,
		DueDate:        a.DueDate.Format(domain.DateFormat),
		CompletionDate: a.CompletionDate,
		Score:          a.Score,
		MaxScore:       a.MaxScore,
		Percentage:     a.Percentage(),
		Status:         string(a.Status),
		Feedback:       a.Feedback,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// FromDomainAssessmentList конвертирует список domain моделей в DTO
func FromDomainAssessmentList(list []*domain.Assessment) *AssessmentListResponse {
	resp := &AssessmentListResponse{
		Assessments: make([]AssessmentResponse, 0, len(list)),
	}

	for _, a := range list {
		if item := FromDomainAssessment(a); item != nil {
			resp.Assessments = append(resp.Assessments, *item)
		}
	}
	resp.Total = len(resp.Assessments)

	return resp
}

// ParseDate разбирает дату в формате YYYY-MM-DD
func ParseDate(value string) (time.Time, error) {
	date, err := time.Parse(domain.DateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return date, nil
}
