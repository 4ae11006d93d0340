package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrInvalidField возвращается при некорректном значении поля
	ErrInvalidField = errors.New("invalid field value")
)

// Request модели

// ListBookingsRequest фильтр списка бронирований (query-параметры)
type ListBookingsRequest struct {
	InstructorID *int64
	StudentID    *int64
	CourseID     *int64
	Status       *string
	DateFrom     *string // "2025-06-01"
	DateTo       *string
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		InstructorID: r.InstructorID,
		StudentID:    r.StudentID,
		CourseID:     r.CourseID,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	if r.DateFrom != nil {
		from, err := ParseDate(*r.DateFrom)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &from
	}

	if r.DateTo != nil {
		to, err := ParseDate(*r.DateTo)
		if err != nil {
			return filter, err
		}
		filter.DateTo = &to
	}

	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return filter, fmt.Errorf("%w: dateTo is before dateFrom", ErrInvalidField)
	}

	return filter, nil
}

// UpdateBookingRequest частичное обновление бронирования. Отсутствующие поля не меняются.
type UpdateBookingRequest struct {
	InstructorID *int64  `json:"instructorId,omitempty"`
	StudentID    *int64  `json:"studentId,omitempty"`
	CourseID     *int64  `json:"courseId,omitempty"`
	Date         *string `json:"date,omitempty"`
	Time         *string `json:"time,omitempty"`
	Duration     *int    `json:"duration,omitempty"`
	Type         *string `json:"type,omitempty"`
	Status       *string `json:"status,omitempty"`
	Attendance   *string `json:"attendance,omitempty"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Location     *string `json:"location,omitempty" validate:"omitempty,max=255"`
}

// ToDomainUpdate конвертирует request в domain обновление с проверкой форматов
func (r *UpdateBookingRequest) ToDomainUpdate() (*domain.BookingUpdate, error) {
	update := &domain.BookingUpdate{
		InstructorID: r.InstructorID,
		StudentID:    r.StudentID,
		CourseID:     r.CourseID,
		Notes:        r.Notes,
		Location:     r.Location,
	}

	if r.InstructorID != nil && *r.InstructorID <= 0 {
		return nil, fmt.Errorf("%w: instructorId must be positive", ErrInvalidField)
	}

	if r.Date != nil {
		date, err := ParseDate(*r.Date)
		if err != nil {
			return nil, err
		}
		update.BookingDate = &date
	}

	if r.Time != nil {
		start, err := types.NewTimeStringFromString(*r.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: time: %v", ErrInvalidField, err)
		}
		update.StartTime = &start
	}

	if r.Duration != nil {
		if *r.Duration <= 0 || *r.Duration > domain.MaxDurationMinutes {
			return nil, fmt.Errorf("%w: duration must be between 1 and %d", ErrInvalidField, domain.MaxDurationMinutes)
		}
		update.DurationMinutes = r.Duration
	}

	if r.Type != nil {
		lessonType := domain.LessonType(*r.Type)
		if !lessonType.IsValid() {
			return nil, fmt.Errorf("%w: type %q", ErrInvalidField, *r.Type)
		}
		update.Type = &lessonType
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return nil, err
		}
		update.Status = &status
	}

	if r.Attendance != nil {
		attendance, err := ToDomainAttendance(*r.Attendance)
		if err != nil {
			return nil, err
		}
		update.Attendance = &attendance
	}

	return update, nil
}

// CompleteBookingRequest запрос на завершение занятия
type CompleteBookingRequest struct {
	Attendance *string `json:"attendance,omitempty"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// UpdateAttendanceRequest запрос на отметку посещаемости
type UpdateAttendanceRequest struct {
	Attendance string `json:"attendance" validate:"required"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID             int64   `json:"id"`
	InstructorID   int64   `json:"instructorId"`
	InstructorName *string `json:"instructorName,omitempty"`
	StudentID      *int64  `json:"studentId,omitempty"`
	StudentName    *string `json:"studentName,omitempty"`
	CourseID       *int64  `json:"courseId,omitempty"`
	CourseTitle    *string `json:"courseTitle,omitempty"`
	Date           string  `json:"date"` // "2025-06-01"
	Time           string  `json:"time"` // "09:00"
	Duration       int     `json:"duration"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	Attendance     *string `json:"attendance,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	Location       *string `json:"location,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// MonthlyHoursResponse часы инструктора за месяц
type MonthlyHoursResponse struct {
	InstructorID int64   `json:"instructorId"`
	Month        string  `json:"month"` // "2025-06"
	Lessons      int     `json:"lessons"`
	TotalMinutes int     `json:"totalMinutes"`
	Hours        float64 `json:"hours"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:           b.ID,
		InstructorID: b.InstructorID,
		StudentID:    b.StudentID,
		CourseID:     b.CourseID,
		Date:         b.BookingDate.Format(domain.DateFormat),
		Time:         b.StartTime.String(),
		Duration:     b.DurationMinutes,
		Type:         string(b.Type),
		Status:       string(b.Status),
		Notes:        b.Notes,
		Location:     b.Location,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}

	if b.Attendance != nil {
		attendance := string(*b.Attendance)
		resp.Attendance = &attendance
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}
	resp.Total = len(resp.Bookings)

	return resp
}

// FromDomainMonthlyHours конвертирует агрегат часов в DTO
func FromDomainMonthlyHours(m *domain.MonthlyHours) *MonthlyHoursResponse {
	return &MonthlyHoursResponse{
		InstructorID: m.InstructorID,
		Month:        m.Month,
		Lessons:      m.Lessons,
		TotalMinutes: m.TotalMinutes,
		Hours:        m.Hours(),
	}
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s, nil
}

// ToDomainAttendance конвертирует строку в domain.Attendance с валидацией
func ToDomainAttendance(attendance string) (domain.Attendance, error) {
	a := domain.Attendance(attendance)
	if !a.IsValid() {
		return "", fmt.Errorf("%w: attendance %q", ErrInvalidField, attendance)
	}
	return a, nil
}

// ParseDate разбирает дату в формате YYYY-MM-DD
func ParseDate(value string) (time.Time, error) {
	date, err := time.Parse(domain.DateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return date, nil
}
