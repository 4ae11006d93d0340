package create_booking

import "errors"

var (
	// ErrInstructorNotFound возвращается, когда инструктор не найден
	ErrInstructorNotFound = errors.New("instructor not found")

	// ErrNotInstructor возвращается, когда пользователь не является инструктором
	ErrNotInstructor = errors.New("user is not an instructor")

	// ErrStudentNotFound возвращается, когда студент не найден
	ErrStudentNotFound = errors.New("student not found")

	// ErrCourseNotFound возвращается, когда курс не найден
	ErrCourseNotFound = errors.New("course not found")

	// ErrSlotConflict возвращается, когда время инструктора уже занято
	ErrSlotConflict = errors.New("time slot is not available")

	// ErrBookingInPast возвращается при попытке забронировать прошедшее время
	ErrBookingInPast = errors.New("booking time is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
