package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrForbiddenUpdate возвращается, когда у пользователя нет прав на изменение
	ErrForbiddenUpdate = errors.New("update is not allowed for this user")

	// ErrIllegalTransition возвращается при недопустимой смене статуса
	ErrIllegalTransition = errors.New("illegal booking status transition")

	// ErrAttendanceNotAllowed возвращается, если посещаемость нельзя отметить в текущем статусе
	ErrAttendanceNotAllowed = errors.New("attendance can only be set for started lessons")

	// ErrSlotConflict возвращается, когда новое время пересекается с другим бронированием
	ErrSlotConflict = errors.New("time slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
