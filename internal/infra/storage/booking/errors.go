package booking

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotNotAvailable возвращается, когда слот уже занят (нарушение уникального индекса
	// или конфликт сериализации)
	ErrSlotNotAvailable = errors.New("booking.repository: slot not available")

	// ErrNotInTransaction возвращается, если операция требует активной транзакции
	ErrNotInTransaction = errors.New("booking.repository: transaction required")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")

	// ErrEmptyUpdate возвращается, если в обновлении нет ни одного поля
	ErrEmptyUpdate = errors.New("booking.repository: nothing to update")
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// IsConflictError возвращает true, если ошибка означает занятый слот:
// нарушение уникального индекса активных бронирований или конфликт сериализуемой транзакции
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSlotNotAvailable) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
			return true
		}
	}
	return false
}
