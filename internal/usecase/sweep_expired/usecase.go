package sweep_expired

import (
	"context"
	"fmt"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/events"
)

// UseCase переводит устаревшие scheduled/in-progress бронирования в missed.
// Проход идемпотентен: повторный вызов ничего не меняет.
type UseCase struct {
	bookingRepo  BookingRepository
	publisher    EventPublisher
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	publisher EventPublisher,
	metrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		publisher:    publisher,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute выполняет один проход
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	now := uc.timeProvider.Now()

	// 1. Ищем активные бронирования, время которых прошло
	stale, err := uc.bookingRepo.GetStaleActive(ctx, now)
	if err != nil {
		uc.logger.Error("SweepExpired: failed to get stale bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get stale bookings: %v", ErrInternal, err)
	}

	if len(stale) == 0 {
		return &Response{SweptAt: now}, nil
	}

	ids := make([]int64, len(stale))
	for i, b := range stale {
		ids[i] = b.ID
	}

	// 2. Переводим в missed (только те, что всё ещё активны)
	swept, err := uc.bookingRepo.MarkMissed(ctx, ids, now)
	if err != nil {
		uc.logger.Error("SweepExpired: failed to mark %d bookings as missed: %v", len(ids), err)
		return nil, fmt.Errorf("%w: failed to mark bookings as missed: %v", ErrInternal, err)
	}

	uc.metrics.AddBookingsSwept(int(swept))
	uc.logger.Info("SweepExpired: %d of %d stale bookings marked as missed", swept, len(stale))

	// 3. Уведомляем. Ошибка публикации не влияет на результат.
	for _, b := range stale {
		b.Status = domain.StatusMissed
		b.UpdatedAt = now
		if err := uc.publisher.Publish(ctx, events.NewBookingEvent(events.BookingMissed, b, now)); err != nil {
			uc.logger.Warn("SweepExpired: failed to publish missed event for booking id=%d: %v", b.ID, err)
		}
	}

	return &Response{Found: len(stale), Swept: int(swept), SweptAt: now}, nil
}
