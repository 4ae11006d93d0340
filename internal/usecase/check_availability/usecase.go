package check_availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
)

// UseCase проверка доступности времени инструктора.
// Рабочие часы здесь не проверяются, учитываются только пересечения с активными бронированиями.
type UseCase struct {
	bookingRepo     BookingRepository
	sweeper         Sweeper
	scheduleClient  ScheduleServiceClient
	metrics         Metrics
	timeProvider    TimeProvider
	defaultDuration int
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	sweeper Sweeper,
	scheduleClient ScheduleServiceClient,
	metrics Metrics,
	timeProvider TimeProvider,
	defaultDuration int,
	logger Logger,
) *UseCase {
	if defaultDuration <= 0 {
		defaultDuration = domain.DefaultDurationMinutes
	}
	return &UseCase{
		bookingRepo:     bookingRepo,
		sweeper:         sweeper,
		scheduleClient:  scheduleClient,
		metrics:         metrics,
		timeProvider:    timeProvider,
		defaultDuration: defaultDuration,
		logger:          logger,
	}
}

// Execute проверяет, можно ли забронировать слот
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CheckAvailability: validation failed: %v", err)
		return nil, err
	}

	duration := uc.defaultDuration
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	// 2. Убираем устаревшие бронирования, чтобы они не блокировали слот
	uc.sweep(ctx)

	// 3. Получаем активные бронирования инструктора на дату
	bookings, err := uc.bookingRepo.GetActiveByInstructorAndDate(ctx, req.InstructorID, req.Date)
	if err != nil {
		uc.logger.Error("CheckAvailability: failed to get bookings for instructor=%d date=%s: %v",
			req.InstructorID, req.Date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 4. Ищем пересечения
	conflicts, err := domain.OverlappingBookings(req.StartTime, duration, bookings, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	available := len(conflicts) == 0
	uc.metrics.ObserveAvailabilityCheck(available)

	uc.logger.Info("CheckAvailability: instructor=%d date=%s time=%s duration=%d available=%t",
		req.InstructorID, req.Date.Format(domain.DateFormat), req.StartTime, duration, available)

	return &Response{Available: available, Conflicts: conflicts}, nil
}

// Summary возвращает занятость инструктора на день и слоты внутри рабочих часов.
// Если ScheduleService недоступен, возвращаются только бронирования.
func (uc *UseCase) Summary(ctx context.Context, instructorID int64, date time.Time) (*domain.DayAvailability, error) {
	if instructorID <= 0 {
		return nil, fmt.Errorf("%w: instructorId must be positive", ErrInvalidInput)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	// 1. Убираем устаревшие бронирования
	uc.sweep(ctx)

	// 2. Бронирования дня
	bookings, err := uc.bookingRepo.GetActiveByInstructorAndDate(ctx, instructorID, date)
	if err != nil {
		uc.logger.Error("AvailabilitySummary: failed to get bookings for instructor=%d: %v", instructorID, err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}
	domain.SortByDateTime(bookings)

	result := &domain.DayAvailability{
		InstructorID: instructorID,
		Date:         date.Format(domain.DateFormat),
		Bookings:     bookings,
		Slots:        []domain.AvailableSlot{},
	}

	// 3. Рабочие часы (graceful degradation)
	hours, err := uc.workingHours(ctx, instructorID, date)
	if err != nil {
		uc.logger.Warn("AvailabilitySummary: working hours unavailable for instructor=%d: %v", instructorID, err)
		return result, nil
	}
	result.WorkingHours = hours

	// 4. Нарезаем слоты и отмечаем доступность
	slots, err := generateSlots(hours, uc.defaultDuration)
	if err != nil {
		uc.logger.Warn("AvailabilitySummary: failed to generate slots for instructor=%d: %v", instructorID, err)
		return result, nil
	}
	result.Slots = markSlots(slots, uc.defaultDuration, date, bookings, now)

	return result, nil
}

// workingHours получает рабочие часы инструктора на день недели даты
func (uc *UseCase) workingHours(ctx context.Context, instructorID int64, date time.Time) (*domain.DaySchedule, error) {
	if uc.scheduleClient == nil {
		return nil, fmt.Errorf("schedule client is not configured")
	}

	week, err := uc.scheduleClient.GetWorkingHours(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	return week.ForDay(date).ToDomain()
}

// sweep запускает проход по устаревшим бронированиям. Ошибка не прерывает чтение.
func (uc *UseCase) sweep(ctx context.Context) {
	if uc.sweeper == nil {
		return
	}
	if _, err := uc.sweeper.Execute(ctx); err != nil {
		uc.logger.Warn("CheckAvailability: sweep failed, continuing with current data: %v", err)
	}
}
