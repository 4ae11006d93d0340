package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/events"
	bookingRepo "github.com/m04kA/DrivingSchool-BookingService/internal/infra/storage/booking"
	courseClient "github.com/m04kA/DrivingSchool-BookingService/internal/integrations/courseservice"
	userClient "github.com/m04kA/DrivingSchool-BookingService/internal/integrations/userservice"
)

// Defaults значения по умолчанию для новых бронирований
type Defaults struct {
	DurationMinutes int
	Type            domain.LessonType
}

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	sweeper      Sweeper
	userClient   UserServiceClient
	courseClient CourseServiceClient
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      Metrics
	timeProvider TimeProvider
	defaults     Defaults
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	sweeper Sweeper,
	userClient UserServiceClient,
	courseClient CourseServiceClient,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	timeProvider TimeProvider,
	defaults Defaults,
	logger Logger,
) *UseCase {
	if defaults.DurationMinutes <= 0 {
		defaults.DurationMinutes = domain.DefaultDurationMinutes
	}
	if !defaults.Type.IsValid() {
		defaults.Type = domain.DefaultLessonType
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		sweeper:      sweeper,
		userClient:   userClient,
		courseClient: courseClient,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
		timeProvider: timeProvider,
		defaults:     defaults,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка пересечений и вставка выполняются атомарно в сериализуемой транзакции
// под блокировкой расписания инструктора.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateBooking: instructor=%d, date=%s, time=%s",
		req.InstructorID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	if domain.IsPast(req.Date, req.StartTime, now) {
		uc.logger.Warn("CreateBooking: %s %s is in the past", req.Date.Format(domain.DateFormat), req.StartTime)
		return nil, ErrBookingInPast
	}

	// 3. Проверяем участников
	if err := uc.checkParticipants(ctx, req); err != nil {
		return nil, err
	}

	// 4. Собираем бронирование с дефолтами
	booking := uc.buildBooking(req)

	// 5. Переводим устаревшие занятия в missed, чтобы они не занимали слот
	uc.sweep(ctx)

	// 6. Проверка пересечений и вставка в одной сериализуемой транзакции
	var result *domain.Booking
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Блокируем расписание инструктора до конца транзакции
		if err := uc.bookingRepo.LockInstructor(txCtx, booking.InstructorID); err != nil {
			return fmt.Errorf("%w: failed to lock instructor schedule: %v", ErrInternal, err)
		}

		// 6.2. Получаем активные бронирования инструктора на дату, устаревшие не учитываются
		existing, err := uc.bookingRepo.GetActiveByInstructorAndDate(txCtx, booking.InstructorID, booking.BookingDate)
		if err != nil {
			return fmt.Errorf("%w: failed to get existing bookings: %v", ErrInternal, err)
		}

		existing = domain.WithoutStale(existing, now)

		// 6.3. Проверяем пересечения
		conflicts, err := domain.OverlappingBookings(booking.StartTime, booking.DurationMinutes, existing, 0)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if len(conflicts) > 0 {
			uc.logger.Warn("CreateBooking: slot %s %s overlaps booking id=%d",
				booking.BookingDate.Format(domain.DateFormat), booking.StartTime, conflicts[0].ID)
			return ErrSlotConflict
		}

		// 6.4. Создаем бронирование
		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			return err
		}

		result = created
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrSlotConflict), bookingRepo.IsConflictError(err):
			uc.metrics.IncBookingConflicts()
			return nil, ErrSlotConflict
		case errors.Is(err, ErrInvalidInput):
			return nil, err
		case errors.Is(err, ErrInternal):
			uc.logger.Error("CreateBooking: %v", err)
			return nil, err
		default:
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}
	}

	uc.metrics.IncBookingsCreated()
	uc.logger.Info("CreateBooking: booking id=%d created for instructor=%d", result.ID, result.InstructorID)

	// 7. Уведомляем подписчиков
	if err := uc.publisher.Publish(ctx, events.NewBookingEvent(events.BookingCreated, result, now)); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish created event for booking id=%d: %v", result.ID, err)
	}

	return &Response{Booking: result}, nil
}

// sweep запускает проход по устаревшим бронированиям. Ошибка не прерывает создание.
func (uc *UseCase) sweep(ctx context.Context) {
	if uc.sweeper == nil {
		return
	}
	if _, err := uc.sweeper.Execute(ctx); err != nil {
		uc.logger.Warn("CreateBooking: sweep failed, stale bookings are skipped in memory: %v", err)
	}
}

// checkParticipants проверяет инструктора, студента и курс во внешних сервисах
func (uc *UseCase) checkParticipants(ctx context.Context, req *Request) error {
	instructor, err := uc.userClient.GetUser(ctx, req.InstructorID)
	if err != nil {
		if errors.Is(err, userClient.ErrUserNotFound) {
			uc.logger.Warn("CreateBooking: instructor id=%d not found", req.InstructorID)
			return ErrInstructorNotFound
		}
		uc.logger.Error("CreateBooking: failed to get instructor id=%d: %v", req.InstructorID, err)
		return fmt.Errorf("%w: failed to get instructor: %v", ErrInternal, err)
	}
	if !instructor.IsInstructor() {
		uc.logger.Warn("CreateBooking: user id=%d has role %s", req.InstructorID, instructor.Role)
		return ErrNotInstructor
	}

	if req.StudentID != nil {
		if _, err := uc.userClient.GetUser(ctx, *req.StudentID); err != nil {
			if errors.Is(err, userClient.ErrUserNotFound) {
				uc.logger.Warn("CreateBooking: student id=%d not found", *req.StudentID)
				return ErrStudentNotFound
			}
			uc.logger.Error("CreateBooking: failed to get student id=%d: %v", *req.StudentID, err)
			return fmt.Errorf("%w: failed to get student: %v", ErrInternal, err)
		}
	}

	if req.CourseID != nil {
		if _, err := uc.courseClient.GetCourse(ctx, *req.CourseID); err != nil {
			if errors.Is(err, courseClient.ErrCourseNotFound) {
				uc.logger.Warn("CreateBooking: course id=%d not found", *req.CourseID)
				return ErrCourseNotFound
			}
			uc.logger.Error("CreateBooking: failed to get course id=%d: %v", *req.CourseID, err)
			return fmt.Errorf("%w: failed to get course: %v", ErrInternal, err)
		}
	}

	return nil
}

// buildBooking собирает доменную модель из запроса
func (uc *UseCase) buildBooking(req *Request) *domain.Booking {
	duration := uc.defaults.DurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	lessonType := uc.defaults.Type
	if req.Type != nil {
		lessonType = domain.LessonType(*req.Type)
	}

	y, m, d := req.Date.Date()

	return &domain.Booking{
		InstructorID:    req.InstructorID,
		StudentID:       req.StudentID,
		CourseID:        req.CourseID,
		BookingDate:     time.Date(y, m, d, 0, 0, 0, 0, req.Date.Location()),
		StartTime:       req.StartTime,
		DurationMinutes: duration,
		Type:            lessonType,
		Status:          domain.StatusScheduled,
		Notes:           req.Notes,
		Location:        req.Location,
	}
}
