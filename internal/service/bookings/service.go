package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/DrivingSchool-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/clock"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	sweeper      Sweeper
	userClient   UserServiceClient
	courseClient CourseServiceClient
	txManager    TransactionManager
	publisher    EventPublisher
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	sweeper Sweeper,
	userClient UserServiceClient,
	courseClient CourseServiceClient,
	txManager TransactionManager,
	publisher EventPublisher,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		sweeper:      sweeper,
		userClient:   userClient,
		courseClient: courseClient,
		txManager:    txManager,
		publisher:    publisher,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID с именами участников
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	return s.respond(ctx, booking), nil
}

// List получает бронирования по фильтру
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d bookings", len(bookings))
	return s.enrich(ctx, bookings), nil
}

// GetInstructorBookings получает все бронирования инструктора
func (s *Service) GetInstructorBookings(ctx context.Context, instructorID int64) (*models.BookingListResponse, error) {
	if instructorID <= 0 {
		return nil, fmt.Errorf("%w: instructorId must be positive", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.List(ctx, domain.BookingsFilter{InstructorID: &instructorID})
	if err != nil {
		s.logger.Error("GetInstructorBookings: repository error for instructor=%d: %v", instructorID, err)
		return nil, fmt.Errorf("%w: GetInstructorBookings - repository error: %v", ErrInternal, err)
	}

	return s.enrich(ctx, bookings), nil
}

// GetInstructorBookingsForDate получает активные бронирования инструктора на день, по времени начала
func (s *Service) GetInstructorBookingsForDate(ctx context.Context, instructorID int64, date time.Time) (*models.BookingListResponse, error) {
	if instructorID <= 0 {
		return nil, fmt.Errorf("%w: instructorId must be positive", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetActiveByInstructorAndDate(ctx, instructorID, date)
	if err != nil {
		s.logger.Error("GetInstructorBookingsForDate: repository error for instructor=%d: %v", instructorID, err)
		return nil, fmt.Errorf("%w: GetInstructorBookingsForDate - repository error: %v", ErrInternal, err)
	}
	domain.SortByDateTime(bookings)

	return s.enrich(ctx, bookings), nil
}

// GetUpcomingForInstructor возвращает предстоящие занятия инструктора.
// Перед чтением устаревшие бронирования переводятся в missed.
// Занятие считается предстоящим, если его начало не раньше текущего момента.
func (s *Service) GetUpcomingForInstructor(ctx context.Context, instructorID int64) (*models.BookingListResponse, error) {
	if instructorID <= 0 {
		return nil, fmt.Errorf("%w: instructorId must be positive", ErrInvalidInput)
	}

	s.sweep(ctx)

	now := s.timeProvider.Now()
	today := clock.StartOfDay(now)
	bookings, err := s.bookingRepo.List(ctx, domain.BookingsFilter{
		InstructorID: &instructorID,
		DateFrom:     &today,
		ActiveOnly:   true,
	})
	if err != nil {
		s.logger.Error("GetUpcomingForInstructor: repository error for instructor=%d: %v", instructorID, err)
		return nil, fmt.Errorf("%w: GetUpcomingForInstructor - repository error: %v", ErrInternal, err)
	}

	upcoming := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if !b.IsPast(now) {
			upcoming = append(upcoming, b)
		}
	}
	domain.SortByDateTime(upcoming)

	return s.enrich(ctx, upcoming), nil
}

// GetUpcomingForStudent возвращает предстоящие занятия студента начиная с сегодняшнего дня.
// Перед чтением устаревшие бронирования переводятся в missed.
func (s *Service) GetUpcomingForStudent(ctx context.Context, studentID int64) (*models.BookingListResponse, error) {
	if studentID <= 0 {
		return nil, fmt.Errorf("%w: studentId must be positive", ErrInvalidInput)
	}

	s.sweep(ctx)

	today := clock.StartOfDay(s.timeProvider.Now())
	bookings, err := s.bookingRepo.List(ctx, domain.BookingsFilter{
		StudentID:  &studentID,
		DateFrom:   &today,
		ActiveOnly: true,
	})
	if err != nil {
		s.logger.Error("GetUpcomingForStudent: repository error for student=%d: %v", studentID, err)
		return nil, fmt.Errorf("%w: GetUpcomingForStudent - repository error: %v", ErrInternal, err)
	}
	domain.SortByDateTime(bookings)

	return s.enrich(ctx, bookings), nil
}

// GetMonthlyHours считает проведенные инструктором занятия за текущий месяц
func (s *Service) GetMonthlyHours(ctx context.Context, instructorID int64) (*models.MonthlyHoursResponse, error) {
	if instructorID <= 0 {
		return nil, fmt.Errorf("%w: instructorId must be positive", ErrInvalidInput)
	}

	now := s.timeProvider.Now()
	first, last := clock.MonthBounds(now)

	lessons, minutes, err := s.bookingRepo.SumCompleted(ctx, instructorID, first, last)
	if err != nil {
		s.logger.Error("GetMonthlyHours: repository error for instructor=%d: %v", instructorID, err)
		return nil, fmt.Errorf("%w: GetMonthlyHours - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainMonthlyHours(&domain.MonthlyHours{
		InstructorID: instructorID,
		Month:        now.Format(domain.MonthFormat),
		Lessons:      lessons,
		TotalMinutes: minutes,
	}), nil
}

// getBooking получает бронирование и переводит ошибки репозитория в ошибки сервиса
func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// sweep запускает проход по устаревшим бронированиям. Ошибка не прерывает чтение.
func (s *Service) sweep(ctx context.Context) {
	if s.sweeper == nil {
		return
	}
	if _, err := s.sweeper.Execute(ctx); err != nil {
		s.logger.Warn("sweep failed, continuing with current data: %v", err)
	}
}
