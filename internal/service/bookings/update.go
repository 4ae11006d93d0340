package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/events"
	bookingRepo "github.com/m04kA/DrivingSchool-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
)

// UpdateByID частично обновляет бронирование от имени caller.
// Студент может только отменить своё бронирование.
// Инструктор и администратор могут менять любые поля, смена статуса проверяется по переходам.
// Перенос активного занятия повторно проверяет пересечения в транзакции.
func (s *Service) UpdateByID(ctx context.Context, id int64, caller domain.Caller, req *models.UpdateBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateByID: booking id=%d by user=%d role=%s", id, caller.UserID, caller.Role)

	update, err := req.ToDomainUpdate()
	if err != nil {
		s.logger.Warn("UpdateByID: invalid request for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if update.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	// 1. Получаем текущее состояние
	booking, err := s.getBooking(ctx, "UpdateByID", id)
	if err != nil {
		return nil, err
	}

	// 2. Проверяем права
	if !caller.IsStaff() {
		if !caller.IsStudent() || !update.OnlyCancels() || !booking.IsOwnedBy(caller.UserID) {
			s.logger.Warn("UpdateByID: user=%d role=%s is not allowed to update booking id=%d",
				caller.UserID, caller.Role, id)
			return nil, ErrForbiddenUpdate
		}
	}

	// 3. Проверяем переход статуса. Тот же статус - не изменение.
	if update.Status != nil {
		if *update.Status == booking.Status {
			update.Status = nil
		} else if !booking.Status.CanTransitionTo(*update.Status) {
			s.logger.Warn("UpdateByID: illegal transition %s -> %s for booking id=%d", booking.Status, *update.Status, id)
			return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, booking.Status, *update.Status)
		}
	}

	updated := update.ApplyTo(booking)

	// 4. Посещаемость только для начатых занятий
	if update.Attendance != nil && !updated.CanRecordAttendance() {
		return nil, fmt.Errorf("%w: status %s", ErrAttendanceNotAllowed, updated.Status)
	}

	if update.IsEmpty() {
		return s.respond(ctx, booking), nil
	}

	now := s.timeProvider.Now()

	// 5. Сохраняем. Перенос активного занятия проверяем на пересечения атомарно.
	var saved *domain.Booking
	if update.ChangesSchedule() && updated.IsActive() {
		saved, err = s.reschedule(ctx, id, updated, update, now)
	} else {
		saved, err = s.bookingRepo.UpdateFields(ctx, id, update, now)
	}
	if err != nil {
		return nil, s.mapSaveError("UpdateByID", id, err)
	}

	s.logger.Info("UpdateByID: booking id=%d updated, status=%s", id, saved.Status)

	if update.Status != nil {
		s.publishStatusChange(ctx, saved)
	}

	return s.respond(ctx, saved), nil
}

// reschedule переносит занятие под блокировкой расписания инструктора.
// Устаревшие занятия пропускаются в памяти: sweep здесь мог бы перевести в missed само переносимое занятие.
func (s *Service) reschedule(ctx context.Context, id int64, target *domain.Booking, update *domain.BookingUpdate, now time.Time) (*domain.Booking, error) {
	var saved *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.LockInstructor(txCtx, target.InstructorID); err != nil {
			return err
		}

		existing, err := s.bookingRepo.GetActiveByInstructorAndDate(txCtx, target.InstructorID, target.BookingDate)
		if err != nil {
			return err
		}
		existing = domain.WithoutStale(existing, now)

		conflicts, err := domain.OverlappingBookings(target.StartTime, target.DurationMinutes, existing, id)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if len(conflicts) > 0 {
			s.logger.Warn("UpdateByID: booking id=%d overlaps booking id=%d", id, conflicts[0].ID)
			return ErrSlotConflict
		}

		saved, err = s.bookingRepo.UpdateFields(txCtx, id, update, now)
		return err
	})

	return saved, err
}

// UpdateAttendance отмечает посещаемость. Статус не меняется.
func (s *Service) UpdateAttendance(ctx context.Context, id int64, caller domain.Caller, req *models.UpdateAttendanceRequest) (*models.BookingResponse, error) {
	if !caller.IsStaff() {
		return nil, ErrForbiddenUpdate
	}

	attendance, err := models.ToDomainAttendance(req.Attendance)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	booking, err := s.getBooking(ctx, "UpdateAttendance", id)
	if err != nil {
		return nil, err
	}

	if !booking.CanRecordAttendance() {
		s.logger.Warn("UpdateAttendance: booking id=%d has status %s", id, booking.Status)
		return nil, fmt.Errorf("%w: status %s", ErrAttendanceNotAllowed, booking.Status)
	}

	saved, err := s.bookingRepo.UpdateFields(ctx, id, &domain.BookingUpdate{Attendance: &attendance}, s.timeProvider.Now())
	if err != nil {
		return nil, s.mapSaveError("UpdateAttendance", id, err)
	}

	s.logger.Info("UpdateAttendance: booking id=%d attendance=%s", id, attendance)
	return s.respond(ctx, saved), nil
}

// Complete завершает занятие. Допустимо из scheduled и in-progress.
// Посещаемость по умолчанию attended.
func (s *Service) Complete(ctx context.Context, id int64, caller domain.Caller, req *models.CompleteBookingRequest) (*models.BookingResponse, error) {
	if !caller.IsStaff() {
		return nil, ErrForbiddenUpdate
	}

	attendance := domain.AttendanceAttended
	if req != nil && req.Attendance != nil {
		parsed, err := models.ToDomainAttendance(*req.Attendance)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		attendance = parsed
	}

	booking, err := s.getBooking(ctx, "Complete", id)
	if err != nil {
		return nil, err
	}

	if !booking.CanBeCompleted() {
		s.logger.Warn("Complete: booking id=%d has status %s", id, booking.Status)
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, booking.Status, domain.StatusCompleted)
	}

	status := domain.StatusCompleted
	update := &domain.BookingUpdate{Status: &status, Attendance: &attendance}
	if req != nil {
		update.Notes = req.Notes
	}

	saved, err := s.bookingRepo.UpdateFields(ctx, id, update, s.timeProvider.Now())
	if err != nil {
		return nil, s.mapSaveError("Complete", id, err)
	}

	s.logger.Info("Complete: booking id=%d completed, attendance=%s", id, attendance)
	s.publishStatusChange(ctx, saved)

	return s.respond(ctx, saved), nil
}

// DeleteByID физически удаляет бронирование
func (s *Service) DeleteByID(ctx context.Context, id int64, caller domain.Caller) error {
	if !caller.IsStaff() {
		return ErrForbiddenUpdate
	}

	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("DeleteByID: booking id=%d not found", id)
			return ErrBookingNotFound
		}
		s.logger.Error("DeleteByID: repository error for booking id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteByID - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteByID: booking id=%d deleted by user=%d", id, caller.UserID)
	return nil
}

// mapSaveError переводит ошибки сохранения в ошибки сервиса
func (s *Service) mapSaveError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, ErrSlotConflict), bookingRepo.IsConflictError(err):
		return ErrSlotConflict
	case errors.Is(err, ErrInvalidInput):
		return err
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		return ErrBookingNotFound
	default:
		s.logger.Error("%s: failed to save booking id=%d: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

// publishStatusChange публикует событие о смене статуса. Ошибка только логируется.
func (s *Service) publishStatusChange(ctx context.Context, b *domain.Booking) {
	var eventType events.EventType
	switch b.Status {
	case domain.StatusCancelled:
		eventType = events.BookingCancelled
	case domain.StatusCompleted:
		eventType = events.BookingCompleted
	case domain.StatusMissed:
		eventType = events.BookingMissed
	default:
		return
	}

	if err := s.publisher.Publish(ctx, events.NewBookingEvent(eventType, b, s.timeProvider.Now())); err != nil {
		s.logger.Warn("failed to publish %s for booking id=%d: %v", eventType, b.ID, err)
	}
}
