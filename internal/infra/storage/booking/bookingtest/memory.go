// Package bookingtest содержит in-memory реализацию хранилища бронирований для тестов
package bookingtest

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/storage/booking"
)

// Memory хранилище бронирований в памяти с той же семантикой, что и booking.Repository.
// Уникальность (instructor, date, time) для активных бронирований проверяется как частичный индекс.
type Memory struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*domain.Booking

	// Now время для created_at при вставке
	Now func() time.Time
}

// NewMemory создает пустое хранилище
func NewMemory() *Memory {
	return &Memory{
		bookings: make(map[int64]*domain.Booking),
		Now:      time.Now,
	}
}

// Seed добавляет бронирования как есть, сохраняя их ID
func (m *Memory) Seed(bookings ...*domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range bookings {
		cp := *b
		m.bookings[b.ID] = &cp
		if b.ID > m.nextID {
			m.nextID = b.ID
		}
	}
}

// Get возвращает копию бронирования без ошибок (для проверок в тестах)
func (m *Memory) Get(id int64) *domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

// Len количество бронирований
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

// LockInstructor ничего не делает, сериализация обеспечивается транзакцией
func (m *Memory) LockInstructor(context.Context, int64) error {
	return nil
}

// Create сохраняет бронирование
func (m *Memory) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b.IsActive() && m.slotTaken(b, 0) {
		return nil, booking.ErrSlotNotAvailable
	}

	m.nextID++
	b.ID = m.nextID
	now := m.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	cp := *b
	m.bookings[b.ID] = &cp
	return b, nil
}

// GetByID получает бронирование по ID
func (m *Memory) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if b := m.Get(id); b != nil {
		return b, nil
	}
	return nil, booking.ErrBookingNotFound
}

// List фильтрует бронирования
func (m *Memory) List(_ context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if matches(b, filter) {
			cp := *b
			result = append(result, &cp)
		}
	}
	domain.SortByDateTime(result)
	return result, nil
}

// GetActiveByInstructorAndDate активные бронирования инструктора на день
func (m *Memory) GetActiveByInstructorAndDate(ctx context.Context, instructorID int64, date time.Time) ([]*domain.Booking, error) {
	return m.List(ctx, domain.BookingsFilter{
		InstructorID: &instructorID,
		DateFrom:     &date,
		DateTo:       &date,
		ActiveOnly:   true,
	})
}

// GetStaleActive активные бронирования, время которых прошло
func (m *Memory) GetStaleActive(_ context.Context, now time.Time) ([]*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if b.IsStale(now) {
			cp := *b
			result = append(result, &cp)
		}
	}
	domain.SortByDateTime(result)
	return result, nil
}

// MarkMissed переводит всё ещё активные бронирования в missed
func (m *Memory) MarkMissed(_ context.Context, ids []int64, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var affected int64
	for _, id := range ids {
		b, ok := m.bookings[id]
		if !ok || !b.IsActive() {
			continue
		}
		b.Status = domain.StatusMissed
		b.UpdatedAt = now
		affected++
	}
	return affected, nil
}

// UpdateFields применяет частичное обновление
func (m *Memory) UpdateFields(_ context.Context, id int64, update *domain.BookingUpdate, now time.Time) (*domain.Booking, error) {
	if update == nil || update.IsEmpty() {
		return nil, booking.ErrEmptyUpdate
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}

	updated := update.ApplyTo(b)
	if updated.IsActive() && m.slotTaken(updated, id) {
		return nil, booking.ErrSlotNotAvailable
	}
	updated.UpdatedAt = now
	m.bookings[id] = updated

	cp := *updated
	return &cp, nil
}

// SumCompleted считает проведенные занятия за период
func (m *Memory) SumCompleted(_ context.Context, instructorID int64, from, to time.Time) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lessons, minutes := 0, 0
	filter := domain.BookingsFilter{InstructorID: &instructorID, DateFrom: &from, DateTo: &to}
	for _, b := range m.bookings {
		if b.Status == domain.StatusCompleted && matches(b, filter) {
			lessons++
			minutes += b.DurationMinutes
		}
	}
	return lessons, minutes, nil
}

// Delete удаляет бронирование
func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookings[id]; !ok {
		return booking.ErrBookingNotFound
	}
	delete(m.bookings, id)
	return nil
}

// slotTaken аналог частичного уникального индекса (instructor_id, booking_date, start_time)
func (m *Memory) slotTaken(b *domain.Booking, excludeID int64) bool {
	for id, existing := range m.bookings {
		if id == excludeID || !existing.IsActive() {
			continue
		}
		if existing.InstructorID == b.InstructorID &&
			sameDay(existing.BookingDate, b.BookingDate) &&
			existing.StartTime == b.StartTime {
			return true
		}
	}
	return false
}

func matches(b *domain.Booking, f domain.BookingsFilter) bool {
	if f.InstructorID != nil && b.InstructorID != *f.InstructorID {
		return false
	}
	if f.StudentID != nil && !b.IsOwnedBy(*f.StudentID) {
		return false
	}
	if f.CourseID != nil && (b.CourseID == nil || *b.CourseID != *f.CourseID) {
		return false
	}
	if f.Status != nil {
		if b.Status != *f.Status {
			return false
		}
	} else if f.ActiveOnly && !b.IsActive() {
		return false
	}
	day := b.BookingDate.Format(domain.DateFormat)
	if f.DateFrom != nil && day < f.DateFrom.Format(domain.DateFormat) {
		return false
	}
	if f.DateTo != nil && day > f.DateTo.Format(domain.DateFormat) {
		return false
	}
	return true
}

func sameDay(a, b time.Time) bool {
	return a.Format(domain.DateFormat) == b.Format(domain.DateFormat)
}
