package create_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/events"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/storage/booking/bookingtest"
	"github.com/m04kA/DrivingSchool-BookingService/internal/integrations/courseservice"
	"github.com/m04kA/DrivingSchool-BookingService/internal/integrations/userservice"
	"github.com/m04kA/DrivingSchool-BookingService/internal/usecase/sweep_expired"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/clock"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/logger"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/metrics"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/ptr"
)

type stubUsers map[int64]*userservice.User

func (s stubUsers) GetUser(_ context.Context, id int64) (*userservice.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, userservice.ErrUserNotFound
}

type stubCourses map[int64]*courseservice.Course

func (s stubCourses) GetCourse(_ context.Context, id int64) (*courseservice.Course, error) {
	if c, ok := s[id]; ok {
		return c, nil
	}
	return nil, courseservice.ErrCourseNotFound
}

// serialTx выполняет транзакции по одной, как advisory lock в Postgres
type serialTx struct {
	mu sync.Mutex
}

func (s *serialTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}

// noTx пропускает блокировку: обе вставки видят пустое расписание
type noTx struct{}

func (noTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

var (
	now   = time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	june1 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
)

type failingSweeper struct{}

func (failingSweeper) Execute(context.Context) (*sweep_expired.Response, error) {
	return nil, errors.New("sweep failed")
}

func newUseCase(store *bookingtest.Memory, tx TransactionManager, pub EventPublisher) *UseCase {
	clk := &clock.Fixed{T: now}
	sweeper := sweep_expired.NewUseCase(store, events.NopPublisher{}, (*metrics.Metrics)(nil), clk, logger.NewNop())
	return newUseCaseWithSweeper(store, sweeper, tx, pub)
}

func newUseCaseWithSweeper(store *bookingtest.Memory, sweeper Sweeper, tx TransactionManager, pub EventPublisher) *UseCase {
	users := stubUsers{
		7:  {ID: 7, Name: "Ivan Petrov", Role: userservice.RoleInstructor},
		42: {ID: 42, Name: "Anna Smirnova", Role: userservice.RoleStudent},
	}
	courses := stubCourses{3: {ID: 3, Title: "Category B"}}
	return NewUseCase(store, sweeper, users, courses, tx, pub, (*metrics.Metrics)(nil),
		&clock.Fixed{T: now}, Defaults{DurationMinutes: 60, Type: domain.LessonPractical}, logger.NewNop())
}

func TestExecute_AppliesDefaults(t *testing.T) {
	store := bookingtest.NewMemory()
	store.Now = func() time.Time { return now }
	pub := &recordingPublisher{}
	uc := newUseCase(store, &serialTx{}, pub)

	resp, err := uc.Execute(context.Background(), &Request{
		InstructorID: 7,
		StudentID:    ptr.Ptr(int64(42)),
		CourseID:     ptr.Ptr(int64(3)),
		Date:         june1,
		StartTime:    "09:00",
	})
	require.NoError(t, err)

	b := resp.Booking
	assert.NotZero(t, b.ID)
	assert.Equal(t, 60, b.DurationMinutes)
	assert.Equal(t, domain.LessonPractical, b.Type)
	assert.Equal(t, domain.StatusScheduled, b.Status)
	assert.Equal(t, now, b.CreatedAt)
	assert.Equal(t, now, b.UpdatedAt)

	stored := store.Get(b.ID)
	require.NotNil(t, stored)
	assert.Equal(t, int64(7), stored.InstructorID)
	assert.Equal(t, int64(42), *stored.StudentID)
	assert.Equal(t, int64(3), *stored.CourseID)
	assert.Equal(t, "2025-06-01", stored.BookingDate.Format(domain.DateFormat))
	assert.Equal(t, "09:00", stored.StartTime.String())

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.BookingCreated, pub.events[0].Type)
}

func TestExecute_ExplicitValues(t *testing.T) {
	store := bookingtest.NewMemory()
	uc := newUseCase(store, &serialTx{}, events.NopPublisher{})

	resp, err := uc.Execute(context.Background(), &Request{
		InstructorID:    7,
		Date:            june1,
		StartTime:       "14:00",
		DurationMinutes: ptr.Ptr(90),
		Type:            ptr.Ptr("theory"),
		Location:        ptr.Ptr("Classroom 2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 90, resp.Booking.DurationMinutes)
	assert.Equal(t, domain.LessonTheory, resp.Booking.Type)
	assert.Nil(t, resp.Booking.StudentID)
	assert.Equal(t, "Classroom 2", *resp.Booking.Location)
}

func TestExecute_OverlapIsConflict(t *testing.T) {
	store := bookingtest.NewMemory()
	store.Seed(&domain.Booking{
		ID: 1, InstructorID: 7, BookingDate: june1, StartTime: "09:00",
		DurationMinutes: 60, Status: domain.StatusScheduled,
	})
	uc := newUseCase(store, &serialTx{}, events.NopPublisher{})

	_, err := uc.Execute(context.Background(), &Request{
		InstructorID: 7, Date: june1, StartTime: "09:30", DurationMinutes: ptr.Ptr(30),
	})
	assert.ErrorIs(t, err, ErrSlotConflict)

	resp, err := uc.Execute(context.Background(), &Request{
		InstructorID: 7, Date: june1, StartTime: "10:00", DurationMinutes: ptr.Ptr(30),
	})
	require.NoError(t, err, "back-to-back booking is allowed")
	assert.NotZero(t, resp.Booking.ID)
}

func TestExecute_CancelledBookingDoesNotBlock(t *testing.T) {
	store := bookingtest.NewMemory()
	store.Seed(&domain.Booking{
		ID: 1, InstructorID: 7, BookingDate: june1, StartTime: "09:00",
		DurationMinutes: 60, Status: domain.StatusCancelled,
	})
	uc := newUseCase(store, &serialTx{}, events.NopPublisher{})

	_, err := uc.Execute(context.Background(), &Request{InstructorID: 7, Date: june1, StartTime: "09:00"})
	assert.NoError(t, err)
}

func TestExecute_ConcurrentIdenticalRequests(t *testing.T) {
	store := bookingtest.NewMemory()
	uc := newUseCase(store, &serialTx{}, events.NopPublisher{})

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), &Request{
				InstructorID: 7, Date: june1, StartTime: "09:00", DurationMinutes: ptr.Ptr(60),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.Len())
}

func TestExecute_UniqueIndexBackstop(t *testing.T) {
	// Без блокировки обе транзакции видят пустое расписание, вторую вставку отклоняет индекс
	store := bookingtest.NewMemory()
	uc := newUseCase(store, noTx{}, events.NopPublisher{})

	_, err := uc.Execute(context.Background(), &Request{InstructorID: 7, Date: june1, StartTime: "09:00"})
	require.NoError(t, err)

	racing := &racingRepo{Memory: store}
	uc.bookingRepo = racing
	_, err = uc.Execute(context.Background(), &Request{InstructorID: 7, Date: june1, StartTime: "09:00"})
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, 1, store.Len())
}

// racingRepo скрывает существующие бронирования, имитируя чтение до чужого коммита
type racingRepo struct {
	*bookingtest.Memory
}

func (r *racingRepo) GetActiveByInstructorAndDate(context.Context, int64, time.Time) ([]*domain.Booking, error) {
	return nil, nil
}

func TestExecute_Participants(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{
			name:    "unknown instructor",
			req:     &Request{InstructorID: 99, Date: june1, StartTime: "09:00"},
			wantErr: ErrInstructorNotFound,
		},
		{
			name:    "student as instructor",
			req:     &Request{InstructorID: 42, Date: june1, StartTime: "09:00"},
			wantErr: ErrNotInstructor,
		},
		{
			name:    "unknown student",
			req:     &Request{InstructorID: 7, StudentID: ptr.Ptr(int64(100)), Date: june1, StartTime: "09:00"},
			wantErr: ErrStudentNotFound,
		},
		{
			name:    "unknown course",
			req:     &Request{InstructorID: 7, CourseID: ptr.Ptr(int64(100)), Date: june1, StartTime: "09:00"},
			wantErr: ErrCourseNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := bookingtest.NewMemory()
			_, err := newUseCase(store, &serialTx{}, events.NopPublisher{}).Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, store.Len())
		})
	}
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
	}{
		{name: "missing instructor", req: &Request{Date: june1, StartTime: "09:00"}},
		{name: "missing date", req: &Request{InstructorID: 7, StartTime: "09:00"}},
		{name: "missing time", req: &Request{InstructorID: 7, Date: june1}},
		{name: "unpadded time", req: &Request{InstructorID: 7, Date: june1, StartTime: "9:5"}},
		{name: "hour out of range", req: &Request{InstructorID: 7, Date: june1, StartTime: "24:00"}},
		{name: "negative duration", req: &Request{InstructorID: 7, Date: june1, StartTime: "09:00", DurationMinutes: ptr.Ptr(-30)}},
		{name: "unknown type", req: &Request{InstructorID: 7, Date: june1, StartTime: "09:00", Type: ptr.Ptr("driving")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newUseCase(bookingtest.NewMemory(), &serialTx{}, events.NopPublisher{}).Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_PastSlotRejected(t *testing.T) {
	uc := newUseCase(bookingtest.NewMemory(), &serialTx{}, events.NopPublisher{})

	yesterday := now.AddDate(0, 0, -1)
	_, err := uc.Execute(context.Background(), &Request{InstructorID: 7, Date: yesterday, StartTime: "15:00"})
	assert.ErrorIs(t, err, ErrBookingInPast)

	// сегодня, но позже текущего времени
	_, err = uc.Execute(context.Background(), &Request{InstructorID: 7, Date: now, StartTime: "13:00"})
	assert.NoError(t, err)
}

func staleLesson() *domain.Booking {
	return &domain.Booking{
		ID:              5,
		InstructorID:    7,
		BookingDate:     time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC),
		StartTime:       "11:00",
		DurationMinutes: 90,
		Type:            domain.LessonPractical,
		Status:          domain.StatusScheduled,
	}
}

func TestExecute_StaleLessonDoesNotBlockSlot(t *testing.T) {
	store := bookingtest.NewMemory()
	store.Seed(staleLesson())
	uc := newUseCase(store, &serialTx{}, events.NopPublisher{})

	// 11:00-12:30 началось в прошлом, хвост пересекает 12:00
	resp, err := uc.Execute(context.Background(), &Request{InstructorID: 7, Date: now, StartTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, "12:00", resp.Booking.StartTime.String())
	assert.Equal(t, domain.StatusMissed, store.Get(5).Status)
}

func TestExecute_StaleLessonIgnoredWhenSweepFails(t *testing.T) {
	store := bookingtest.NewMemory()
	store.Seed(staleLesson())
	uc := newUseCaseWithSweeper(store, failingSweeper{}, &serialTx{}, events.NopPublisher{})

	_, err := uc.Execute(context.Background(), &Request{InstructorID: 7, Date: now, StartTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, store.Get(5).Status)
}

type failingTx struct{}

func (failingTx) DoSerializable(context.Context, func(ctx context.Context) error) error {
	return errors.New("connection reset")
}

func TestExecute_TransactionFailure(t *testing.T) {
	uc := newUseCase(bookingtest.NewMemory(), failingTx{}, events.NopPublisher{})

	_, err := uc.Execute(context.Background(), &Request{InstructorID: 7, Date: june1, StartTime: "09:00"})
	assert.ErrorIs(t, err, ErrInternal)
}
