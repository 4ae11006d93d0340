package sweep_expired

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/events"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/storage/booking/bookingtest"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/clock"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/logger"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/metrics"
)

type recordingPublisher struct {
	events []events.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.BookingEvent) error {
	p.events = append(p.events, event)
	return p.err
}

type failingRepo struct{}

func (failingRepo) GetStaleActive(context.Context, time.Time) ([]*domain.Booking, error) {
	return nil, errors.New("connection refused")
}

func (failingRepo) MarkMissed(context.Context, []int64, time.Time) (int64, error) {
	return 0, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newUseCase(repo BookingRepository, pub EventPublisher, now time.Time) *UseCase {
	return NewUseCase(repo, pub, (*metrics.Metrics)(nil), &clock.Fixed{T: now}, logger.NewNop())
}

func TestExecute_MarksYesterdayScheduledAsMissed(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	store := bookingtest.NewMemory()
	store.Seed(&domain.Booking{
		ID: 1, InstructorID: 7, BookingDate: date(2025, 6, 1), StartTime: "15:00",
		DurationMinutes: 60, Type: domain.LessonPractical, Status: domain.StatusScheduled,
	})
	pub := &recordingPublisher{}

	resp, err := newUseCase(store, pub, now).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Swept)
	assert.Equal(t, domain.StatusMissed, store.Get(1).Status)
	assert.Equal(t, now, store.Get(1).UpdatedAt)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.BookingMissed, pub.events[0].Type)
}

func TestExecute_TodayBeforeAndAfterNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := bookingtest.NewMemory()
	store.Seed(
		&domain.Booking{ID: 1, InstructorID: 7, BookingDate: date(2025, 6, 1), StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusScheduled},
		&domain.Booking{ID: 2, InstructorID: 7, BookingDate: date(2025, 6, 1), StartTime: "14:00", DurationMinutes: 60, Status: domain.StatusScheduled},
		// in-progress whose end has not passed yet stays
		&domain.Booking{ID: 3, InstructorID: 8, BookingDate: date(2025, 6, 1), StartTime: "11:30", DurationMinutes: 60, Status: domain.StatusInProgress},
		&domain.Booking{ID: 4, InstructorID: 8, BookingDate: date(2025, 6, 1), StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusInProgress},
		&domain.Booking{ID: 5, InstructorID: 9, BookingDate: date(2025, 5, 1), StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusCompleted},
	)

	resp, err := newUseCase(store, &recordingPublisher{}, now).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Swept)
	assert.Equal(t, domain.StatusMissed, store.Get(1).Status)
	assert.Equal(t, domain.StatusScheduled, store.Get(2).Status)
	assert.Equal(t, domain.StatusInProgress, store.Get(3).Status)
	assert.Equal(t, domain.StatusMissed, store.Get(4).Status)
	assert.Equal(t, domain.StatusCompleted, store.Get(5).Status)
}

func TestExecute_Idempotent(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	store := bookingtest.NewMemory()
	store.Seed(&domain.Booking{ID: 1, InstructorID: 7, BookingDate: date(2025, 6, 1), StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusScheduled})
	uc := newUseCase(store, &recordingPublisher{}, now)

	first, err := uc.Execute(context.Background())
	require.NoError(t, err)
	second, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, first.Swept)
	assert.Equal(t, 0, second.Swept)
	assert.Equal(t, domain.StatusMissed, store.Get(1).Status)
}

func TestExecute_PublishErrorIgnored(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	store := bookingtest.NewMemory()
	store.Seed(&domain.Booking{ID: 1, InstructorID: 7, BookingDate: date(2025, 6, 1), StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusScheduled})

	resp, err := newUseCase(store, &recordingPublisher{err: errors.New("broker down")}, now).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Swept)
}

func TestExecute_RepositoryError(t *testing.T) {
	_, err := newUseCase(failingRepo{}, &recordingPublisher{}, time.Now()).Execute(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
}
