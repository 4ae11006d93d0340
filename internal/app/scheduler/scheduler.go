package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m04kA/DrivingSchool-BookingService/internal/usecase/sweep_expired"
)

// BookingSweeper переводит устаревшие бронирования в missed
type BookingSweeper interface {
	Execute(ctx context.Context) (*sweep_expired.Response, error)
}

// AssessmentSweeper переводит просроченные задания в overdue
type AssessmentSweeper interface {
	SweepOverdue(ctx context.Context) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Таймаут одного прогона фоновых задач
const runTimeout = time.Minute

// Scheduler запускает фоновые sweep-задачи по cron-расписанию
type Scheduler struct {
	cron        *cron.Cron
	bookings    BookingSweeper
	assessments AssessmentSweeper
	logger      Logger
}

// New создает планировщик. spec задается в стандартном 5-польном формате cron.
func New(spec string, loc *time.Location, bookings BookingSweeper, assessments AssessmentSweeper, logger Logger) (*Scheduler, error) {
	cronLogger := &cronLogger{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		bookings:    bookings,
		assessments: assessments,
		logger:      logger,
	}

	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron spec %q: %w", spec, err)
	}

	return s, nil
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.logger.Info("Starting background scheduler")
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения текущего прогона или отмены ctx
func (s *Scheduler) Stop(ctx context.Context) {
	s.logger.Info("Stopping background scheduler")
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out: %v", ctx.Err())
	}
}

// RunOnce выполняет обе sweep-задачи. Ошибка одной не отменяет другую.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if resp, err := s.bookings.Execute(ctx); err != nil {
		s.logger.Error("Scheduler: booking sweep failed: %v", err)
	} else if resp.Swept > 0 {
		s.logger.Info("Scheduler: %d bookings marked missed", resp.Swept)
	}

	if n, err := s.assessments.SweepOverdue(ctx); err != nil {
		s.logger.Error("Scheduler: assessment sweep failed: %v", err)
	} else if n > 0 {
		s.logger.Info("Scheduler: %d assessments marked overdue", n)
	}
}

// cronLogger адаптирует Logger к интерфейсу cron.Logger
type cronLogger struct {
	logger Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info("cron: %s %v", msg, keysAndValues)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
