package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/dbmetrics"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/psqlbuilder"
)

const tableName = "bookings"

// Колонки в порядке сканирования (см. scanBooking)
var bookingColumns = []string{
	"id",
	"instructor_id",
	"student_id",
	"course_id",
	"booking_date",
	"start_time",
	"duration_minutes",
	"lesson_type",
	"status",
	"attendance",
	"notes",
	"location",
	"created_at",
	"updated_at",
}

// Индексы создаются при старте. Ошибка создания логируется, но не прерывает запуск.
var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_bookings_instructor_date ON bookings (instructor_id, booking_date)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_student_date ON bookings (student_id, booking_date)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings (status)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_bookings_instructor_slot_active
		ON bookings (instructor_id, booking_date, start_time)
		WHERE status IN ('scheduled', 'in-progress')`,
}

// dbTimestampLayout формат "стенного" времени для сравнения с booking_date + start_time
const dbTimestampLayout = "2006-01-02 15:04:05"

// Repository репозиторий для работы с бронированиями занятий
type Repository struct {
	db     DBExecutor
	logger Logger
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor, logger Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// EnsureIndexes создает вспомогательные индексы, если их нет.
// Ошибки только логируются.
// Возвращает количество индексов, которые не удалось создать.
func (r *Repository) EnsureIndexes(ctx context.Context) int {
	failed := 0
	for _, stmt := range indexStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			failed++
			r.logger.Warn("EnsureIndexes: failed to create index: %v", err)
		}
	}
	if failed == 0 {
		r.logger.Info("EnsureIndexes: %d indexes ensured", len(indexStatements))
	}
	return failed
}

// LockInstructor берет транзакционную advisory-блокировку на расписание инструктора.
// Блокировка снимается при завершении транзакции, поэтому вызов вне транзакции запрещен.
func (r *Repository) LockInstructor(ctx context.Context, instructorID int64) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", instructorID); err != nil {
		return fmt.Errorf("%w: LockInstructor - acquire advisory lock: %v", ErrExecQuery, err)
	}
	return nil
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её.
// Нарушение уникального индекса активных слотов возвращается как ErrSlotNotAvailable.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"instructor_id",
			"student_id",
			"course_id",
			"booking_date",
			"start_time",
			"duration_minutes",
			"lesson_type",
			"status",
			"attendance",
			"notes",
			"location",
		).
		Values(
			booking.InstructorID,
			booking.StudentID,
			booking.CourseID,
			booking.BookingDate.Format(domain.DateFormat),
			booking.StartTime,
			booking.DurationMinutes,
			booking.Type,
			booking.Status,
			booking.Attendance,
			booking.Notes,
			booking.Location,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if IsConflictError(err) {
			return nil, fmt.Errorf("%w: Create - %v", ErrSlotNotAvailable, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// List получает бронирования с фильтрацией
// Поддерживает фильтрацию по:
// - инструктору, студенту, курсу
// - статусу (Status) или только активным (ActiveOnly)
// - периоду (DateFrom, DateTo), границы включительно
//
// Сортировка: по дате и времени начала (ASC)
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := applyFilter(psqlbuilder.Select(bookingColumns...).From(tableName), filter).
		OrderBy("booking_date ASC", "start_time ASC", "id ASC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetActiveByInstructorAndDate получает активные (scheduled, in-progress) бронирования
// инструктора на календарный день, отсортированные по времени начала.
// Внутри транзакции строки блокируются (FOR UPDATE).
func (r *Repository) GetActiveByInstructorAndDate(ctx context.Context, instructorID int64, date time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableName).
		Where(squirrel.Eq{"instructor_id": instructorID}).
		Where(squirrel.Eq{"booking_date": date.Format(domain.DateFormat)}).
		Where(squirrel.Eq{"status": domain.ActiveStatusStrings()}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByInstructorAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByInstructorAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetStaleActive получает активные бронирования, время которых прошло относительно now:
// scheduled - начало раньше now, in-progress - окончание раньше now.
// Дата и время занятия хранятся без часового пояса, поэтому now сравнивается
// как "стенное" время в своей зоне.
func (r *Repository) GetStaleActive(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	wallClock := now.Format(dbTimestampLayout)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableName).
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"status": string(domain.StatusScheduled)},
				squirrel.Expr("(booking_date + start_time) < ?::timestamp", wallClock),
			},
			squirrel.And{
				squirrel.Eq{"status": string(domain.StatusInProgress)},
				squirrel.Expr("(booking_date + start_time + duration_minutes * INTERVAL '1 minute') < ?::timestamp", wallClock),
			},
		}).
		OrderBy("booking_date ASC", "start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetStaleActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaleActive - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// MarkMissed переводит бронирования в статус missed.
// Обновляются только бронирования, которые всё ещё активны, поэтому повторный вызов безопасен.
func (r *Repository) MarkMissed(ctx context.Context, ids []int64, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", string(domain.StatusMissed)).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"status": domain.ActiveStatusStrings()}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: MarkMissed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: MarkMissed - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: MarkMissed - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// UpdateFields частично обновляет бронирование и возвращает итоговое состояние.
// updated_at всегда выставляется в now.
func (r *Repository) UpdateFields(ctx context.Context, id int64, update *domain.BookingUpdate, now time.Time) (*domain.Booking, error) {
	if update == nil || update.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableName)
	if update.InstructorID != nil {
		updateBuilder = updateBuilder.Set("instructor_id", *update.InstructorID)
	}
	if update.StudentID != nil {
		updateBuilder = updateBuilder.Set("student_id", *update.StudentID)
	}
	if update.CourseID != nil {
		updateBuilder = updateBuilder.Set("course_id", *update.CourseID)
	}
	if update.BookingDate != nil {
		updateBuilder = updateBuilder.Set("booking_date", update.BookingDate.Format(domain.DateFormat))
	}
	if update.StartTime != nil {
		updateBuilder = updateBuilder.Set("start_time", *update.StartTime)
	}
	if update.DurationMinutes != nil {
		updateBuilder = updateBuilder.Set("duration_minutes", *update.DurationMinutes)
	}
	if update.Type != nil {
		updateBuilder = updateBuilder.Set("lesson_type", string(*update.Type))
	}
	if update.Status != nil {
		updateBuilder = updateBuilder.Set("status", string(*update.Status))
	}
	if update.Attendance != nil {
		updateBuilder = updateBuilder.Set("attendance", string(*update.Attendance))
	}
	if update.Notes != nil {
		updateBuilder = updateBuilder.Set("notes", *update.Notes)
	}
	if update.Location != nil {
		updateBuilder = updateBuilder.Set("location", *update.Location)
	}

	query, args, err := updateBuilder.
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpdateFields - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		if IsConflictError(err) {
			return nil, fmt.Errorf("%w: UpdateFields - %v", ErrSlotNotAvailable, err)
		}
		return nil, fmt.Errorf("%w: UpdateFields - execute update: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// SumCompleted считает проведенные занятия инструктора за период [from, to] (даты включительно)
func (r *Repository) SumCompleted(ctx context.Context, instructorID int64, from, to time.Time) (lessons int, minutes int, err error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)", "COALESCE(SUM(duration_minutes), 0)").
		From(tableName).
		Where(squirrel.Eq{"instructor_id": instructorID}).
		Where(squirrel.Eq{"status": string(domain.StatusCompleted)}).
		Where(squirrel.GtOrEq{"booking_date": from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"booking_date": to.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return 0, 0, fmt.Errorf("%w: SumCompleted - build select query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&lessons, &minutes); err != nil {
		return 0, 0, fmt.Errorf("%w: SumCompleted - scan aggregate: %v", ErrScanRow, err)
	}

	return lessons, minutes, nil
}

// Delete удаляет бронирование (физическое удаление)
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func applyFilter(builder squirrel.SelectBuilder, filter domain.BookingsFilter) squirrel.SelectBuilder {
	if filter.InstructorID != nil {
		builder = builder.Where(squirrel.Eq{"instructor_id": *filter.InstructorID})
	}
	if filter.StudentID != nil {
		builder = builder.Where(squirrel.Eq{"student_id": *filter.StudentID})
	}
	if filter.CourseID != nil {
		builder = builder.Where(squirrel.Eq{"course_id": *filter.CourseID})
	}
	if filter.DateFrom != nil {
		builder = builder.Where(squirrel.GtOrEq{"booking_date": filter.DateFrom.Format(domain.DateFormat)})
	}
	if filter.DateTo != nil {
		builder = builder.Where(squirrel.LtOrEq{"booking_date": filter.DateTo.Format(domain.DateFormat)})
	}

	// Конкретный статус имеет приоритет над ActiveOnly
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*filter.Status)})
	} else if filter.ActiveOnly {
		builder = builder.Where(squirrel.Eq{"status": domain.ActiveStatusStrings()})
	}

	return builder
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку в бронирование
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.InstructorID,
		&booking.StudentID,
		&booking.CourseID,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.DurationMinutes,
		&booking.Type,
		&booking.Status,
		&booking.Attendance,
		&booking.Notes,
		&booking.Location,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
