package assessment

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

const tableName = "assessments"

// Колонки в порядке сканирования (см. scanAssessment)
var assessmentColumns = []string{
	"id",
	"student_id",
	"instructor_id",
	"course_id",
	"title",
	"due_date",
	"completion_date",
	"score",
	"max_score",
	"status",
	"feedback",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с заданиями студентов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заданий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое задание
func (r *Repository) Create(ctx context.Context, a *domain.Assessment) (*domain.Assessment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"student_id",
			"instructor_id",
			"course_id",
			"title",
			"due_date",
			"max_score",
			"status",
			"feedback",
		).
		Values(
			a.StudentID,
			a.InstructorID,
			a.CourseID,
			a.Title,
			a.DueDate.Format(domain.DateFormat),
			a.MaxScore,
			string(a.Status),
			a.Feedback,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&a.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// GetByID получает задание по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Assessment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(assessmentColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAssessment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssessmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan assessment: %v", ErrScanRow, err)
	}

	return a, nil
}

// List получает задания с фильтрацией, сортировка по сроку сдачи
func (r *Repository) List(ctx context.Context, filter domain.AssessmentsFilter) ([]*domain.Assessment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(assessmentColumns...).From(tableName)
	if filter.StudentID != nil {
		builder = builder.Where(squirrel.Eq{"student_id": *filter.StudentID})
	}
	if filter.InstructorID != nil {
		builder = builder.Where(squirrel.Eq{"instructor_id": *filter.InstructorID})
	}
	if filter.CourseID != nil {
		builder = builder.Where(squirrel.Eq{"course_id": *filter.CourseID})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*filter.Status)})
	}

	query, args, err := builder.OrderBy("due_date ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	assessments := make([]*domain.Assessment, 0)
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		assessments = append(assessments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return assessments, nil
}

// Update частично обновляет задание и возвращает итоговое состояние
func (r *Repository) Update(ctx context.Context, id int64, update *domain.AssessmentUpdate, now time.Time) (*domain.Assessment, error) {
	if update == nil || update.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	builder := psqlbuilder.Update(tableName)
	if update.Title != nil {
		builder = builder.Set("title", *update.Title)
	}
	if update.DueDate != nil {
		builder = builder.Set("due_date", update.DueDate.Format(domain.DateFormat))
	}
	if update.CourseID != nil {
		builder = builder.Set("course_id", *update.CourseID)
	}
	if update.MaxScore != nil {
		builder = builder.Set("max_score", *update.MaxScore)
	}
	if update.Feedback != nil {
		builder = builder.Set("feedback", *update.Feedback)
	}

	return r.updateReturning(ctx, "Update", builder.Set("updated_at", now).Where(squirrel.Eq{"id": id}))
}

// MarkCompleted переводит задание в completed и проставляет дату выполнения.
// Обновляется только задание в статусе pending или overdue.
func (r *Repository) MarkCompleted(ctx context.Context, id int64, at time.Time) (*domain.Assessment, error) {
	builder := psqlbuilder.Update(tableName).
		Set("status", string(domain.AssessmentCompleted)).
		Set("completion_date", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []string{string(domain.AssessmentPending), string(domain.AssessmentOverdue)}})

	return r.updateReturning(ctx, "MarkCompleted", builder)
}

// Grade выставляет оценку и переводит задание в graded
func (r *Repository) Grade(ctx context.Context, id int64, score, maxScore float64, feedback *string, now time.Time) (*domain.Assessment, error) {
	builder := psqlbuilder.Update(tableName).
		Set("status", string(domain.AssessmentGraded)).
		Set("score", score).
		Set("max_score", maxScore).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id})
	if feedback != nil {
		builder = builder.Set("feedback", *feedback)
	}

	return r.updateReturning(ctx, "Grade", builder)
}

// MarkOverdue переводит pending задания со сроком раньше today в overdue
func (r *Repository) MarkOverdue(ctx context.Context, today time.Time, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", string(domain.AssessmentOverdue)).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": string(domain.AssessmentPending)}).
		Where(squirrel.Lt{"due_date": today.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: MarkOverdue - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: MarkOverdue - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: MarkOverdue - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// Delete удаляет задание
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
		return ErrAssessmentNotFound
	}

	return nil
}

// updateReturning выполняет UPDATE ... RETURNING и сканирует результат
func (r *Repository) updateReturning(ctx context.Context, op string, builder squirrel.UpdateBuilder) (*domain.Assessment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.
		Suffix("RETURNING " + strings.Join(assessmentColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	a, err := scanAssessment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssessmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	return a, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAssessment сканирует одну строку в задание
func scanAssessment(row rowScanner) (*domain.Assessment, error) {
	var a domain.Assessment
	var completionDate, createdAt, updatedAt sql.NullTime
	var score sql.NullFloat64

	err := row.Scan(
		&a.ID,
		&a.StudentID,
		&a.InstructorID,
		&a.CourseID,
		&a.Title,
		&a.DueDate,
		&completionDate,
		&score,
		&a.MaxScore,
		&a.Status,
		&a.Feedback,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completionDate.Valid {
		a.CompletionDate = &completionDate.Time
	}
	if score.Valid {
		a.Score = &score.Float64
	}
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}
