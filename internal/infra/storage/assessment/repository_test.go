package assessment

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/dbmetrics"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/ptr"
)

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(dbmetrics.Wrap(db, nil)), mock
}

var (
	due = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	ts  = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
)

func assessmentRow(status string, score interface{}) *sqlmock.Rows {
	return sqlmock.NewRows(assessmentColumns).AddRow(
		int64(5), int64(42), int64(7), int64(3), "Road signs quiz", due,
		nil, score, []byte("100.00"), status, nil, ts, ts,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assessments")).
		WithArgs(int64(42), int64(7), nil, "Road signs quiz", "2025-06-10", float64(100), "pending", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), ts, ts))

	created, err := repo.Create(context.Background(), &domain.Assessment{
		StudentID:    42,
		InstructorID: 7,
		Title:        "Road signs quiz",
		DueDate:      due,
		MaxScore:     100,
		Status:       domain.AssessmentPending,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.Equal(t, ts, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assessments WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(assessmentRow("graded", []byte("87.50")))

	a, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, int64(42), a.StudentID)
	require.NotNil(t, a.CourseID)
	assert.Equal(t, int64(3), *a.CourseID)
	assert.Equal(t, domain.AssessmentGraded, a.Status)
	require.NotNil(t, a.Score)
	assert.InDelta(t, 87.5, *a.Score, 0.001)
	assert.InDelta(t, 100, a.MaxScore, 0.001)
	assert.Nil(t, a.CompletionDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assessments WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(assessmentColumns))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestRepository_List(t *testing.T) {
	repo, mock := newTestRepository(t)
	status := domain.AssessmentPending

	mock.ExpectQuery(regexp.QuoteMeta("FROM assessments WHERE student_id = $1 AND status = $2 ORDER BY due_date ASC, id ASC")).
		WithArgs(int64(42), "pending").
		WillReturnRows(assessmentRow("pending", nil))

	list, err := repo.List(context.Background(), domain.AssessmentsFilter{StudentID: ptr.Ptr(int64(42)), Status: &status})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE assessments SET title = $1, updated_at = $2 WHERE id = $3 RETURNING id")).
		WithArgs("Parking theory", ts, int64(5)).
		WillReturnRows(assessmentRow("pending", nil))

	_, err := repo.Update(context.Background(), 5, &domain.AssessmentUpdate{Title: ptr.Ptr("Parking theory")}, ts)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = repo.Update(context.Background(), 5, &domain.AssessmentUpdate{}, ts)
	assert.ErrorIs(t, err, ErrEmptyUpdate)
}

func TestRepository_MarkCompleted_GuardedByStatus(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $4 AND status IN ($5,$6) RETURNING")).
		WithArgs("completed", ts, ts, int64(5), "pending", "overdue").
		WillReturnRows(sqlmock.NewRows(assessmentColumns))

	_, err := repo.MarkCompleted(context.Background(), 5, ts)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Grade(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE assessments SET status = $1, score = $2, max_score = $3, updated_at = $4, feedback = $5 WHERE id = $6")).
		WithArgs("graded", 87.5, float64(100), ts, "good", int64(5)).
		WillReturnRows(assessmentRow("graded", []byte("87.50")))

	a, err := repo.Grade(context.Background(), 5, 87.5, 100, ptr.Ptr("good"), ts)
	require.NoError(t, err)
	assert.Equal(t, domain.AssessmentGraded, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkOverdue(t *testing.T) {
	repo, mock := newTestRepository(t)
	today := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE assessments SET status = $1, updated_at = $2 WHERE status = $3 AND due_date < $4")).
		WithArgs("overdue", ts, "pending", "2025-06-11").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.MarkOverdue(context.Background(), today, ts)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assessments WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assessments WHERE id = $1")).
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.ErrorIs(t, repo.Delete(context.Background(), 6), ErrAssessmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
