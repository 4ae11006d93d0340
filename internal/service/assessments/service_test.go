package assessments

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	assessmentRepo "github.com/m04kA/DrivingSchool-BookingService/internal/infra/storage/assessment"
	"github.com/m04kA/DrivingSchool-BookingService/internal/integrations/userservice"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/assessments/models"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/clock"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/logger"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/ptr"
)

// memRepo хранит задания в памяти с той же семантикой, что и SQL репозиторий
type memRepo struct {
	items  map[int64]*domain.Assessment
	nextID int64
	err    error
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[int64]*domain.Assessment{}}
}

func (r *memRepo) seed(a domain.Assessment) int64 {
	r.nextID++
	a.ID = r.nextID
	r.items[a.ID] = &a
	return a.ID
}

func (r *memRepo) Create(_ context.Context, a *domain.Assessment) (*domain.Assessment, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	a.ID = r.nextID
	cp := *a
	r.items[a.ID] = &cp
	return a, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*domain.Assessment, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, assessmentRepo.ErrAssessmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) List(_ context.Context, f domain.AssessmentsFilter) ([]*domain.Assessment, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.Assessment, 0)
	for _, a := range r.items {
		if f.StudentID != nil && a.StudentID != *f.StudentID {
			continue
		}
		if f.InstructorID != nil && a.InstructorID != *f.InstructorID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) Update(_ context.Context, id int64, u *domain.AssessmentUpdate, now time.Time) (*domain.Assessment, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, assessmentRepo.ErrAssessmentNotFound
	}
	if u.Title != nil {
		a.Title = *u.Title
	}
	if u.DueDate != nil {
		a.DueDate = *u.DueDate
	}
	if u.MaxScore != nil {
		a.MaxScore = *u.MaxScore
	}
	if u.Feedback != nil {
		a.Feedback = u.Feedback
	}
	a.UpdatedAt = now
	cp := *a
	return &cp, nil
}

func (r *memRepo) MarkCompleted(_ context.Context, id int64, at time.Time) (*domain.Assessment, error) {
	a, ok := r.items[id]
	if !ok || !a.CanBeCompleted() {
		return nil, assessmentRepo.ErrAssessmentNotFound
	}
	a.Status = domain.AssessmentCompleted
	a.CompletionDate = &at
	a.UpdatedAt = at
	cp := *a
	return &cp, nil
}

func (r *memRepo) Grade(_ context.Context, id int64, score, maxScore float64, feedback *string, now time.Time) (*domain.Assessment, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, assessmentRepo.ErrAssessmentNotFound
	}
	a.Status = domain.AssessmentGraded
	a.Score = &score
	a.MaxScore = maxScore
	if feedback != nil {
		a.Feedback = feedback
	}
	a.UpdatedAt = now
	cp := *a
	return &cp, nil
}

func (r *memRepo) MarkOverdue(_ context.Context, today time.Time, now time.Time) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, a := range r.items {
		if a.Status == domain.AssessmentPending && a.DueDate.Before(today) {
			a.Status = domain.AssessmentOverdue
			a.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return assessmentRepo.ErrAssessmentNotFound
	}
	delete(r.items, id)
	return nil
}

type stubUsers map[int64]*userservice.User

func (s stubUsers) GetUser(_ context.Context, id int64) (*userservice.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, userservice.ErrUserNotFound
}

type countingMetrics struct {
	overdue int
}

func (m *countingMetrics) AddAssessmentsOverdue(n int) {
	m.overdue += n
}

var (
	now   = time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)
	today = time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	student    = domain.Caller{UserID: 42, Role: domain.RoleStudent}
	other      = domain.Caller{UserID: 43, Role: domain.RoleStudent}
	instructor = domain.Caller{UserID: 7, Role: domain.RoleInstructor}
)

func newTestService() (*Service, *memRepo, *countingMetrics) {
	repo := newMemRepo()
	m := &countingMetrics{}
	users := stubUsers{
		42: {ID: 42, Name: "Anna", Role: userservice.RoleStudent},
		43: {ID: 43, Name: "Ivan", Role: userservice.RoleStudent},
	}
	return NewService(repo, users, m, &clock.Fixed{T: now}, logger.NewNop()), repo, m
}

func pending(due time.Time) domain.Assessment {
	return domain.Assessment{
		StudentID:    42,
		InstructorID: 7,
		Title:        "Road signs quiz",
		DueDate:      due,
		MaxScore:     100,
		Status:       domain.AssessmentPending,
	}
}

func TestService_Create(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.Create(ctx, instructor, &models.CreateAssessmentRequest{
		StudentID: 42,
		Title:     "Road signs quiz",
		DueDate:   "2025-06-20",
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, int64(7), resp.InstructorID)
	assert.Equal(t, float64(domain.DefaultMaxScore), resp.MaxScore)
	assert.Equal(t, "2025-06-20", resp.DueDate)
	assert.Len(t, repo.items, 1)
}

func TestService_Create_Errors(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	valid := models.CreateAssessmentRequest{StudentID: 42, Title: "Quiz", DueDate: "2025-06-20"}

	_, err := svc.Create(ctx, student, &valid)
	assert.ErrorIs(t, err, ErrForbidden)

	badDate := valid
	badDate.DueDate = "20.06.2025"
	_, err = svc.Create(ctx, instructor, &badDate)
	assert.ErrorIs(t, err, ErrInvalidInput)

	unknown := valid
	unknown.StudentID = 999
	_, err = svc.Create(ctx, instructor, &unknown)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestService_GetByID_StudentSeesOnlyOwn(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	id := repo.seed(pending(today.AddDate(0, 0, 3)))

	_, err := svc.GetByID(ctx, student, id)
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, other, id)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetByID(ctx, instructor, 999)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestService_List_SweepsOverdueFirst(t *testing.T) {
	svc, repo, m := newTestService()
	ctx := context.Background()

	late := repo.seed(pending(today.AddDate(0, 0, -1)))
	dueToday := repo.seed(pending(today))
	otherStudent := pending(today.AddDate(0, 0, 5))
	otherStudent.StudentID = 43
	repo.seed(otherStudent)

	resp, err := svc.List(ctx, student, &models.ListAssessmentsRequest{})
	require.NoError(t, err)

	require.Equal(t, 2, resp.Total)
	assert.Equal(t, late, resp.Assessments[0].ID)
	assert.Equal(t, "overdue", resp.Assessments[0].Status)
	assert.Equal(t, dueToday, resp.Assessments[1].ID)
	assert.Equal(t, "pending", resp.Assessments[1].Status)
	assert.Equal(t, 1, m.overdue)

	_, err = svc.List(ctx, instructor, &models.ListAssessmentsRequest{Status: ptr.Ptr("lost")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_SweepOverdue_Idempotent(t *testing.T) {
	svc, repo, m := newTestService()
	ctx := context.Background()
	repo.seed(pending(today.AddDate(0, 0, -2)))

	n, err := svc.SweepOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.SweepOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, m.overdue)

	repo.err = errors.New("db down")
	_, err = svc.SweepOverdue(ctx)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestService_MarkCompleted(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	id := repo.seed(pending(today.AddDate(0, 0, 1)))

	_, err := svc.MarkCompleted(ctx, other, id)
	assert.ErrorIs(t, err, ErrForbidden)

	resp, err := svc.MarkCompleted(ctx, student, id)
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.CompletionDate)
	assert.Equal(t, now, *resp.CompletionDate)

	_, err = svc.MarkCompleted(ctx, student, id)
	assert.ErrorIs(t, err, ErrIllegalStatus)

	overdue := pending(today.AddDate(0, 0, -3))
	overdue.Status = domain.AssessmentOverdue
	overdueID := repo.seed(overdue)
	_, err = svc.MarkCompleted(ctx, student, overdueID)
	assert.NoError(t, err)
}

func TestService_Grade(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.AssessmentStatus
		caller  domain.Caller
		req     models.GradeAssessmentRequest
		wantErr error
	}{
		{
			name:   "completed graded",
			status: domain.AssessmentCompleted,
			caller: instructor,
			req:    models.GradeAssessmentRequest{Score: ptr.Ptr(87.5), Feedback: ptr.Ptr("good")},
		},
		{
			name:   "pending graded directly",
			status: domain.AssessmentPending,
			caller: instructor,
			req:    models.GradeAssessmentRequest{Score: ptr.Ptr(0.0)},
		},
		{
			name:   "overdue graded with new max",
			status: domain.AssessmentOverdue,
			caller: instructor,
			req:    models.GradeAssessmentRequest{Score: ptr.Ptr(20.0), MaxScore: ptr.Ptr(20.0)},
		},
		{
			name:    "score above max",
			status:  domain.AssessmentCompleted,
			caller:  instructor,
			req:     models.GradeAssessmentRequest{Score: ptr.Ptr(101.0)},
			wantErr: ErrInvalidScore,
		},
		{
			name:    "negative score",
			status:  domain.AssessmentCompleted,
			caller:  instructor,
			req:     models.GradeAssessmentRequest{Score: ptr.Ptr(-1.0)},
			wantErr: ErrInvalidScore,
		},
		{
			name:    "already graded",
			status:  domain.AssessmentGraded,
			caller:  instructor,
			req:     models.GradeAssessmentRequest{Score: ptr.Ptr(50.0)},
			wantErr: ErrIllegalStatus,
		},
		{
			name:    "student cannot grade",
			status:  domain.AssessmentCompleted,
			caller:  student,
			req:     models.GradeAssessmentRequest{Score: ptr.Ptr(50.0)},
			wantErr: ErrForbidden,
		},
		{
			name:    "score missing",
			status:  domain.AssessmentCompleted,
			caller:  instructor,
			req:     models.GradeAssessmentRequest{},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			a := pending(today.AddDate(0, 0, 1))
			a.Status = tt.status
			id := repo.seed(a)

			resp, err := svc.Grade(context.Background(), tt.caller, id, &tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "graded", resp.Status)
			require.NotNil(t, resp.Score)
			assert.Equal(t, *tt.req.Score, *resp.Score)
			require.NotNil(t, resp.Percentage)
		})
	}
}

func TestService_Update(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	graded := pending(today)
	graded.Status = domain.AssessmentGraded
	graded.Score = ptr.Ptr(80.0)
	id := repo.seed(graded)

	resp, err := svc.Update(ctx, instructor, id, &models.UpdateAssessmentRequest{Title: ptr.Ptr("Parking theory"), DueDate: ptr.Ptr("2025-06-30")})
	require.NoError(t, err)
	assert.Equal(t, "Parking theory", resp.Title)
	assert.Equal(t, "2025-06-30", resp.DueDate)
	assert.Equal(t, "graded", resp.Status)

	_, err = svc.Update(ctx, instructor, id, &models.UpdateAssessmentRequest{MaxScore: ptr.Ptr(50.0)})
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = svc.Update(ctx, instructor, id, &models.UpdateAssessmentRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, student, id, &models.UpdateAssessmentRequest{Title: ptr.Ptr("x")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, instructor, 999, &models.UpdateAssessmentRequest{Title: ptr.Ptr("x")})
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestService_Delete(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	id := repo.seed(pending(today))

	assert.ErrorIs(t, svc.Delete(ctx, student, id), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, instructor, id))
	assert.ErrorIs(t, svc.Delete(ctx, instructor, id), ErrAssessmentNotFound)
}
