package assessments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	assessmentRepo "github.com/m04kA/DrivingSchool-BookingService/internal/infra/storage/assessment"
	"github.com/m04kA/DrivingSchool-BookingService/internal/integrations/userservice"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/assessments/models"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/clock"
)

// Service сервис для работы с заданиями студентов
type Service struct {
	repo         AssessmentRepository
	userClient   UserServiceClient
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса заданий
func NewService(
	repo AssessmentRepository,
	userClient UserServiceClient,
	metrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		repo:         repo,
		userClient:   userClient,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Create создает задание в статусе pending.
// Доступно только инструкторам и администраторам.
func (s *Service) Create(ctx context.Context, caller domain.Caller, req *models.CreateAssessmentRequest) (*models.AssessmentResponse, error) {
	// 1. Проверяем права
	if !caller.IsStaff() {
		s.logger.Warn("Create: user=%d with role=%s cannot create assessments", caller.UserID, caller.Role)
		return nil, ErrForbidden
	}

	// 2. Валидируем входные данные
	dueDate, err := models.ParseDate(req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	instructorID := caller.UserID
	if req.InstructorID != nil {
		instructorID = *req.InstructorID
	}

	maxScore := float64(domain.DefaultMaxScore)
	if req.MaxScore != nil {
		maxScore = *req.MaxScore
	}
	if maxScore <= 0 {
		return nil, fmt.Errorf("%w: maxScore must be positive", ErrInvalidInput)
	}

	// 3. Проверяем существование студента
	if _, err := s.userClient.GetUser(ctx, req.StudentID); err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			s.logger.Warn("Create: student id=%d not found", req.StudentID)
			return nil, ErrStudentNotFound
		}
		s.logger.Error("Create: failed to get student id=%d: %v", req.StudentID, err)
		return nil, fmt.Errorf("%w: Create - get student: %v", ErrInternal, err)
	}

	// 4. Сохраняем задание
	created, err := s.repo.Create(ctx, &domain.Assessment{
		StudentID:    req.StudentID,
		InstructorID: instructorID,
		CourseID:     req.CourseID,
		Title:        req.Title,
		DueDate:      dueDate,
		MaxScore:     maxScore,
		Status:       domain.AssessmentPending,
		Feedback:     req.Feedback,
	})
	if err != nil {
		s.logger.Error("Create: failed to save assessment: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: assessment id=%d created for student=%d by user=%d", created.ID, created.StudentID, caller.UserID)
	return models.FromDomainAssessment(created), nil
}

// GetByID получает задание по ID. Студент видит только свои задания.
func (s *Service) GetByID(ctx context.Context, caller domain.Caller, id int64) (*models.AssessmentResponse, error) {
	a, err := s.getAssessment(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if caller.IsStudent() && a.StudentID != caller.UserID {
		s.logger.Warn("GetByID: student=%d cannot read assessment id=%d", caller.UserID, id)
		return nil, ErrForbidden
	}

	return models.FromDomainAssessment(a), nil
}

// List получает задания по фильтру, предварительно переводя просроченные в overdue.
// Для студента фильтр всегда ограничен его собственными заданиями.
func (s *Service) List(ctx context.Context, caller domain.Caller, req *models.ListAssessmentsRequest) (*models.AssessmentListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if caller.IsStudent() {
		studentID := caller.UserID
		filter.StudentID = &studentID
	}

	if _, err := s.SweepOverdue(ctx); err != nil {
		s.logger.Warn("List: overdue sweep failed: %v", err)
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAssessmentList(list), nil
}

// Update частично обновляет задание
func (s *Service) Update(ctx context.Context, caller domain.Caller, id int64, req *models.UpdateAssessmentRequest) (*models.AssessmentResponse, error) {
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}

	update, err := req.ToDomainUpdate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Оценка уже выставлена, новый максимум не должен быть меньше неё
	if update.MaxScore != nil {
		current, err := s.getAssessment(ctx, "Update", id)
		if err != nil {
			return nil, err
		}
		if current.Score != nil && *current.Score > *update.MaxScore {
			return nil, ErrInvalidScore
		}
	}

	updated, err := s.repo.Update(ctx, id, update, s.timeProvider.Now())
	if err != nil {
		return nil, s.mapRepoError("Update", id, err)
	}

	s.logger.Info("Update: assessment id=%d updated by user=%d", id, caller.UserID)
	return models.FromDomainAssessment(updated), nil
}

// MarkCompleted отмечает задание выполненным.
// Доступно только студенту-владельцу и только для pending или overdue.
func (s *Service) MarkCompleted(ctx context.Context, caller domain.Caller, id int64) (*models.AssessmentResponse, error) {
	a, err := s.getAssessment(ctx, "MarkCompleted", id)
	if err != nil {
		return nil, err
	}

	if a.StudentID != caller.UserID {
		s.logger.Warn("MarkCompleted: user=%d is not the owner of assessment id=%d", caller.UserID, id)
		return nil, ErrForbidden
	}

	if !a.CanBeCompleted() {
		s.logger.Warn("MarkCompleted: assessment id=%d has status=%s", id, a.Status)
		return nil, ErrIllegalStatus
	}

	completed, err := s.repo.MarkCompleted(ctx, id, s.timeProvider.Now())
	if err != nil {
		// Статус сменился между чтением и обновлением
		if errors.Is(err, assessmentRepo.ErrAssessmentNotFound) {
			return nil, ErrIllegalStatus
		}
		return nil, s.mapRepoError("MarkCompleted", id, err)
	}

	s.logger.Info("MarkCompleted: assessment id=%d completed by student=%d", id, caller.UserID)
	return models.FromDomainAssessment(completed), nil
}

// Grade выставляет оценку. Допустимо для pending, completed и overdue.
func (s *Service) Grade(ctx context.Context, caller domain.Caller, id int64, req *models.GradeAssessmentRequest) (*models.AssessmentResponse, error) {
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}
	if req.Score == nil {
		return nil, fmt.Errorf("%w: score is required", ErrInvalidInput)
	}

	a, err := s.getAssessment(ctx, "Grade", id)
	if err != nil {
		return nil, err
	}

	if !a.CanBeGraded() {
		s.logger.Warn("Grade: assessment id=%d has status=%s", id, a.Status)
		return nil, ErrIllegalStatus
	}

	maxScore := a.MaxScore
	if req.MaxScore != nil {
		maxScore = *req.MaxScore
	}

	score := *req.Score
	if score < 0 || score > maxScore {
		s.logger.Warn("Grade: score=%.2f out of range 0..%.2f", score, maxScore)
		return nil, ErrInvalidScore
	}

	graded, err := s.repo.Grade(ctx, id, score, maxScore, req.Feedback, s.timeProvider.Now())
	if err != nil {
		return nil, s.mapRepoError("Grade", id, err)
	}

	s.logger.Info("Grade: assessment id=%d graded %.2f/%.2f by user=%d", id, score, maxScore, caller.UserID)
	return models.FromDomainAssessment(graded), nil
}

// Delete удаляет задание
func (s *Service) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	if !caller.IsStaff() {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError("Delete", id, err)
	}

	s.logger.Info("Delete: assessment id=%d deleted by user=%d", id, caller.UserID)
	return nil
}

// SweepOverdue переводит pending задания с истекшим сроком в overdue
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	now := s.timeProvider.Now()

	n, err := s.repo.MarkOverdue(ctx, clock.StartOfDay(now), now)
	if err != nil {
		s.logger.Error("SweepOverdue: repository error: %v", err)
		return 0, fmt.Errorf("%w: SweepOverdue - repository error: %v", ErrInternal, err)
	}

	if n > 0 {
		s.metrics.AddAssessmentsOverdue(int(n))
		s.logger.Info("SweepOverdue: %d assessments marked overdue", n)
	}

	return int(n), nil
}

func (s *Service) getAssessment(ctx context.Context, op string, id int64) (*domain.Assessment, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(op, id, err)
	}

	return a, nil
}

func (s *Service) mapRepoError(op string, id int64, err error) error {
	if errors.Is(err, assessmentRepo.ErrAssessmentNotFound) {
		s.logger.Warn("%s: assessment id=%d not found", op, id)
		return ErrAssessmentNotFound
	}
	if errors.Is(err, assessmentRepo.ErrEmptyUpdate) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.logger.Error("%s: repository error for assessment id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
