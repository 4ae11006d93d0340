package assessments

import (
	"context"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/assessments/models"
)

type AssessmentService interface {
	Create(ctx context.Context, caller domain.Caller, req *models.CreateAssessmentRequest) (*models.AssessmentResponse, error)
	GetByID(ctx context.Context, caller domain.Caller, id int64) (*models.AssessmentResponse, error)
	List(ctx context.Context, caller domain.Caller, req *models.ListAssessmentsRequest) (*models.AssessmentListResponse, error)
	Update(ctx context.Context, caller domain.Caller, id int64, req *models.UpdateAssessmentRequest) (*models.AssessmentResponse, error)
	MarkCompleted(ctx context.Context, caller domain.Caller, id int64) (*models.AssessmentResponse, error)
	Grade(ctx context.Context, caller domain.Caller, id int64, req *models.GradeAssessmentRequest) (*models.AssessmentResponse, error)
	Delete(ctx context.Context, caller domain.Caller, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
