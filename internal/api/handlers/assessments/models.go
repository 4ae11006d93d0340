package assessments

import (
	"net/http"

	"github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/assessments/models"
)

func toListRequest(r *http.Request) (*models.ListAssessmentsRequest, error) {
	studentID, err := handlers.QueryInt64(r, "studentId")
	if err != nil {
		return nil, err
	}
	instructorID, err := handlers.QueryInt64(r, "instructorId")
	if err != nil {
		return nil, err
	}
	courseID, err := handlers.QueryInt64(r, "courseId")
	if err != nil {
		return nil, err
	}

	return &models.ListAssessmentsRequest{
		StudentID:    studentID,
		InstructorID: instructorID,
		CourseID:     courseID,
		Status:       handlers.QueryString(r, "status"),
	}, nil
}
