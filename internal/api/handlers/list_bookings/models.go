package list_bookings

import (
	"net/http"

	"github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
)

// ToServiceRequest собирает фильтр из query параметров
// instructorId, studentId, courseId, status, dateFrom, dateTo
func ToServiceRequest(r *http.Request) (*models.ListBookingsRequest, error) {
	instructorID, err := handlers.QueryInt64(r, "instructorId")
	if err != nil {
		return nil, err
	}
	studentID, err := handlers.QueryInt64(r, "studentId")
	if err != nil {
		return nil, err
	}
	courseID, err := handlers.QueryInt64(r, "courseId")
	if err != nil {
		return nil, err
	}

	return &models.ListBookingsRequest{
		InstructorID: instructorID,
		StudentID:    studentID,
		CourseID:     courseID,
		Status:       handlers.QueryString(r, "status"),
		DateFrom:     handlers.QueryString(r, "dateFrom"),
		DateTo:       handlers.QueryString(r, "dateTo"),
	}, nil
}
