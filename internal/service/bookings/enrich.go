package bookings

import (
	"context"
	"errors"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/integrations/userservice"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
)

// respond конвертирует одно бронирование в ответ с именами участников
func (s *Service) respond(ctx context.Context, b *domain.Booking) *models.BookingResponse {
	list := s.enrich(ctx, []*domain.Booking{b})
	return &list.Bookings[0]
}

// enrich подставляет имена инструктора, студента и название курса.
// Каждый ID запрашивается один раз. Недоступность сервисов не считается ошибкой:
// поля остаются пустыми (graceful degradation).
func (s *Service) enrich(ctx context.Context, bookings []*domain.Booking) *models.BookingListResponse {
	resp := models.FromDomainBookingList(bookings)
	if len(resp.Bookings) == 0 {
		return resp
	}

	userIDs := make(map[int64]struct{})
	courseIDs := make(map[int64]struct{})
	for _, b := range bookings {
		userIDs[b.InstructorID] = struct{}{}
		if b.StudentID != nil {
			userIDs[*b.StudentID] = struct{}{}
		}
		if b.CourseID != nil {
			courseIDs[*b.CourseID] = struct{}{}
		}
	}

	names := s.resolveUserNames(ctx, userIDs)
	titles := s.resolveCourseTitles(ctx, courseIDs)

	for i := range resp.Bookings {
		item := &resp.Bookings[i]
		if name, ok := names[item.InstructorID]; ok {
			item.InstructorName = &name
		}
		if item.StudentID != nil {
			if name, ok := names[*item.StudentID]; ok {
				item.StudentName = &name
			}
		}
		if item.CourseID != nil {
			if title, ok := titles[*item.CourseID]; ok {
				item.CourseTitle = &title
			}
		}
	}

	return resp
}

func (s *Service) resolveUserNames(ctx context.Context, ids map[int64]struct{}) map[int64]string {
	names := make(map[int64]string, len(ids))
	if s.userClient == nil {
		return names
	}

	for id := range ids {
		user, err := s.userClient.GetUserWithGracefulDegradation(ctx, id)
		if err != nil {
			if errors.Is(err, userservice.ErrServiceDegraded) {
				s.logger.Warn("enrich: UserService degraded, user names are left empty: %v", err)
				break
			}
			s.logger.Warn("enrich: user id=%d unavailable: %v", id, err)
			continue
		}
		names[id] = user.Name
	}
	return names
}

func (s *Service) resolveCourseTitles(ctx context.Context, ids map[int64]struct{}) map[int64]string {
	titles := make(map[int64]string, len(ids))
	if s.courseClient == nil {
		return titles
	}

	for id := range ids {
		course, err := s.courseClient.GetCourse(ctx, id)
		if err != nil {
			s.logger.Warn("enrich: course id=%d unavailable: %v", id, err)
			continue
		}
		titles[id] = course.Title
	}
	return titles
}
