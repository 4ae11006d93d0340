package check_availability

import (
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/types"
)

// generateSlots нарезает рабочие часы на слоты фиксированной длительности.
// Слот, конец которого выходит за время окончания работы, не включается.
func generateSlots(hours *domain.DaySchedule, slotDuration int) ([]types.TimeString, error) {
	if hours == nil || !hours.IsOpen {
		return []types.TimeString{}, nil
	}

	open, err := hours.OpenTime.Minutes()
	if err != nil {
		return nil, err
	}
	closing, err := hours.CloseTime.Minutes()
	if err != nil {
		return nil, err
	}

	slots := make([]types.TimeString, 0)
	for start := open; start+slotDuration <= closing; start += slotDuration {
		ts, err := types.NewTimeStringFromMinutes(start)
		if err != nil {
			return nil, err
		}
		slots = append(slots, ts)
	}

	return slots, nil
}

// markSlots отмечает доступность каждого слота.
// Слот занят, если пересекается с активным бронированием или уже начался.
func markSlots(
	slots []types.TimeString,
	slotDuration int,
	date time.Time,
	bookings []*domain.Booking,
	now time.Time,
) []domain.AvailableSlot {
	result := make([]domain.AvailableSlot, len(slots))

	for i, start := range slots {
		available := !domain.IsPast(date, start, now)
		if available {
			overlapping, err := domain.OverlappingBookings(start, slotDuration, bookings, 0)
			available = err == nil && len(overlapping) == 0
		}

		result[i] = domain.AvailableSlot{
			StartTime:       start,
			DurationMinutes: slotDuration,
			Available:       available,
		}
	}

	return result
}
