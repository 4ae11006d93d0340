package get_availability

import (
	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
)

// DayAvailabilityResponse HTTP response model
type DayAvailabilityResponse struct {
	InstructorID int64                    `json:"instructorId"`
	Date         string                   `json:"date"`
	Bookings     []models.BookingResponse `json:"bookings"`
	WorkingHours *WorkingHours            `json:"workingHours,omitempty"`
	Slots        []AvailableSlot          `json:"slots"`
	FreeSlots    int                      `json:"freeSlots"`
}

// WorkingHours рабочие часы инструктора в этот день
type WorkingHours struct {
	IsOpen    bool   `json:"isOpen"`
	OpenTime  string `json:"openTime,omitempty"`
	CloseTime string `json:"closeTime,omitempty"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Available       bool   `json:"available"`
}

// FromDomain конвертирует сводку дня в HTTP response
func FromDomain(d *domain.DayAvailability) *DayAvailabilityResponse {
	slots := make([]AvailableSlot, len(d.Slots))
	for i, slot := range d.Slots {
		slots[i] = AvailableSlot{
			StartTime:       slot.StartTime.String(),
			DurationMinutes: slot.DurationMinutes,
			Available:       slot.Available,
		}
	}

	resp := &DayAvailabilityResponse{
		InstructorID: d.InstructorID,
		Date:         d.Date,
		Bookings:     models.FromDomainBookingList(d.Bookings).Bookings,
		Slots:        slots,
		FreeSlots:    d.FreeSlotsCount(),
	}

	if d.WorkingHours != nil {
		resp.WorkingHours = &WorkingHours{IsOpen: d.WorkingHours.IsOpen}
		if d.WorkingHours.IsOpen {
			resp.WorkingHours.OpenTime = d.WorkingHours.OpenTime.String()
			resp.WorkingHours.CloseTime = d.WorkingHours.CloseTime.String()
		}
	}

	return resp
}
