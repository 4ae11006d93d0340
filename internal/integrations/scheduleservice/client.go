package scheduleservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/types"
)

var (
	// ErrScheduleNotFound возвращается, когда у инструктора нет объявленного расписания
	ErrScheduleNotFound = errors.New("scheduleservice client: schedule not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("scheduleservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("scheduleservice client: invalid response")
)

// DaySchedule рабочие часы на один день недели
type DaySchedule struct {
	IsOpen    bool   `json:"isOpen"`
	OpenTime  string `json:"openTime,omitempty"`  // "09:00"
	CloseTime string `json:"closeTime,omitempty"` // "18:00"
}

// WorkingHours рабочие часы инструктора по дням недели
type WorkingHours struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// ForDay возвращает расписание на день недели указанной даты
func (w *WorkingHours) ForDay(date time.Time) DaySchedule {
	switch date.Weekday() {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DaySchedule{IsOpen: false}
	}
}

// ToDomain конвертирует расписание дня в доменную модель, проверяя формат времени
func (d DaySchedule) ToDomain() (*domain.DaySchedule, error) {
	if !d.IsOpen {
		return &domain.DaySchedule{IsOpen: false}, nil
	}
	open, err := types.NewTimeStringFromString(d.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("%w: openTime: %v", ErrInvalidResponse, err)
	}
	closeTime, err := types.NewTimeStringFromString(d.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("%w: closeTime: %v", ErrInvalidResponse, err)
	}
	return &domain.DaySchedule{IsOpen: true, OpenTime: open, CloseTime: closeTime}, nil
}

// Client клиент для работы с ScheduleService
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создает новый экземпляр клиента ScheduleService
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetWorkingHours получает рабочие часы инструктора
func (c *Client) GetWorkingHours(ctx context.Context, instructorID int64) (*WorkingHours, error) {
	url := fmt.Sprintf("%s/internal/instructors/%d/working-hours", c.baseURL, instructorID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrScheduleNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var hours WorkingHours
	if err := json.NewDecoder(resp.Body).Decode(&hours); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &hours, nil
}
