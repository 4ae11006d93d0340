package courseservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrCourseNotFound возвращается, когда курс не найден
	ErrCourseNotFound = errors.New("courseservice client: course not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("courseservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("courseservice client: invalid response")
)

// Course модель курса из CourseService
type Course struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Cache JSON-кэш с TTL
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// Getter источник курсов
type Getter interface {
	GetCourse(ctx context.Context, courseID int64) (*Course, error)
}

// Client клиент для работы с CourseService
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создает новый экземпляр клиента CourseService
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetCourse получает курс по ID
func (c *Client) GetCourse(ctx context.Context, courseID int64) (*Course, error) {
	url := fmt.Sprintf("%s/internal/courses/%d", c.baseURL, courseID)

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
		return nil, ErrCourseNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var course Course
	if err := json.NewDecoder(resp.Body).Decode(&course); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &course, nil
}

// CachedClient читает курсы через кэш
type CachedClient struct {
	next  Getter
	cache Cache
	log   Logger
}

// NewCachedClient оборачивает источник курсов кэшем
func NewCachedClient(next Getter, cache Cache, log Logger) *CachedClient {
	return &CachedClient{next: next, cache: cache, log: log}
}

// GetCourse получает курс из кэша или из CourseService
func (c *CachedClient) GetCourse(ctx context.Context, courseID int64) (*Course, error) {
	key := fmt.Sprintf("course:%d", courseID)

	var cached Course
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.log.Warn("CourseService cache read failed for course_id=%d: %v", courseID, err)
	}
	if found {
		return &cached, nil
	}

	course, err := c.next.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, course); err != nil {
		c.log.Warn("CourseService cache write failed for course_id=%d: %v", courseID, err)
	}
	return course, nil
}
